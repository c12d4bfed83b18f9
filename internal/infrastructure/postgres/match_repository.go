package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/match-hub/match-hub/internal/domain/match"
)

const (
	postColumns        = `id, post_id, team_id, title, content, match_date, address, place_name, lat, lng, status, accepted_application_id, is_deleted, version, created_at, updated_at, deleted_at`
	applicationColumns = `id, application_id, post_id, applicant_team_id, message, status, created_at, updated_at`

	constraintPostTeam       = "uq_match_applications_post_team"
	constraintSingleAccepted = "uq_match_applications_accepted"
)

// MatchRepository implements match.Repository.
type MatchRepository struct {
	pool *pgxpool.Pool
}

func NewMatchRepository(pool *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{pool: pool}
}

func (r *MatchRepository) CreatePost(ctx context.Context, p *match.Post) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO match_posts
		(post_id, team_id, title, content, match_date, address, place_name, lat, lng, status, accepted_application_id, is_deleted, version, created_at, updated_at, deleted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING id
	`, p.PostID, p.TeamID, p.Title, p.Content, p.MatchDate, p.Address, p.PlaceName, p.Lat, p.Lng, p.Status, p.AcceptedApplicationID, p.IsDeleted, p.Version, p.CreatedAt, p.UpdatedAt, p.DeletedAt).Scan(&p.ID)
}

// GetPost reads a post. Inside a transaction the row stays locked until
// commit, which orders applications against decisions on the same post.
func (r *MatchRepository) GetPost(ctx context.Context, postID uuid.UUID) (*match.Post, error) {
	query := `SELECT ` + postColumns + ` FROM match_posts WHERE post_id=$1`
	if inTx(ctx) {
		query += ` FOR UPDATE`
	}
	return scanPost(conn(ctx, r.pool).QueryRow(ctx, query, postID))
}

func (r *MatchRepository) ListPosts(ctx context.Context, filter match.PostFilter, limit, offset int) ([]*match.Post, error) {
	query := `SELECT ` + postColumns + ` FROM match_posts WHERE is_deleted = FALSE`
	args := []interface{}{}
	idx := 1
	if filter.TeamID != nil {
		query += addWhere(query) + " team_id=$" + itoa(idx)
		args = append(args, *filter.TeamID)
		idx++
	}
	if filter.Status != nil {
		query += addWhere(query) + " status=$" + itoa(idx)
		args = append(args, *filter.Status)
		idx++
	}
	if filter.MatchAfter != nil {
		query += addWhere(query) + " match_date > $" + itoa(idx)
		args = append(args, *filter.MatchAfter)
		idx++
	}
	if filter.MatchBefore != nil {
		query += addWhere(query) + " match_date < $" + itoa(idx)
		args = append(args, *filter.MatchBefore)
		idx++
	}
	query += " ORDER BY match_date ASC, id ASC LIMIT $" + itoa(idx) + " OFFSET $" + itoa(idx+1)
	args = append(args, limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*match.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdatePost writes the mutable post fields when the stored version still
// matches, bumping the version on success.
func (r *MatchRepository) UpdatePost(ctx context.Context, p *match.Post, expectedVersion int64) error {
	var version int64
	err := conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE match_posts
		SET title=$1, content=$2, match_date=$3, address=$4, place_name=$5, lat=$6, lng=$7, status=$8, accepted_application_id=$9, is_deleted=$10, deleted_at=$11, updated_at=$12, version=version+1
		WHERE post_id=$13 AND version=$14
		RETURNING version
	`, p.Title, p.Content, p.MatchDate, p.Address, p.PlaceName, p.Lat, p.Lng, p.Status, p.AcceptedApplicationID, p.IsDeleted, p.DeletedAt, p.UpdatedAt, p.PostID, expectedVersion).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return match.ErrStaleWrite
	}
	if err != nil {
		return err
	}
	p.Version = version
	return nil
}

func (r *MatchRepository) CreateApplication(ctx context.Context, a *match.Application) error {
	err := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO match_applications
		(application_id, post_id, applicant_team_id, message, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`, a.ApplicationID, a.PostID, a.ApplicantTeamID, a.Message, a.Status, a.CreatedAt, a.UpdatedAt).Scan(&a.ID)
	if isUniqueViolation(err, constraintPostTeam) {
		return match.ErrDuplicateApplication
	}
	return err
}

func (r *MatchRepository) GetApplication(ctx context.Context, applicationID uuid.UUID) (*match.Application, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT `+applicationColumns+` FROM match_applications WHERE application_id=$1
	`, applicationID)
	return scanApplication(row)
}

func (r *MatchRepository) GetApplicationByTeam(ctx context.Context, postID, teamID uuid.UUID) (*match.Application, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT `+applicationColumns+` FROM match_applications WHERE post_id=$1 AND applicant_team_id=$2
	`, postID, teamID)
	return scanApplication(row)
}

func (r *MatchRepository) ListApplications(ctx context.Context, postID uuid.UUID) ([]*match.Application, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+applicationColumns+` FROM match_applications WHERE post_id=$1 ORDER BY created_at ASC, id ASC
	`, postID)
	if err != nil {
		return nil, err
	}
	return collectApplications(rows)
}

func (r *MatchRepository) HasApplicationWithStatus(ctx context.Context, postID uuid.UUID, status match.ApplicationStatus) (bool, error) {
	var exists bool
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM match_applications WHERE post_id=$1 AND status=$2)
	`, postID, status).Scan(&exists)
	return exists, err
}

// TransitionApplication moves an application from one status to another.
// No matching row, or a second ACCEPTED row on the post, is ErrStaleWrite.
func (r *MatchRepository) TransitionApplication(ctx context.Context, applicationID uuid.UUID, from, to match.ApplicationStatus, at time.Time) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE match_applications SET status=$1, updated_at=$2
		WHERE application_id=$3 AND status=$4
	`, to, at, applicationID, from)
	if isUniqueViolation(err, constraintSingleAccepted) {
		return match.ErrStaleWrite
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return match.ErrStaleWrite
	}
	return nil
}

// RejectPendingApplications rejects every pending application of postID
// except one and returns the rows it changed.
func (r *MatchRepository) RejectPendingApplications(ctx context.Context, postID, exceptApplicationID uuid.UUID, at time.Time) ([]*match.Application, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		UPDATE match_applications SET status='REJECTED', updated_at=$1
		WHERE post_id=$2 AND application_id<>$3 AND status='PENDING'
		RETURNING `+applicationColumns, at, postID, exceptApplicationID)
	if err != nil {
		return nil, err
	}
	return collectApplications(rows)
}

func collectApplications(rows pgx.Rows) ([]*match.Application, error) {
	defer rows.Close()
	out := []*match.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanPost(row pgx.Row) (*match.Post, error) {
	var p match.Post
	if err := row.Scan(&p.ID, &p.PostID, &p.TeamID, &p.Title, &p.Content, &p.MatchDate, &p.Address, &p.PlaceName, &p.Lat, &p.Lng, &p.Status, &p.AcceptedApplicationID, &p.IsDeleted, &p.Version, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func scanApplication(row pgx.Row) (*match.Application, error) {
	var a match.Application
	if err := row.Scan(&a.ID, &a.ApplicationID, &a.PostID, &a.ApplicantTeamID, &a.Message, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
