package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/match-hub/match-hub/internal/domain/team"
)

// TeamRepository implements team.Directory over the teams tables.
type TeamRepository struct {
	pool *pgxpool.Pool
}

func NewTeamRepository(pool *pgxpool.Pool) *TeamRepository {
	return &TeamRepository{pool: pool}
}

func (r *TeamRepository) MembershipOf(ctx context.Context, userID uuid.UUID) (*team.Member, error) {
	var m team.Member
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT team_id, user_id, role FROM team_members WHERE user_id=$1
	`, userID).Scan(&m.TeamID, &m.UserID, &m.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *TeamRepository) GetTeam(ctx context.Context, teamID uuid.UUID) (*team.Team, error) {
	var t team.Team
	err := conn(ctx, r.pool).QueryRow(ctx, `SELECT team_id, name FROM teams WHERE team_id=$1`, teamID).Scan(&t.TeamID, &t.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TeamRepository) GetTeams(ctx context.Context, teamIDs []uuid.UUID) (map[uuid.UUID]*team.Team, error) {
	out := make(map[uuid.UUID]*team.Team, len(teamIDs))
	if len(teamIDs) == 0 {
		return out, nil
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT team_id, name FROM teams WHERE team_id = ANY($1)`, teamIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var t team.Team
		if err := rows.Scan(&t.TeamID, &t.Name); err != nil {
			return nil, err
		}
		out[t.TeamID] = &t
	}
	return out, rows.Err()
}

func (r *TeamRepository) MemberUserIDs(ctx context.Context, teamID uuid.UUID, roles []team.Role) ([]uuid.UUID, error) {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT user_id FROM team_members WHERE team_id=$1 AND role = ANY($2) ORDER BY id ASC
	`, teamID, names)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
}

// AddTeam registers a team with its members. Used for seeding.
func (r *TeamRepository) AddTeam(ctx context.Context, t team.Team, members ...team.Member) error {
	batch := &pgx.Batch{}
	batch.Queue(`INSERT INTO teams (team_id, name) VALUES ($1,$2) ON CONFLICT (team_id) DO UPDATE SET name=EXCLUDED.name`, t.TeamID, t.Name)
	for _, m := range members {
		batch.Queue(`
			INSERT INTO team_members (team_id, user_id, role) VALUES ($1,$2,$3)
			ON CONFLICT (user_id) DO UPDATE SET team_id=EXCLUDED.team_id, role=EXCLUDED.role
		`, t.TeamID, m.UserID, m.Role)
	}
	return r.pool.SendBatch(ctx, batch).Close()
}
