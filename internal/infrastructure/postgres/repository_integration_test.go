//go:build integration
// +build integration

package postgres

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/match-hub/match-hub/internal/domain/match"
	"github.com/match-hub/match-hub/internal/domain/notification"
	"github.com/match-hub/match-hub/internal/domain/team"
)

func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, dsn, 0)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, file, _, _ := runtime.Caller(0)
	dir := filepath.Join(filepath.Dir(file), "..", "..", "migrations")
	require.NoError(t, RunMigrations(ctx, pool, dir, zerolog.Nop()))
	return pool
}

func seedTeam(t *testing.T, teams *TeamRepository, name string) (uuid.UUID, uuid.UUID) {
	t.Helper()
	teamID, leader := uuid.New(), uuid.New()
	require.NoError(t, teams.AddTeam(context.Background(), team.Team{TeamID: teamID, Name: name},
		team.Member{UserID: leader, Role: team.RoleLeader},
	))
	return teamID, leader
}

func TestMatchRepositoryIntegration(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	repo := NewMatchRepository(pool)
	teams := NewTeamRepository(pool)
	txm := NewTxManager(pool)

	owner, _ := seedTeam(t, teams, "Owners")
	alpha, _ := seedTeam(t, teams, "Alpha")
	bravo, _ := seedTeam(t, teams, "Bravo")

	post := match.NewPost(owner, "Friendly", "5v5", time.Now().Add(24*time.Hour), "1 River Rd", nil, 37.5, 127)
	require.NoError(t, repo.CreatePost(ctx, post))
	assert.NotZero(t, post.ID)

	a1 := match.NewApplication(post.PostID, alpha, "hi")
	a2 := match.NewApplication(post.PostID, bravo, "")
	require.NoError(t, repo.CreateApplication(ctx, a1))
	require.NoError(t, repo.CreateApplication(ctx, a2))

	err := repo.CreateApplication(ctx, match.NewApplication(post.PostID, alpha, "again"))
	assert.ErrorIs(t, err, match.ErrDuplicateApplication)

	err = txm.WithinTx(ctx, func(ctx context.Context) error {
		p, err := repo.GetPost(ctx, post.PostID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := repo.TransitionApplication(ctx, a1.ApplicationID, match.ApplicationStatusPending, match.ApplicationStatusAccepted, now); err != nil {
			return err
		}
		expected := p.Version
		if err := p.Close(a1.ApplicationID, now); err != nil {
			return err
		}
		if err := repo.UpdatePost(ctx, p, expected); err != nil {
			return err
		}
		rejected, err := repo.RejectPendingApplications(ctx, post.PostID, a1.ApplicationID, now)
		if err != nil {
			return err
		}
		assert.Len(t, rejected, 1)
		return nil
	})
	require.NoError(t, err)

	stored, err := repo.GetPost(ctx, post.PostID)
	require.NoError(t, err)
	assert.Equal(t, match.PostStatusClosed, stored.Status)
	assert.Equal(t, int64(2), stored.Version)

	err = repo.UpdatePost(ctx, stored, 1)
	assert.ErrorIs(t, err, match.ErrStaleWrite)

	err = repo.TransitionApplication(ctx, a1.ApplicationID, match.ApplicationStatusPending, match.ApplicationStatusRejected, time.Now())
	assert.ErrorIs(t, err, match.ErrStaleWrite)

	missing, err := repo.GetPost(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTxManagerRollbackIntegration(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	repo := NewMatchRepository(pool)
	teams := NewTeamRepository(pool)
	owner, _ := seedTeam(t, teams, "Owners")
	boom := errors.New("boom")

	var postID uuid.UUID
	err := NewTxManager(pool).WithinTx(ctx, func(ctx context.Context) error {
		post := match.NewPost(owner, "Friendly", "5v5", time.Now().Add(time.Hour), "a", nil, 0, 0)
		postID = post.PostID
		if err := repo.CreatePost(ctx, post); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	got, err := repo.GetPost(ctx, postID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNotificationRepositoryIntegration(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	repo := NewNotificationRepository(pool)
	userID := uuid.New()

	items := []*notification.Notification{
		notification.NewNotification(userID, notification.TypeMatchApplication, "one", "/matches/1"),
		notification.NewNotification(userID, notification.TypeMatchApplicationRejected, "two", "/matches"),
	}
	require.NoError(t, repo.CreateBatch(ctx, items))
	assert.NotZero(t, items[0].ID)

	count, err := repo.CountUnread(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	marked, err := repo.MarkAllRead(ctx, userID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), marked)

	unread, err := repo.List(ctx, notification.Filter{RecipientID: userID, UnreadOnly: true}, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, unread)
}
