package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/match-hub/match-hub/internal/config"
	"github.com/match-hub/match-hub/internal/domain/lock"
	"github.com/match-hub/match-hub/internal/domain/match"
	"github.com/match-hub/match-hub/internal/domain/notification"
	"github.com/match-hub/match-hub/internal/domain/team"
	"github.com/match-hub/match-hub/internal/infrastructure/memory"
	"github.com/match-hub/match-hub/internal/infrastructure/postgres"
	"github.com/match-hub/match-hub/internal/infrastructure/redislock"
)

// storeBackend groups the repositories of the selected store driver
type storeBackend struct {
	matches       match.Repository
	tx            match.TxManager
	directory     team.Directory
	notifications notification.Repository

	addTeam func(ctx context.Context, t team.Team, members ...team.Member) error
	ping    func(ctx context.Context) error
	close   func()
}

func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*storeBackend, error) {
	if cfg.StoreDriver == config.DriverMemory {
		store := memory.NewStore()
		directory := memory.NewDirectory()
		logger.Warn().Msg("using in-memory store; data is lost on restart")
		return &storeBackend{
			matches:       store,
			tx:            store,
			directory:     directory,
			notifications: memory.NewNotificationRepository(),
			addTeam: func(_ context.Context, t team.Team, members ...team.Member) error {
				directory.AddTeam(t, members...)
				return nil
			},
			ping:  func(context.Context) error { return nil },
			close: func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := postgres.RunMigrations(ctx, pool, cfg.MigrationsDir, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	teams := postgres.NewTeamRepository(pool)
	return &storeBackend{
		matches:       postgres.NewMatchRepository(pool),
		tx:            postgres.NewTxManager(pool),
		directory:     teams,
		notifications: postgres.NewNotificationRepository(pool),
		addTeam:       teams.AddTeam,
		ping:          pool.Ping,
		close:         pool.Close,
	}, nil
}

type lockBackend struct {
	locker lock.Locker
	ping   func(ctx context.Context) error
	close  func()
}

func openLocker(ctx context.Context, cfg *config.Config) (*lockBackend, error) {
	if cfg.LockDriver == config.DriverMemory {
		return &lockBackend{
			locker: memory.NewLocker(),
			ping:   func(context.Context) error { return nil },
			close:  func() {},
		}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis error: %w", err)
	}
	return &lockBackend{
		locker: redislock.New(rdb, redislock.WithRetryInterval(cfg.LockRetryInterval)),
		ping:   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		close:  func() { _ = rdb.Close() },
	}, nil
}

// seedDemoTeams registers two teams with a leader each and logs the ids to
// use as X-User-ID.
func seedDemoTeams(ctx context.Context, store *storeBackend, logger zerolog.Logger) error {
	for _, name := range []string{"Demo Hosts", "Demo Visitors"} {
		t := team.Team{TeamID: uuid.New(), Name: name}
		leader := team.Member{TeamID: t.TeamID, UserID: uuid.New(), Role: team.RoleLeader}
		if err := store.addTeam(ctx, t, leader); err != nil {
			return err
		}
		logger.Info().
			Str("team", name).
			Str("team_id", t.TeamID.String()).
			Str("leader_user_id", leader.UserID.String()).
			Msg("demo team registered")
	}
	return nil
}
