package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	httpapi "github.com/match-hub/match-hub/internal/api/http"
	"github.com/match-hub/match-hub/internal/application/dispatch"
	appMatch "github.com/match-hub/match-hub/internal/application/match"
	appNotification "github.com/match-hub/match-hub/internal/application/notification"
	"github.com/match-hub/match-hub/internal/application/outbox"
	"github.com/match-hub/match-hub/internal/config"
	"github.com/match-hub/match-hub/internal/domain/alert"
	"github.com/match-hub/match-hub/internal/domain/lock"
	"github.com/match-hub/match-hub/internal/infrastructure/slack"
	"github.com/match-hub/match-hub/internal/infrastructure/sse"
	"github.com/match-hub/match-hub/internal/infrastructure/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	var seedDemo bool
	flagSet := pflag.NewFlagSet("match-hub", pflag.ContinueOnError)
	flagSet.StringVar(&cfg.ServerAddr, "addr", cfg.ServerAddr, "HTTP listen address")
	flagSet.StringVar(&cfg.MigrationsDir, "migrations", cfg.MigrationsDir, "directory of SQL migrations")
	flagSet.StringVar(&cfg.StoreDriver, "store", cfg.StoreDriver, "store driver (memory, postgres)")
	flagSet.StringVar(&cfg.LockDriver, "lock", cfg.LockDriver, "lock driver (memory, redis)")
	flagSet.BoolVar(&seedDemo, "seed-demo", false, "register two demo teams on startup")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	logger := zerolog.New(os.Stdout).Level(cfg.Level()).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName: "match-hub",
		Endpoint:    cfg.OtelEndpoint,
		SampleRatio: cfg.OtelSampleRatio,
	})
	if err != nil {
		return fmt.Errorf("telemetry error: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn().Err(err).Msg("failed to flush traces")
		}
	}()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.close()

	locker, err := openLocker(ctx, cfg)
	if err != nil {
		return err
	}
	defer locker.close()

	if seedDemo {
		if err := seedDemoTeams(ctx, store, logger); err != nil {
			return fmt.Errorf("seed error: %w", err)
		}
	}

	var alerts alert.Sink = alert.Nop{}
	if cfg.SlackWebhookURL != "" {
		alerts = slack.NewSink(slack.Config{WebhookURL: cfg.SlackWebhookURL, PerMinute: cfg.SlackPerMinute}, logger)
	}

	// services
	hub := sse.NewHub(logger)
	notificationSvc := appNotification.NewService(store.notifications, logger, appNotification.WithPusher(hub))
	pool := dispatch.NewPool(dispatch.Config{
		Workers:      cfg.DispatchWorkers,
		QueueSize:    cfg.DispatchQueueSize,
		EventTimeout: cfg.DispatchEventTimeout,
	}, appNotification.NewEventHandler(notificationSvc, store.directory, logger), alerts, logger)
	publisher := outbox.NewPublisher(pool, store.tx, logger)

	matchSvc := appMatch.NewService(store.matches, store.tx, store.directory, locker.locker, publisher, appMatch.Config{
		Lock: lock.Options{
			Wait:           cfg.LockWait,
			Lease:          cfg.LockLease,
			ReleaseTimeout: time.Second,
		},
		RejectUsesLock: cfg.RejectUsesLock,
	}, logger)

	// API server
	apiServer := httpapi.NewServer(matchSvc, notificationSvc, logger,
		httpapi.WithCORSOrigins(cfg.CORSOrigins),
		httpapi.WithStream(hub),
		httpapi.WithReadiness(func(ctx context.Context) error {
			return errors.Join(store.ping(ctx), locker.ping(ctx))
		}),
	)

	// No WriteTimeout: notification streams stay open. Other routes carry
	// their own request timeout.
	httpServer := &http.Server{
		Addr:        cfg.ServerAddr,
		Handler:     apiServer.Router(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	httpServer.RegisterOnShutdown(hub.Stop)

	pool.Start(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().
			Str("addr", cfg.ServerAddr).
			Str("store", cfg.StoreDriver).
			Str("lock", cfg.LockDriver).
			Msg("http server started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		// graceful shutdown: stop intake first, then drain queued events
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		httpErr := httpServer.Shutdown(shutdownCtx)
		poolErr := pool.Stop(shutdownCtx)
		stats := pool.Stats()
		logger.Info().
			Int64("processed", stats.Processed).
			Int64("failed", stats.Failed).
			Int64("rejected", stats.Rejected).
			Msg("shutdown complete")
		return errors.Join(httpErr, poolErr)
	})

	return g.Wait()
}
