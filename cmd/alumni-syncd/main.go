// Command alumni-syncd keeps the local alumni cache in sync with the hosted
// portal backend and serves the local admin endpoints.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/namatovu-christine/alumni-sync/internal/auth"
	"github.com/namatovu-christine/alumni-sync/internal/cache/postgres"
	"github.com/namatovu-christine/alumni-sync/internal/chat"
	"github.com/namatovu-christine/alumni-sync/internal/config"
	"github.com/namatovu-christine/alumni-sync/internal/limiter"
	"github.com/namatovu-christine/alumni-sync/internal/migrate"
	"github.com/namatovu-christine/alumni-sync/internal/remote/docstore"
	httpserver "github.com/namatovu-christine/alumni-sync/internal/server/http"
	"github.com/namatovu-christine/alumni-sync/internal/service"
	"github.com/namatovu-christine/alumni-sync/internal/storage"
	"github.com/namatovu-christine/alumni-sync/internal/sync"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, runs migrations, and starts the sync loops.
func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
	)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.CacheDSN); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	// Cache pool
	pool, err := pgxpool.New(ctx, cfg.CacheDSN)
	if err != nil {
		logger.Fatal("pgxpool.New", zap.Error(err))
	}
	defer pool.Close()

	// Cache access objects
	db := &postgres.DB{Pool: pool}
	users := postgres.NewUserCache(db)
	jobs := postgres.NewJobCache(db)
	events := postgres.NewEventCache(db)
	messages := postgres.NewMessageCache(db)
	state := postgres.NewSyncState(db)

	// Session against the hosted auth endpoint
	lim := limiter.NewPG(pool, 15*time.Minute, 5, 15*time.Minute)
	authAPI := auth.NewClient(cfg.RemoteBaseURL, cfg.RemoteTimeout)
	session := auth.NewSessionManager(authAPI, lim, []byte(cfg.SessionSignKey), cfg.SessionTTL, logger)

	// Remote document store
	src := docstore.New(cfg.RemoteBaseURL, cfg.RemoteTimeout, session.Token)

	// Sync layer
	exec := sync.NewExecutor(src, users, jobs, events, messages, state,
		session.CurrentUserID, logger, sync.WithChatTimeout(cfg.ChatTimeout))
	orch := sync.NewOrchestrator(exec, state, src, sync.SysfsBattery{}, logger,
		sync.WithInterval(cfg.SyncInterval, cfg.SyncFlex))
	session.OnSignIn(orch.RequestImmediate)
	if cfg.DeviceToken != "" {
		session.RegisterDevice(src, cfg.DeviceToken)
	}

	// Feature services
	var photos storage.PhotoStore
	if cfg.StorageEndpoint != "" {
		photos, err = storage.NewMinioStore(cfg.StorageEndpoint, cfg.StorageAccessKey,
			cfg.StorageSecretKey, cfg.StorageBucket, cfg.StorageSecure)
		if err != nil {
			logger.Fatal("object storage", zap.Error(err))
		}
	}

	deps := httpserver.Deps{
		Sync:      orch,
		Auth:      session,
		Directory: service.NewDirectoryService(users),
		Jobs:      service.NewJobBoardService(jobs, src, session, orch, logger),
		Events:    service.NewEventsService(events),
		Chat:      service.NewChatService(messages, src, session, orch, logger),
		Profile:   service.NewProfileService(users, src, photos, session, orch, logger),
	}

	// Local API surface
	admin := httpserver.NewServer(cfg.AdminAddr, deps, logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return orch.Run(ctx) })
	g.Go(func() error { return admin.Run(ctx) })
	if cfg.RealtimeURL != "" {
		listener := chat.NewListener(cfg.RealtimeURL, chat.TokenFunc(session.Token), messages, logger)
		g.Go(func() error { return listener.Run(ctx) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("daemon error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
