package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rahulbrandimpetus/wheelspin-backend/api/routes"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/config"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/handlers"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/repositories"
	memoryrepo "github.com/rahulbrandimpetus/wheelspin-backend/internal/repositories/memory"
	mongorepo "github.com/rahulbrandimpetus/wheelspin-backend/internal/repositories/mongodb"
	platformrepo "github.com/rahulbrandimpetus/wheelspin-backend/internal/repositories/platform"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/services"
	"github.com/rahulbrandimpetus/wheelspin-backend/pkg/jwt"
	"github.com/rahulbrandimpetus/wheelspin-backend/pkg/lock"
	"github.com/rahulbrandimpetus/wheelspin-backend/pkg/logger"
	"github.com/rahulbrandimpetus/wheelspin-backend/pkg/mirror"
	"github.com/rahulbrandimpetus/wheelspin-backend/pkg/mongodb"
	"github.com/rahulbrandimpetus/wheelspin-backend/pkg/platform"
)

type stores struct {
	participants repositories.ParticipantRepository
	catalog      repositories.PrizeCatalogRepository
	close        func(context.Context)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Init(logger.Options{})
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Init(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	defer logger.Sync()

	ctx := context.Background()

	// Initialize Repositories for the configured backend
	st, err := buildStores(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
	}
	defer st.close(context.Background())

	// Identity lock: shared through Redis when configured, in-process otherwise
	var locker services.IdentityLocker = services.NewLocalLocker()
	if cfg.Redis.Addr != "" {
		rdb := lock.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		locker = lock.NewRedisLocker(rdb, cfg.Spin.LockTTL, func(key string, err error) {
			logger.Warn("Identity lock release failed", zap.String("key", key), zap.Error(err))
		})
		logger.Info("Using Redis identity lock", zap.String("addr", cfg.Redis.Addr))
	}

	// Statistics mirror
	var statsMirror services.StatsMirror = services.NoopMirror{}
	var auditor *services.DriftAuditor
	if cfg.Mirror.Enabled {
		m, err := mirror.NewS3Mirror(ctx, mirror.Options{
			Bucket:          cfg.Mirror.Bucket,
			Key:             cfg.Mirror.Key,
			Region:          cfg.Mirror.Region,
			Endpoint:        cfg.Mirror.Endpoint,
			AccessKeyID:     cfg.Mirror.AccessKeyID,
			SecretAccessKey: cfg.Mirror.SecretAccessKey,
		})
		if err != nil {
			logger.Fatal("Failed to initialize stats mirror", zap.Error(err))
		}
		statsMirror = m

		if cfg.Mirror.AuditInterval > 0 {
			auditor = services.NewDriftAuditor(st.catalog, statsMirror, cfg.Mirror.AuditInterval)
			if err := auditor.Start(); err != nil {
				logger.Fatal("Failed to start mirror audit", zap.Error(err))
			}
			defer func() { _ = auditor.Stop() }()
		}
	}

	// Initialize Services
	var tokens *jwt.AdminTokenService
	if cfg.JWT.Secret != "" {
		tokens = jwt.NewAdminTokenService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiresIn)*time.Second)
	}
	auth := services.NewAdminAuthenticator(cfg.Admin.Key, cfg.Admin.KeyHash, tokens)
	spinService := services.NewSpinService(st.participants, st.catalog, locker, statsMirror, cfg.Spin.MaxAttempts)
	adminService := services.NewAdminService(auth, st.catalog, statsMirror, tokens)

	// Initialize Handlers
	handlerDeps := routes.HandlerDependencies{
		SpinHandler:  handlers.NewSpinHandler(spinService),
		AdminHandler: handlers.NewAdminHandler(adminService),
	}

	router := routes.SetupRouter(cfg, handlerDeps)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("Server starting", zap.String("port", cfg.Server.Port), zap.String("backend", cfg.Storage.Backend))

	// Run server in a goroutine so that it doesn't block
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server listen failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}

func buildStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Storage.Backend {
	case config.BackendMongoDB:
		client, err := mongodb.NewClient(ctx, cfg.MongoDB.URI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDB.Database)
		return &stores{
			participants: mongorepo.NewParticipantRepository(db),
			catalog:      mongorepo.NewPrizeRepository(db),
			close: func(ctx context.Context) {
				if err := client.Disconnect(ctx); err != nil {
					logger.Warn("Error disconnecting from MongoDB", zap.Error(err))
				}
			},
		}, nil

	case config.BackendPlatform:
		client := platform.NewClient(cfg.Platform.BaseURL, cfg.Platform.AccessToken, cfg.Platform.Timeout)
		return &stores{
			participants: platformrepo.NewParticipantRepository(client),
			catalog:      platformrepo.NewPrizeRepository(client, cfg.Platform.PrizeType),
			close:        func(context.Context) {},
		}, nil

	case config.BackendMemory:
		logger.Warn("Using in-memory storage; participants and counters are lost on restart")
		return &stores{
			participants: memoryrepo.NewParticipantRepository(),
			catalog:      memoryrepo.NewPrizeRepository(cfg.Catalog.ToPrizes()),
			close:        func(context.Context) {},
		}, nil
	}
	return nil, errors.New("unknown storage backend " + cfg.Storage.Backend)
}
