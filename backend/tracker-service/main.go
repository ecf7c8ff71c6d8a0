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

	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/yyhhenry/sdu--neu-bug/backend/tracker-service/config"
	"github.com/yyhhenry/sdu--neu-bug/backend/tracker-service/handlers"
	"github.com/yyhhenry/sdu--neu-bug/backend/tracker-service/logging"
	"github.com/yyhhenry/sdu--neu-bug/backend/tracker-service/middleware"
	"github.com/yyhhenry/sdu--neu-bug/backend/tracker-service/repositories"
	"github.com/yyhhenry/sdu--neu-bug/backend/tracker-service/services"
)

type projectStore interface {
	repositories.UserRepository
	repositories.ProjectRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: %v", err)
	}
	logging.InitLogger(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel})
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Tracker Service...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: %v", err)
	}
	defer closeStore()

	tokenStore, closeTokens, err := openTokenStore(ctx, cfg)
	if err != nil {
		logging.Logger.Fatalf("Event ID: TOKEN_STORE_FAILED, Description: %v", err)
	}
	defer closeTokens()

	notificationRepo, closeNotifications, err := openNotificationRepo(ctx, cfg)
	if err != nil {
		logging.Logger.Fatalf("Event ID: NOTIFICATION_STORE_FAILED, Description: %v", err)
	}
	defer closeNotifications()

	hasher := services.PasswordHasher{}
	seed, err := repositories.LoadSeed(cfg.SeedFile)
	if err != nil {
		logging.Logger.Fatalf("Event ID: SEED_LOAD_FAILED, Description: %v", err)
	}
	if err := seed.Apply(ctx, store, store, hasher.Hash); err != nil {
		logging.Logger.Fatalf("Event ID: SEED_APPLY_FAILED, Description: %v", err)
	}
	logging.Logger.Infof("Event ID: SEED_APPLIED, Description: Seeded %d users and %d projects", len(seed.Users), len(seed.Projects))

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, tokenStore)
	svc := services.New(services.Deps{
		Users:         store,
		Projects:      store,
		Notifications: notificationRepo,
		Tokens:        tokens,
		Hasher:        hasher,
		Logger:        logging.Logger,
	})
	limiter := middleware.NewIPRateLimiter(cfg.LoginRateLimit, cfg.LoginRateBurst)

	jobs := cron.New()
	if _, err := jobs.AddFunc("@every 1h", func() {
		purged, err := tokens.PurgeUsed(ctx)
		if err != nil {
			logging.Logger.Errorf("Event ID: TOKEN_PURGE_FAILED, Description: %v", err)
			return
		}
		idle := limiter.Cleanup(2 * time.Hour)
		logging.Logger.Infof("Event ID: HOUSEKEEPING_DONE, Description: Purged %d used refresh tokens and %d idle rate limiters", purged, idle)
	}); err != nil {
		logging.Logger.Fatalf("Event ID: CRON_SETUP_FAILED, Description: %v", err)
	}
	jobs.Start()
	defer func() { <-jobs.Stop().Done() }()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           handlers.NewRouter(svc, handlers.RouterOptions{LoginLimiter: limiter, CORSOrigin: cfg.CORSOrigin}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logging.Logger.Info("Event ID: SERVER_SHUTDOWN, Description: Shutting down Tracker Service...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logging.Logger.Errorf("Event ID: SERVER_FATAL_ERROR, Description: %v", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (projectStore, func(), error) {
	if cfg.StoreBackend != config.BackendMongo {
		logging.Logger.Info("Event ID: STORE_SELECTED, Description: Using in-memory store")
		return repositories.NewMemoryRepository(), func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to MongoDB: %w", err)
	}
	closeFn := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logging.Logger.Warnf("Event ID: DB_DISCONNECT_FAILED, Description: %v", err)
		}
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("pinging MongoDB: %w", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s", cfg.MongoURI)

	repo := repositories.NewMongoRepository(client.Database(cfg.MongoDBName))
	if err := repo.EnsureIndexes(connectCtx); err != nil {
		closeFn()
		return nil, nil, err
	}
	return repo, closeFn, nil
}

func openTokenStore(ctx context.Context, cfg *config.Config) (repositories.TokenStore, func(), error) {
	if cfg.TokenStore != config.BackendRedis {
		return repositories.NewMemoryTokenStore(), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connecting to Redis at %s: %w", cfg.RedisAddr, err)
	}
	logging.Logger.Infof("Event ID: REDIS_CONNECTED, Description: Refresh tokens tracked in Redis at %s", cfg.RedisAddr)
	return repositories.NewRedisTokenStore(client), func() { client.Close() }, nil
}

func openNotificationRepo(ctx context.Context, cfg *config.Config) (repositories.NotificationRepository, func(), error) {
	if cfg.NotificationsBackend != config.BackendCassandra {
		return repositories.NewMemoryNotificationRepo(), func() {}, nil
	}
	repo, err := repositories.NewCassandraNotificationRepo(cfg.CassandraHost, logging.Logger)
	if err != nil {
		return nil, nil, err
	}
	if err := repo.CreateTable(ctx); err != nil {
		repo.CloseSession()
		return nil, nil, err
	}
	return repo, repo.CloseSession, nil
}
