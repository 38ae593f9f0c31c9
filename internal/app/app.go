package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/caredocs/caredocs/internal/config"
	"github.com/caredocs/caredocs/internal/db"
	"github.com/caredocs/caredocs/internal/middleware"
	"github.com/caredocs/caredocs/internal/repository"
	"github.com/caredocs/caredocs/internal/service"
	"github.com/caredocs/caredocs/internal/storage"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// App owns the connection pool and every long-lived dependency.
type App struct {
	Cfg             *config.Config
	DB              *sqlx.DB
	Files           storage.FileStore
	Store           *storage.Resolver
	Redis           *redis.Client // nil unless REDIS_URL is set
	LoginLimiter    middleware.Limiter
	AuthService     *service.AuthService
	UserService     *service.UserService
	DocumentService *service.DocumentService
}

// newFileStore is replaced in tests.
var newFileStore = storage.NewFileStore

// New opens the database, applies migrations and wires services.
// sentryEnabled routes integrity warnings to Sentry as well as the log.
func New(ctx context.Context, cfg *config.Config, sentryEnabled bool) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = db.Close(database)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	documentRepository := repository.NewDocumentRepository(database)
	blobRepository := repository.NewBlobRepository(database)

	// Storage
	files, err := newFileStore(ctx, cfg)
	if err != nil {
		_ = db.Close(database)
		return nil, fmt.Errorf("failed to initialize document store: %w", err)
	}
	resolver := storage.NewResolver(
		storage.NewScheme(cfg.BlobLocatorPrefix),
		storage.NewBlobStore(blobRepository),
		files,
	)

	// Redis (optional)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = openRedis(ctx, cfg.RedisURL)
		if err != nil {
			closeFiles(files)
			_ = db.Close(database)
			return nil, err
		}
	}

	// Services
	authService := service.NewAuthService(userRepository, cfg.JWTSecret, cfg.JWTExpiry, cfg.SecureCookies)
	userService := service.NewUserService(userRepository)
	documentService := service.NewDocumentService(
		documentRepository,
		userRepository,
		resolver,
		service.NewIntegrityReporter(sentryEnabled),
		cfg.DocumentDefaultBackend,
	)

	return &App{
		Cfg:             cfg,
		DB:              database,
		Files:           files,
		Store:           resolver,
		Redis:           redisClient,
		LoginLimiter:    middleware.NewLoginLimiter(redisClient),
		AuthService:     authService,
		UserService:     userService,
		DocumentService: documentService,
	}, nil
}

func openRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = client.Ping(pingCtx).Err()
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	slog.Info("redis connected", "addr", opts.Addr)
	return client, nil
}

func closeFiles(files storage.FileStore) {
	if closer, ok := files.(io.Closer); ok {
		_ = closer.Close()
	}
}

func (a *App) Close() error {
	var errs []error
	if stopper, ok := a.LoginLimiter.(interface{ Stop() }); ok {
		stopper.Stop()
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if closer, ok := a.Files.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	if a.DB != nil {
		errs = append(errs, db.Close(a.DB))
	}
	return errors.Join(errs...)
}
