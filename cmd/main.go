package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pet-adoption-marketplace/internal/auth"
	"pet-adoption-marketplace/internal/config"
	"pet-adoption-marketplace/internal/delivery/http/handler"
	domainPet "pet-adoption-marketplace/internal/domain/pet"
	domainUser "pet-adoption-marketplace/internal/domain/user"
	"pet-adoption-marketplace/internal/events"
	"pet-adoption-marketplace/internal/infrastructure/database/memory"
	"pet-adoption-marketplace/internal/infrastructure/database/mongo"
	"pet-adoption-marketplace/internal/infrastructure/database/postgres"
	"pet-adoption-marketplace/internal/infrastructure/storage"
	"pet-adoption-marketplace/internal/logger"
	"pet-adoption-marketplace/internal/middleware"
	"pet-adoption-marketplace/internal/realtime"
	"pet-adoption-marketplace/internal/routes"
	"pet-adoption-marketplace/internal/upload"
	"pet-adoption-marketplace/internal/usecase/pet"
	"pet-adoption-marketplace/internal/usecase/user"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	shutdownTimeout   = 30 * time.Second
	startupTimeout    = 15 * time.Second
	rateLimitSweep    = 5 * time.Minute
	defaultServerPort = "4000"
)

// backend bundles the repositories of the configured database driver.
type backend struct {
	users  domainUser.Repository
	resets domainUser.ResetTokenRepository
	pets   domainPet.Repository
	ping   handler.Pinger
	close  func(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	env := cfg.Server.Environment
	if env == "" {
		env = "development"
	}
	if err := logger.Init(env); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("environment", env),
		zap.String("db_driver", cfg.Database.Driver),
	)

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), startupTimeout)
	defer cancelStart()

	db, err := openBackend(startCtx, cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	tokens, err := auth.NewTokenService(cfg.JWT)
	if err != nil {
		logger.Fatal("Failed to create token service", zap.Error(err))
	}
	authenticator := auth.NewAuthenticator(tokens)

	broker, err := openBroker(startCtx, cfg.Realtime)
	if err != nil {
		logger.Fatal("Failed to connect realtime broker", zap.Error(err))
	}
	gateway := realtime.NewGateway(authenticator, broker, cfg.CORS.AllowedOrigins)

	external, err := openPublisher(cfg.Events)
	if err != nil {
		logger.Fatal("Failed to connect event publisher", zap.Error(err))
	}
	publisher := events.Multi{gateway, external}

	store, err := storage.NewLocalStorage(cfg.Upload.Dir, cfg.Upload.URLPrefix)
	if err != nil {
		logger.Fatal("Failed to prepare upload directory", zap.Error(err))
	}

	userService := user.NewService(db.users, db.resets, tokens, nil, cfg.Auth, cfg.PasswordReset)
	petService := pet.NewService(db.pets, db.users, publisher)
	limiter := middleware.NewRateLimiter(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst)

	jobsCtx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()

	if err := gateway.Start(jobsCtx); err != nil {
		logger.Fatal("Failed to start realtime gateway", zap.Error(err))
	}
	go userService.StartResetTokenCleanupJob(jobsCtx, cfg.PasswordReset.CleanupInterval)
	go limiter.Run(jobsCtx, rateLimitSweep)

	router := routes.SetupRoutes(routes.Dependencies{
		Config:        cfg,
		Authenticator: authenticator,
		UserService:   userService,
		PetService:    petService,
		Photos:        upload.NewPhotos(store, cfg.Upload),
		Gateway:       gateway,
		RateLimiter:   limiter,
		Ping:          db.ping,
	})

	host := cfg.Server.Host
	if host == "" {
		host = "0.0.0.0"
	}
	port := cfg.Server.Port
	if port == "" {
		port = defaultServerPort
	}
	addr := net.JoinHostPort(host, port)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start goroutine
	go func() {
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	stopJobs()
	err = multierr.Combine(
		server.Shutdown(ctx),
		gateway.Close(),
		events.Multi{external}.Close(),
		db.close(ctx),
	)
	if err != nil {
		logger.Error("Shutdown completed with errors", zap.Error(err))
	}

	log.Println("Server exited properly")
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		db, err := mongo.NewDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureIndexes(ctx); err != nil {
			return nil, multierr.Append(err, db.Close(ctx))
		}
		return &backend{
			users:  mongo.NewUserRepository(db),
			resets: mongo.NewResetTokenRepository(db),
			pets:   mongo.NewPetRepository(db),
			ping:   db.Health,
			close:  db.Close,
		}, nil

	case config.DriverPostgres:
		db, err := postgres.NewDB(cfg)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			return nil, multierr.Append(err, db.Close())
		}
		return &backend{
			users:  postgres.NewUserRepository(db),
			resets: postgres.NewResetTokenRepository(db),
			pets:   postgres.NewPetRepository(db),
			ping:   db.Health,
			close:  func(context.Context) error { return db.Close() },
		}, nil

	case config.DriverMemory:
		logger.Warn("Using in-memory storage; data is lost on restart")
		return &backend{
			users:  memory.NewUserRepository(),
			resets: memory.NewResetTokenRepository(),
			pets:   memory.NewPetRepository(),
			close:  func(context.Context) error { return nil },
		}, nil
	}

	return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
}

func openBroker(ctx context.Context, cfg config.RealtimeConfig) (realtime.Broker, error) {
	if cfg.Broker == config.BrokerRedis {
		return realtime.NewRedisBroker(ctx, cfg.RedisURL, cfg.Channel)
	}
	return realtime.NewLocalBroker(), nil
}

func openPublisher(cfg config.EventsConfig) (events.Publisher, error) {
	switch cfg.Driver {
	case config.EventsMQTT:
		return events.NewMQTTPublisher(cfg)
	case config.EventsNATS:
		return events.NewNATSPublisher(cfg)
	}
	return events.Nop{}, nil
}
