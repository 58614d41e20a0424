package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carrental/internal/config"
	handlers "carrental/internal/handlers/shared"
	"carrental/internal/jobs"
	"carrental/internal/repositories/interfaces"
	"carrental/internal/repositories/memory"
	mongorepo "carrental/internal/repositories/mongodb"
	"carrental/internal/services"
	"carrental/pkg/cache"
	"carrental/pkg/database"
	"carrental/pkg/logger"
	"carrental/pkg/ml"
	"carrental/routes"

	"github.com/gin-gonic/gin"
)

type repositories struct {
	cars     interfaces.CarRepository
	bookings interfaces.BookingRepository
	users    interfaces.UserRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:   logger.LogLevel(cfg.App.LogLevel),
		Format:  cfg.App.LogFormat,
		Output:  "stdout",
		AppName: cfg.App.Name,
		Version: cfg.App.Version,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if err := run(cfg, appLogger); err != nil {
		appLogger.WithError(err).Fatal("Server exited with error")
	}
}

func run(cfg *config.Config, appLogger *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]handlers.HealthCheck{}

	repos, closeDB, err := openRepositories(ctx, cfg, appLogger, checks)
	if err != nil {
		return err
	}
	defer closeDB()

	// Both stay nil interfaces unless Redis is enabled.
	var cacheService services.CacheService
	var lockService services.LockService
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(ctx, &cache.RedisConfig{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisCache.Close()

		cacheService = redisCache
		lockService = services.NewRedisLockService(redisCache)
		checks["redis"] = redisCache.Ping
	} else {
		appLogger.Warn("Redis disabled; booking locks are local to this process and geocoding is not cached")
		lockService = services.NewLocalLockService()
	}

	geocoder, err := services.NewGeocoder(cfg.Maps)
	if err != nil {
		appLogger.WithError(err).Warn("Geocoder not configured; address lookups will fail")
	}
	geocodingService := services.NewGeocodingService(geocoder, cacheService, cfg.Maps, appLogger)

	verifier := newListingVerifier(cfg.Verification, appLogger)
	verificationService := services.NewVerificationService(verifier, repos.cars, cfg.Verification, appLogger)
	carService := services.NewCarService(repos.cars, repos.users, geocodingService, verificationService, appLogger)
	ledger := services.NewBookingLedger(repos.bookings, repos.cars, cfg.Booking.DepositRate)
	availabilityService := services.NewAvailabilityService(geocodingService, carService, ledger, cfg.Search.RadiusMeters, appLogger)
	bookingService := services.NewBookingService(ledger, repos.cars, repos.users, lockService, cfg.Booking, appLogger)

	verificationService.Start(ctx)
	defer verificationService.Stop()

	scheduler, err := jobs.NewScheduler(jobs.NewJobRunner(verificationService, appLogger), cfg.Verification.RetrySchedule, appLogger)
	if err != nil {
		return fmt.Errorf("invalid verification retry schedule %q: %w", cfg.Verification.RetrySchedule, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := routes.NewRouter(cfg, &routes.Handlers{
		Car:          handlers.NewCarHandler(carService, availabilityService),
		Booking:      handlers.NewBookingHandler(bookingService),
		Verification: handlers.NewVerificationHandler(verificationService, cfg.Verification.WebhookSecret),
		Health:       handlers.NewHealthHandler(cfg.App.Version, checks),
	}, appLogger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.WithField("addr", server.Addr).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

// newListingVerifier returns nil when no verification service is configured;
// cars then wait for the verdict webhook.
func newListingVerifier(cfg *config.VerificationConfig, appLogger *logger.Logger) ml.ListingVerifier {
	verifier, err := ml.NewHTTPListingVerifier(cfg.ServiceURL, cfg.APIKey, cfg.Timeout)
	if err != nil {
		appLogger.WithError(err).Warn("Listing verifier not configured; verification relies on the webhook")
		return nil
	}
	return verifier
}

func openRepositories(ctx context.Context, cfg *config.Config, appLogger *logger.Logger, checks map[string]handlers.HealthCheck) (*repositories, func(), error) {
	if cfg.Database.Driver == config.DatabaseDriverMemory {
		appLogger.Warn("Using in-memory storage; data is lost on restart")
		return &repositories{
			cars:     memory.NewCarRepository(),
			bookings: memory.NewBookingRepository(),
			users:    memory.NewUserRepository(),
		}, func() {}, nil
	}

	db, err := database.NewMongoDB(ctx, &database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	closeDB := func() {
		if err := db.Close(); err != nil {
			appLogger.WithError(err).Error("Failed to close mongodb connection")
		}
	}

	if cfg.Database.RunMigrations {
		if err := database.NewMigrator(db.Database, appLogger).Up(ctx); err != nil {
			closeDB()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	checks["mongodb"] = db.Ping

	return &repositories{
		cars:     mongorepo.NewCarRepository(db.Database),
		bookings: mongorepo.NewBookingRepository(db.Database),
		users:    mongorepo.NewUserRepository(db.Database),
	}, closeDB, nil
}
