// File: innkeeper/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"innkeeper/config"
	"innkeeper/cron"
	"innkeeper/database"
	"innkeeper/database/repository"
	"innkeeper/handlers"
	"innkeeper/middleware"
	"innkeeper/resolvers"
	"innkeeper/routes"
	"innkeeper/services/booking"
	"innkeeper/services/catalog"
	"innkeeper/services/roomlock"
	"innkeeper/services/settlement"
	"innkeeper/services/tasks"
	"innkeeper/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// openStorage connects the configured driver and returns its repositories
// and a health check.
func openStorage(logger *zap.Logger) (repository.Set, func(context.Context) error) {
	switch config.AppConfig.StorageDriver {
	case "mongo":
		database.InitDB()
		set, err := repository.NewMongoSet(database.MongoDatabase())
		if err != nil {
			logger.Fatal("main: failed to initialize mongo repositories", zap.Error(err))
		}
		return set, database.PingMongo
	case "mysql":
		database.InitSQL(repository.SQLModels()...)
		return repository.NewGormSet(database.SQLDB), database.PingSQL
	case "memory", "":
		logger.Warn("main: using in-memory storage; data is lost on restart")
		return repository.NewMemorySet(), nil
	default:
		logger.Fatal("main: unknown STORAGE_DRIVER", zap.String("driver", config.AppConfig.StorageDriver))
		return repository.Set{}, nil
	}
}

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	store, storagePing := openStorage(logger)
	var redisClients []*redis.Client

	// Per-room lock shared by the engine and flag refreshes.
	var locker roomlock.Locker
	switch config.AppConfig.LockBackend {
	case "redis":
		lockClient := utils.GetLockClient()
		redisClients = append(redisClients, lockClient)
		locker = roomlock.NewRedis(lockClient, config.AppConfig.LockTTL, config.AppConfig.LockWait)
	default:
		locker = roomlock.NewLocal(config.AppConfig.LockWait)
	}

	// services.
	catalogService := catalog.NewCatalogService(store.Rooms, store.Reservations, locker, time.Now)
	if config.AppConfig.SeedRooms {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if _, err := catalogService.Seed(ctx); err != nil {
			logger.Sugar().Fatalf("main: failed to seed room catalog: %v", err)
		}
		cancel()
	}

	repairer := booking.NoopRepairer
	stopWorker := func() {}
	if config.AppConfig.TasksEnabled {
		taskClient := asynq.NewClient(cron.RedisOpt())
		defer taskClient.Close()
		repairer = tasks.NewEnqueuer(taskClient)

		stop, err := cron.InitFlagWorker(catalogService)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to start flag worker: %v", err)
		}
		stopWorker = stop
	}

	engine := booking.NewBookingEngine(catalogService, store.Reservations, locker, repairer)
	recorder := settlement.NewRecorder(store.Reservations, store.Payments, time.Now)
	resolver := &resolvers.Resolver{Catalog: catalogService, Engine: engine, Recorder: recorder}

	healthCtx, stopHealth := context.WithCancel(context.Background())
	defer stopHealth()
	utils.StartHealthMonitor(healthCtx, 30*time.Second, storagePing, redisClients)

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if err := router.SetTrustedProxies(config.AppConfig.TrustedProxies); err != nil {
		logger.Sugar().Fatalf("main: invalid TRUSTED_PROXIES: %v", err)
	}
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewRoomHandler(catalogService, engine, time.Now),
		handlers.NewReservationHandler(engine, recorder, resolver, time.Now),
	)
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s (storage=%s, lock=%s)...",
		srv.Addr, config.AppConfig.StorageDriver, config.AppConfig.LockBackend)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	stopWorker()

	logger.Sugar().Info("main: server stopped gracefully")
}
