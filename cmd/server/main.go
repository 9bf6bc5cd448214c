package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campushub/backend/internal/handlers"
	"github.com/campushub/backend/internal/notify"
	"github.com/campushub/backend/internal/router"
	"github.com/campushub/backend/pkg/config"
	"github.com/campushub/backend/pkg/firebase"
	"github.com/campushub/backend/pkg/logger"
	"github.com/campushub/backend/pkg/redis"
	"github.com/campushub/backend/validators"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.NewLogger(cfg.Env, cfg.LogLevel)
	defer log.Sync()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB()

	if err := router.Migrate(db.Postgres); err != nil {
		log.Fatal("Failed to auto migrate models", zap.Error(err))
	}
	log.Info("PostgreSQL auto-migrations completed for all models.")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoDB := db.Mongo.Database(cfg.MongoDatabase)
	repos := router.NewRepositories(db.Postgres, mongoDB)
	if indexer, ok := repos.Posts.(interface{ EnsureIndexes(context.Context) error }); ok {
		if err := indexer.EnsureIndexes(ctx); err != nil {
			log.Warn("Could not create post indexes", zap.Error(err))
		}
	}

	probes := map[string]handlers.Probe{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := db.Postgres.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"mongo": func(ctx context.Context) error { return db.Mongo.Ping(ctx, nil) },
	}

	rdb := redis.NewClient(cfg)
	if rdb != nil {
		defer rdb.Close()
		probes["redis"] = func(ctx context.Context) error { return redis.Ping(ctx, rdb) }
	}

	// Notification engine, with the queued broadcast worker in async mode
	var engineOpts []notify.Option
	var worker *asynq.Server
	if cfg.Notify.BroadcastMode == config.BroadcastAsync {
		if rdb == nil {
			log.Fatal("NOTIFY_BROADCAST_MODE=async requires REDIS_ADDR")
		}
		redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
		client := asynq.NewClient(redisOpt)
		defer client.Close()
		engineOpts = append(engineOpts, notify.WithEnqueuer(notify.NewQueueEnqueuer(client)))
		worker = asynq.NewServer(redisOpt, asynq.Config{
			Concurrency: 4,
			Queues:      map[string]int{"default": 1},
		})
	}
	engine := notify.NewEngine(repos.Notifications, repos.Users, cfg.Notify, append(engineOpts, notify.WithLogger(log))...)
	if worker != nil {
		go func() {
			if err := worker.Run(notify.NewServeMux(engine)); err != nil {
				log.Error("Broadcast worker stopped", zap.Error(err))
			}
		}()
		log.Info("Broadcast worker started.")
	}

	deps := router.Dependencies{
		Config:   cfg,
		Repos:    repos,
		Notifier: engine,
		Probes:   probes,
	}

	// Firebase is optional; without it federated login answers 503
	authClient, err := firebase.NewAuthClient(ctx, cfg.FirebaseCredentialsPath)
	switch {
	case err == nil:
		deps.FirebaseAuth = authClient
	case errors.Is(err, firebase.ErrNotConfigured):
		log.Info("Firebase not configured, federated login disabled")
	default:
		log.Fatal("Failed to initialize Firebase", zap.Error(err))
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	router.SetupMiddleware(e, log)
	router.SetupRoutes(e, deps)

	metricsSrv := &http.Server{Addr: ":" + cfg.MetricsPort, Handler: promhttp.Handler()}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server stopped", zap.Error(err))
		}
	}()

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown", zap.Error(err))
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("Metrics shutdown", zap.Error(err))
	}
	if worker != nil {
		worker.Shutdown()
	}
}
