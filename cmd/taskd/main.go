// taskd owns tasks. Every committed task write publishes onto the task
// queue, from which projectd fans the change out to live sessions.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/taskstream/taskstream/internal/application/ports"
	"github.com/taskstream/taskstream/internal/application/task"
	"github.com/taskstream/taskstream/internal/config"
	infraauth "github.com/taskstream/taskstream/internal/infrastructure/auth"
	httprouter "github.com/taskstream/taskstream/internal/infrastructure/http"
	"github.com/taskstream/taskstream/internal/infrastructure/http/handlers"
	"github.com/taskstream/taskstream/internal/infrastructure/http/middleware"
	"github.com/taskstream/taskstream/internal/infrastructure/persistence/postgres"
	"github.com/taskstream/taskstream/internal/infrastructure/queue"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Str("service", "taskd").Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("ping database")
	}

	var redisClient *redis.Client
	var redisOpt *redis.Options
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("parse REDIS_URL")
		}
		redisOpt = opt
		redisClient = redis.NewClient(opt)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis ping failed; continuing without redis")
			redisClient = nil
		}
	}

	var publisher ports.EventPublisher
	if redisClient != nil {
		asynqOpt := asynq.RedisClientOpt{Addr: redisOpt.Addr, Password: redisOpt.Password, DB: redisOpt.DB}
		asynqPublisher := queue.NewPublisher(asynqOpt, cfg.Events.BufferSize, log)
		defer asynqPublisher.Close()
		publisher = asynqPublisher
	} else {
		publisher = queue.NewNoopPublisher()
	}

	store := postgres.NewStore(pool)
	issuer := infraauth.NewTokenIssuer([]byte(cfg.JWT.Secret), cfg.JWT.Issuer, time.Duration(cfg.JWT.AccessExpiry)*time.Second)

	createUC := task.NewCreateTask(store, publisher, log)
	updateUC := task.NewUpdateTask(store, publisher, log)
	deleteUC := task.NewDeleteTask(store, publisher, log)
	getUC := task.NewGetTask(store)
	byProjectUC := task.NewListTasksByProject(store)
	byAssigneeUC := task.NewListTasksByAssignee(store)

	ipLimit, err := middleware.NewIPRateLimiter(cfg.Server.RatePerIP)
	if err != nil {
		log.Fatal().Err(err).Msg("create IP rate limiter")
	}

	router := httprouter.NewRouter(httprouter.RouterConfig{
		TaskHandler:   handlers.NewTaskHandler(createUC, updateUC, deleteUC, getUC, byProjectUC, byAssigneeUC, log),
		HealthHandler: handlers.NewHealthHandler("taskd", pool, redisClient),
		RequireJWT:    middleware.NewAuthValidator(issuer).Handler,
		Log:           log,
		Secure:        middleware.NewSecure(middleware.SecureOptions(cfg.Server.DevMode)),
		IPRateLimit:   ipLimit,
		Metrics:       true,
	})

	runServer(router, cfg.Server.Port, log)
}

func runServer(h http.Handler, port string, log zerolog.Logger) {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      h,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
}
