// projectd owns projects, roles, and grants. It consumes both event queues:
// CREATE_DEFAULT_PROJECT runs the project bootstrap command, and everything
// else fans out to live websocket sessions through the gateway.
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
	"github.com/taskstream/taskstream/internal/application/project"
	"github.com/taskstream/taskstream/internal/config"
	infraauth "github.com/taskstream/taskstream/internal/infrastructure/auth"
	"github.com/taskstream/taskstream/internal/infrastructure/gateway"
	httprouter "github.com/taskstream/taskstream/internal/infrastructure/http"
	"github.com/taskstream/taskstream/internal/infrastructure/http/handlers"
	"github.com/taskstream/taskstream/internal/infrastructure/http/middleware"
	"github.com/taskstream/taskstream/internal/infrastructure/persistence/postgres"
	"github.com/taskstream/taskstream/internal/infrastructure/queue"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Str("service", "projectd").Logger()

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

	store := postgres.NewStore(pool)
	if err := store.SeedRoles(ctx, log); err != nil {
		log.Fatal().Err(err).Msg("seed roles")
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

	issuer := infraauth.NewTokenIssuer([]byte(cfg.JWT.Secret), cfg.JWT.Issuer, time.Duration(cfg.JWT.AccessExpiry)*time.Second)
	registry := gateway.NewRegistry()
	caster := gateway.NewBroadcaster(registry, log)
	realtime := gateway.NewHandler(registry, issuer, store, log)

	createProjectUC := project.NewCreateProjectAndGrantOwnerRole(store, cfg.Project.DefaultRole)

	var publisher ports.EventPublisher = queue.NewNoopPublisher()
	var dispatcher *queue.Dispatcher
	if redisClient != nil {
		asynqOpt := asynq.RedisClientOpt{Addr: redisOpt.Addr, Password: redisOpt.Password, DB: redisOpt.DB}
		asynqPublisher := queue.NewPublisher(asynqOpt, cfg.Events.BufferSize, log)
		defer asynqPublisher.Close()
		publisher = asynqPublisher

		dispatcher = queue.NewDispatcher(asynqOpt, createProjectUC, caster, log)
		go func() {
			if err := dispatcher.Run(); err != nil {
				log.Warn().Err(err).Msg("dispatcher stopped")
			}
		}()
		defer dispatcher.Shutdown()
	}

	assignUC := project.NewAssignUserToProjectWithRole(store, publisher, log)
	updateUC := project.NewUpdateProject(store)
	getUC := project.NewGetProject(store)
	listUC := project.NewListProjectsForUser(store)

	ipLimit, err := middleware.NewIPRateLimiter(cfg.Server.RatePerIP)
	if err != nil {
		log.Fatal().Err(err).Msg("create IP rate limiter")
	}

	router := httprouter.NewRouter(httprouter.RouterConfig{
		ProjectHandler: handlers.NewProjectHandler(createProjectUC, assignUC, updateUC, getUC, listUC, log),
		HealthHandler:  handlers.NewHealthHandler("projectd", pool, redisClient),
		Realtime:       realtime,
		RequireJWT:     middleware.NewAuthValidator(issuer).Handler,
		Log:            log,
		Secure:         middleware.NewSecure(middleware.SecureOptions(cfg.Server.DevMode)),
		IPRateLimit:    ipLimit,
		Metrics:        true,
	})

	runServer(router, cfg.Server.Port, log)
}

func runServer(h http.Handler, port string, log zerolog.Logger) {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     h,
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: it would sever long-lived websocket sessions.
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
