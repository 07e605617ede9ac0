package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/muster-hq/muster/internal/app"
	"github.com/muster-hq/muster/internal/auth"
	"github.com/muster-hq/muster/internal/events"
	"github.com/muster-hq/muster/internal/notifications"
	"github.com/muster-hq/muster/internal/observability"
	"github.com/muster-hq/muster/internal/platform/blob"
	"github.com/muster-hq/muster/internal/platform/cache"
	"github.com/muster-hq/muster/internal/platform/db"
	"github.com/muster-hq/muster/internal/push"
	"github.com/muster-hq/muster/internal/roles"
	"github.com/muster-hq/muster/internal/users"
	"github.com/muster-hq/muster/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	blobs, err := blob.NewStore(cfg.BlobDir)
	if err != nil {
		logger.Error("init blob store", slog.Any("error", err))
		os.Exit(1)
	}

	var pushSender push.Sender = push.NopSender{}
	if cfg.PushGatewayURL != "" {
		pushSender = push.NewGatewayClient(cfg.PushGatewayURL, cfg.PushServerKey)
	}

	authRepo := auth.NewRepository(pool)
	tokenStore := auth.NewTokenStore(redisClient, cfg.TokenTTL)
	authService := auth.NewService(authRepo, tokenStore)
	authmw := auth.Middleware{Service: authService, Logger: logger}
	claimStore := auth.NewClaimStore(authService)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, blobs, logger)

	dispatcher := notifications.NewDispatcher(pushSender)
	registry := notifications.NewRegistry(nil, dispatcher.Send, logger)

	eventsRepo := events.NewRepository(pool)
	eventsService := events.NewService(eventsRepo, usersService, registry, logger)

	feed := notifications.NewFeed(redisClient)
	notificationsRepo := notifications.NewRepository(pool)
	notificationsService := notifications.NewService(notificationsRepo, feed, authService, usersService, logger)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	rolesRepo := roles.NewRepository(pool)
	rolesService := roles.NewService(rolesRepo, claimStore, eventsService, jobClient, notificationsService, logger)

	metrics := observability.NewMetrics()
	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		AuthHandler:          auth.NewHandler(logger, authService),
		RolesHandler:         roles.NewHandler(logger, rolesService, authmw),
		UsersHandler:         users.NewHandler(logger, usersService, authmw),
		EventsHandler:        events.NewHandler(logger, eventsService, authmw),
		NotificationsHandler: notifications.NewHandler(logger, notificationsService, registry, authmw),
		JobHandler:           jobs.NewHandler(inspector, logger),
		Metrics:              metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server run", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
