package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/muster-hq/muster/internal/app"
	"github.com/muster-hq/muster/internal/push"
	"github.com/muster-hq/muster/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	var mailer jobs.Mailer = &jobs.LogMailer{Logger: logger}
	if cfg.SMTPAddr != "" {
		mailer = &jobs.SMTPMailer{Addr: cfg.SMTPAddr, From: cfg.SMTPFrom}
	}

	var pushSender push.Sender = push.NopSender{}
	if cfg.PushGatewayURL != "" {
		pushSender = push.NewGatewayClient(cfg.PushGatewayURL, cfg.PushServerKey)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeInviteEmail, Handler: jobs.NewInviteEmailHandler(mailer, logger)},
			{Type: jobs.TaskTypePushSend, Handler: jobs.NewPushSendHandler(pushSender, logger)},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
