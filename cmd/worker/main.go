package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meeting_assistant_backend/internal/email"
	"meeting_assistant_backend/internal/scheduler"
	"meeting_assistant_backend/platform/config"
	"meeting_assistant_backend/platform/db"
	"meeting_assistant_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting reminder worker", "env", cfg.Env)

	if cfg.GetRedisURL() == "" {
		panic("REDIS_URL is required for the reminder worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= 5; attempt++ {
		pool, err = db.NewPool(ctx, cfg)
		if err == nil {
			break
		}
		log.Warn("database connection failed, retrying", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second * time.Duration(attempt)):
		}
	}
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	reminderClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize reminder scheduler client", "error", err)
		panic("failed to initialize reminder scheduler client: " + err.Error())
	}
	defer reminderClient.Close()

	sender := email.NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)

	worker, err := scheduler.NewWorker(cfg, pool, reminderClient, sender, log)
	if err != nil {
		log.Error("failed to initialize reminder worker", "error", err)
		panic("failed to initialize reminder worker: " + err.Error())
	}

	log.Info("reminder worker listening", "queue", cfg.GetAsynqQueueName())
	worker.Run(ctx)
	log.Info("reminder worker stopped")
}
