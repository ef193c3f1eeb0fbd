package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"billnudge/internal/amqp"
	"billnudge/internal/config"
	"billnudge/internal/database"
	"billnudge/internal/logger"
	"billnudge/internal/notify"
	"billnudge/internal/scheduler"
	"billnudge/internal/services"
	"billnudge/internal/telegram"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Named("notifier")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	notifiers := []notify.Notifier{notify.LogNotifier{}}

	if cfg.AMQPURL != "" {
		publisher, err := amqp.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return fmt.Errorf("failed to start AMQP publisher: %w", err)
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Warnf("amqp close error: %v", err)
			}
		}()
		notifiers = append(notifiers, publisher)
	}

	if cfg.TelegramBotToken != "" {
		sender, err := telegram.NewSender(cfg.TelegramBotToken)
		if err != nil {
			return fmt.Errorf("failed to start Telegram sender: %w", err)
		}
		notifiers = append(notifiers, sender)
	}

	dispatcher := services.NewDispatchService(dbManager.DB(), notifiers, cfg.NotifyBatchSize,
		services.WithLocation(cfg.Location()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tick := func() {
		if _, err := dispatcher.DispatchDue(ctx); err != nil {
			log.Errorw("dispatch failed", "error", err)
		}
	}

	sched := scheduler.New(cfg.Location())
	if _, err := sched.Every(cfg.NotifyInterval, "dispatch_due_reminders", tick); err != nil {
		return err
	}

	names := make([]string, 0, len(notifiers))
	for _, n := range notifiers {
		names = append(names, n.Name())
	}
	log.Infow("notifier started", "interval", cfg.NotifyInterval.String(), "batch_size", cfg.NotifyBatchSize, "sinks", names)

	tick()
	sched.Start()

	<-ctx.Done()
	log.Info("shutting down notifier")
	sched.Stop()
	return nil
}
