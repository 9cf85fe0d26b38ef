package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogapi/internal/config"
	"blogapi/internal/database"
	"blogapi/internal/server"
	"blogapi/internal/services"
	"blogapi/pkg/logger"
	"blogapi/pkg/rabbitmq"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		logrus.WithError(err).Fatal("failed to load .env")
	}

	v := viper.New()
	v.AutomaticEnv()
	cfg, err := config.Load(v)
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	log := logger.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped with error")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := database.Open(ctx, cfg, log)
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Error("failed to close store")
		}
	}()
	log.WithField("driver", cfg.StoreDriver).Info("store ready")

	events, closeEvents, err := connectEvents(cfg, log)
	if err != nil {
		return err
	}
	defer closeEvents()

	app := server.New(server.Deps{
		Config: cfg,
		Store:  store,
		Events: events,
		Log:    log,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("starting server")
		listenErr <- app.Listen(cfg.Port)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.WithError(err).Error("error during Fiber shutdown")
	}
	log.Info("server gracefully stopped")
	return nil
}

// connectEvents connects to RabbitMQ when configured and starts a consumer
// that logs every event. It returns a nil publisher when events are disabled.
func connectEvents(cfg *config.Config, log logrus.FieldLogger) (services.EventPublisher, func(), error) {
	if !cfg.EventsEnabled() {
		log.Info("RABBITMQ_URL not set, event publishing disabled")
		return nil, func() {}, nil
	}

	client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue}, log)
	if err != nil {
		return nil, nil, err
	}
	if err := client.ConsumeEvents(rabbitmq.LogEvent(log)); err != nil {
		log.WithError(err).Warn("failed to start RabbitMQ consumer")
	}

	closeClient := func() {
		if err := client.Close(); err != nil {
			log.WithError(err).Error("failed to close RabbitMQ client")
		}
	}
	return client, closeClient, nil
}
