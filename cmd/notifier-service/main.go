package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tolkify/booking-be/internal/booking"
	"github.com/tolkify/booking-be/internal/booking/storage"
	"github.com/tolkify/booking-be/internal/config"
	"github.com/tolkify/booking-be/internal/metrics"
	"github.com/tolkify/booking-be/internal/notification"
	"github.com/tolkify/booking-be/internal/notifier"
	"github.com/tolkify/booking-be/internal/schedule"
	"github.com/tolkify/booking-be/shared/logger"
	"github.com/tolkify/booking-be/shared/postgresql"
	"github.com/tolkify/booking-be/shared/rabbitmq"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("NOTIFIER_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/notifier-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateNotifier(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger := logger.New(&logger.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		Output:       cfg.Logging.Output,
		EnableCaller: cfg.Logging.EnableCaller,
	})

	appLogger.Info("Starting notifier service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	dbClient, err := initPostgreSQL(&cfg.Database, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	rabbitClient, err := initRabbitMQ(&cfg.RabbitMQ, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
	}

	m := metrics.New("booking_notifier")

	lifecycle := booking.NewService(booking.ServiceConfig{
		Store: storage.NewStorage(dbClient, appLogger),
		Users: storage.NewDirectory(dbClient, appLogger),
		Sched: schedule.New(nil, schedule.Hours{
			NightStart:    cfg.BusinessHours.NightStart,
			NightEnd:      cfg.BusinessHours.NightEnd,
			BusinessStart: cfg.BusinessHours.BusinessStart,
		}),
		Logger:        appLogger,
		Metrics:       m,
		ImmediateLead: cfg.Booking.ImmediateLead,
		CancelWindow:  cfg.Booking.CancelWindow,
	})

	svc := notifier.NewService(&notifier.Config{
		Logger:         appLogger,
		Booking:        lifecycle,
		Dispatcher:     notification.NewOutboxDispatcher(rabbitClient, appLogger, m),
		RabbitClient:   rabbitClient,
		Concurrency:    cfg.Notifier.Concurrency,
		PrefetchCount:  cfg.Notifier.PrefetchCount,
		ExpiryInterval: cfg.Notifier.ExpiryInterval,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- svc.Start(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Received shutdown signal",
			slog.String("signal", sig.String()),
		)
	case err := <-errChan:
		if err != nil {
			appLogger.Error("Notifier service failed",
				slog.Any("error", err),
			)
		}
	}

	appLogger.Info("Shutting down notifier service...")
	cancel()

	done := make(chan struct{})
	go func() {
		svc.Stop()
		close(done)
	}()

	select {
	case <-done:
		appLogger.Info("Notifier service shutdown complete")
	case <-time.After(cfg.Notifier.ShutdownTimeout):
		appLogger.Warn("Notifier service shutdown timed out",
			slog.Duration("timeout", cfg.Notifier.ShutdownTimeout),
		)
	}

	if dbClient != nil {
		dbClient.Close()
	}
	if rabbitClient != nil {
		rabbitClient.Close()
	}

	return nil
}

// initPostgreSQL initializes the PostgreSQL database client
func initPostgreSQL(cfg *config.DatabaseConfig, logger *slog.Logger) (*postgresql.Client, error) {
	dbConfig := &postgresql.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		Database:        cfg.Database,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}

	return postgresql.NewClient(dbConfig, logger)
}

// initRabbitMQ initializes the consuming RabbitMQ client: exchange, queue
// and one binding per binding key.
func initRabbitMQ(cfg *config.RabbitMQConfig, logger *slog.Logger) (*rabbitmq.Client, error) {
	rabbitConfig := &rabbitmq.Config{
		Host:               cfg.Host,
		Port:               cfg.Port,
		User:               cfg.User,
		Password:           cfg.Password,
		VHost:              cfg.VHost,
		ExchangeName:       cfg.Exchange.Name,
		ExchangeType:       cfg.Exchange.Type,
		ExchangeDurable:    cfg.Exchange.Durable,
		ExchangeAutoDelete: cfg.Exchange.AutoDelete,
		QueueName:          cfg.Queue.Name,
		QueueDurable:       cfg.Queue.Durable,
		QueueAutoDelete:    cfg.Queue.AutoDelete,
		QueueExclusive:     cfg.Queue.Exclusive,
		BindingKeys:        cfg.Queue.BindingKeys,
		RetryAttempts:      cfg.Connection.RetryAttempts,
		RetryInterval:      cfg.Connection.RetryInterval,
		Heartbeat:          cfg.Connection.Heartbeat,
		ConnectionTimeout:  cfg.Connection.ConnectionTimeout,
		PublishRetries:     cfg.Publish.RetryAttempts,
		PublishRetryDelay:  cfg.Publish.RetryInterval,
		PublishBackoffMult: cfg.Publish.BackoffMultiplier,
	}

	return rabbitmq.NewClient(rabbitConfig, logger)
}
