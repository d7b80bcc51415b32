// Package notifier consumes booking lifecycle events from RabbitMQ and
// turns them into notification fan-outs. It also owns the periodic
// expiry sweep for overdue pending bookings.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tolkify/booking-be/internal/booking"
	"github.com/tolkify/booking-be/internal/notification"
	"github.com/tolkify/booking-be/shared/rabbitmq"
)

// Lifecycle is the slice of the booking service the notifier needs.
type Lifecycle interface {
	FanoutIntents(ctx context.Context, ev booking.JobEvent) ([]notification.Intent, error)
	SMSFanout(ctx context.Context, jobID string) ([]notification.Intent, error)
	ExpireOverdue(ctx context.Context) (int, booking.Effects, error)
}

// Config holds notifier service configuration
type Config struct {
	Logger         *slog.Logger
	Booking        Lifecycle
	Dispatcher     notification.Dispatcher
	RabbitClient   *rabbitmq.Client
	Concurrency    int
	PrefetchCount  int
	ExpiryInterval time.Duration
}

// eventMessage pairs a decoded lifecycle event with its delivery tag so
// workers can ack or nack it after handling.
type eventMessage struct {
	event       booking.JobEvent
	deliveryTag uint64
}

// Service is the event-consuming notifier
type Service struct {
	logger         *slog.Logger
	booking        Lifecycle
	dispatcher     notification.Dispatcher
	rabbitClient   *rabbitmq.Client
	concurrency    int
	prefetchCount  int
	expiryInterval time.Duration
	notifierID     string
	eventsChan     chan *eventMessage
	wg             sync.WaitGroup
	stopChan       chan struct{}
}

// NewService creates a new notifier service instance
func NewService(cfg *Config) *Service {
	return &Service{
		logger:         cfg.Logger,
		booking:        cfg.Booking,
		dispatcher:     cfg.Dispatcher,
		rabbitClient:   cfg.RabbitClient,
		concurrency:    cfg.Concurrency,
		prefetchCount:  cfg.PrefetchCount,
		expiryInterval: cfg.ExpiryInterval,
		notifierID:     fmt.Sprintf("notifier-%s", uuid.NewString()[:8]),
		eventsChan:     make(chan *eventMessage),
		stopChan:       make(chan struct{}),
	}
}

// Start begins consuming lifecycle events. It blocks until the context
// is canceled or the delivery channel closes.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("Starting notifier service",
		slog.String("notifier_id", s.notifierID),
		slog.Int("concurrency", s.concurrency),
		slog.Duration("expiry_interval", s.expiryInterval),
	)

	deliveries, err := s.setupConsumer()
	if err != nil {
		return fmt.Errorf("failed to setup consumer: %w", err)
	}

	s.spawnWorkerPool(ctx)
	s.startExpiryTicker(ctx)

	s.runDispatchLoop(ctx, deliveries)
	return nil
}

// Stop gracefully stops the notifier service
func (s *Service) Stop() {
	s.logger.Info("Stopping notifier service...")
	close(s.stopChan)
	s.wg.Wait()
	s.logger.Info("Notifier service stopped")
}
