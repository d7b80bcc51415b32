package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tolkify/booking-be/internal/booking"
	"github.com/tolkify/booking-be/internal/booking/domain"
)

// spawnWorkerPool spawns N worker goroutines based on concurrency
// configuration
func (s *Service) spawnWorkerPool(ctx context.Context) {
	s.logger.Info("Spawning worker pool",
		slog.Int("concurrency", s.concurrency),
		slog.String("notifier_id", s.notifierID),
	)

	for i := 0; i < s.concurrency; i++ {
		s.wg.Add(1)
		go s.workerLoop(ctx, i)
	}
}

// workerLoop is the main processing loop for each worker goroutine
func (s *Service) workerLoop(ctx context.Context, workerNum int) {
	defer s.wg.Done()

	workerName := fmt.Sprintf("%s-%d", s.notifierID, workerNum)
	s.logger.Info("Worker goroutine started",
		slog.String("worker_name", workerName),
	)

	for {
		select {
		case <-s.stopChan:
			s.logger.Info("Worker goroutine stopping - stopChan closed",
				slog.String("worker_name", workerName),
			)
			return

		case <-ctx.Done():
			s.logger.Info("Worker goroutine stopping - context canceled",
				slog.String("worker_name", workerName),
			)
			return

		case msg, ok := <-s.eventsChan:
			if !ok {
				s.logger.Info("Worker goroutine stopping - events channel closed",
					slog.String("worker_name", workerName),
				)
				return
			}

			err := s.handleEvent(ctx, msg.event)

			channel := s.rabbitClient.GetChannel()
			if channel == nil {
				s.logger.Error("Failed to get RabbitMQ channel for ACK/NACK",
					slog.String("worker_name", workerName),
					slog.String("job_id", msg.event.JobID),
				)
				continue
			}

			if err != nil {
				s.logger.Error("Event handling failed",
					slog.String("worker_name", workerName),
					slog.String("type", msg.event.Type),
					slog.String("job_id", msg.event.JobID),
					slog.String("error", err.Error()),
				)

				requeue := s.shouldRequeue(err)
				if nackErr := channel.Nack(msg.deliveryTag, false, requeue); nackErr != nil {
					s.logger.Error("Failed to NACK event",
						slog.String("worker_name", workerName),
						slog.String("error", nackErr.Error()),
					)
				}
				continue
			}

			if ackErr := channel.Ack(msg.deliveryTag, false); ackErr != nil {
				s.logger.Error("Failed to ACK event",
					slog.String("worker_name", workerName),
					slog.String("error", ackErr.Error()),
				)
			}
		}
	}
}

// handleEvent routes a lifecycle event to the matching fan-out.
// job.cancelled and session.ended carry no fan-out work for the
// notifier; they are consumed for the audit trail only.
func (s *Service) handleEvent(ctx context.Context, ev booking.JobEvent) error {
	switch ev.Type {
	case booking.EventJobCreated, booking.EventJobReopened, booking.EventResendPush:
		intents, err := s.booking.FanoutIntents(ctx, ev)
		if err != nil {
			return fmt.Errorf("push fan-out failed: %w", err)
		}
		s.dispatcher.Dispatch(ctx, intents)
		return nil

	case booking.EventResendSMS:
		intents, err := s.booking.SMSFanout(ctx, ev.JobID)
		if err != nil {
			return fmt.Errorf("sms fan-out failed: %w", err)
		}
		s.dispatcher.Dispatch(ctx, intents)
		return nil

	case booking.EventJobCancelled, booking.EventSessionEnded:
		s.logger.Debug("Audit-only event consumed",
			slog.String("type", ev.Type),
			slog.String("job_id", ev.JobID),
		)
		return nil

	default:
		s.logger.Warn("Unknown event type, discarding",
			slog.String("type", ev.Type),
			slog.String("job_id", ev.JobID),
		)
		return nil
	}
}

// shouldRequeue determines if an event should be requeued based on the
// error type. Events for jobs that no longer exist are dropped;
// everything else is assumed transient (database hiccups) and retried.
func (s *Service) shouldRequeue(err error) bool {
	if errors.Is(err, domain.ErrJobNotFound) {
		return false
	}
	return true
}
