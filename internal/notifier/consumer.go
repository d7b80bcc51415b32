package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tolkify/booking-be/internal/booking"
)

// setupConsumer sets up the RabbitMQ consumer with QoS and returns the
// delivery channel
func (s *Service) setupConsumer() (<-chan amqp.Delivery, error) {
	channel := s.rabbitClient.GetChannel()
	if channel == nil {
		return nil, fmt.Errorf("rabbitmq channel is nil")
	}

	// prefetch_count bounds the unacknowledged messages per consumer;
	// prefetch_size 0 means no byte limit, global false means per-consumer
	err := channel.Qos(
		s.prefetchCount, // prefetch count
		0,               // prefetch size
		false,           // global
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	s.logger.Info("RabbitMQ QoS configured",
		slog.Int("prefetch_count", s.prefetchCount),
	)

	deliveries, err := s.rabbitClient.Consume(s.notifierID)
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	s.logger.Info("RabbitMQ consumer started",
		slog.String("consumer_tag", s.notifierID),
	)

	return deliveries, nil
}

// runDispatchLoop reads deliveries, decodes them and hands them to the
// worker pool
func (s *Service) runDispatchLoop(ctx context.Context, deliveries <-chan amqp.Delivery) {
	s.logger.Info("Event dispatch loop started",
		slog.String("notifier_id", s.notifierID),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Event dispatch loop stopped - context canceled")
			return

		case delivery, ok := <-deliveries:
			if !ok {
				s.logger.Warn("RabbitMQ delivery channel closed")
				return
			}

			var ev booking.JobEvent
			if err := json.Unmarshal(delivery.Body, &ev); err != nil {
				s.logger.Error("Failed to parse event JSON",
					slog.String("error", err.Error()),
					slog.String("body", string(delivery.Body)),
				)
				// NACK without requeue - malformed messages should go to DLQ
				if nackErr := delivery.Nack(false, false); nackErr != nil {
					s.logger.Error("Failed to NACK malformed event",
						slog.String("error", nackErr.Error()),
					)
				}
				continue
			}

			if ev.Type == "" || ev.JobID == "" {
				s.logger.Error("Event missing type or job_id",
					slog.String("body", string(delivery.Body)),
				)
				if nackErr := delivery.Nack(false, false); nackErr != nil {
					s.logger.Error("Failed to NACK incomplete event",
						slog.String("error", nackErr.Error()),
					)
				}
				continue
			}

			msg := &eventMessage{
				event:       ev,
				deliveryTag: delivery.DeliveryTag,
			}

			select {
			case s.eventsChan <- msg:
				s.logger.Debug("Event dispatched to worker pool",
					slog.String("type", ev.Type),
					slog.String("job_id", ev.JobID),
					slog.Uint64("delivery_tag", delivery.DeliveryTag),
				)
			case <-ctx.Done():
				s.logger.Info("Event dispatch loop stopped while dispatching")
				// NACK with requeue so the event is reprocessed after restart
				if nackErr := delivery.Nack(false, true); nackErr != nil {
					s.logger.Error("Failed to NACK event on shutdown",
						slog.String("error", nackErr.Error()),
					)
				}
				return
			}
		}
	}
}
