package notification

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/tolkify/booking-be/internal/metrics"
)

// Dispatcher executes outbox intents after a lifecycle operation committed.
type Dispatcher interface {
	Dispatch(ctx context.Context, intents []Intent)
}

// Publisher is the slice of the message broker client the dispatcher needs.
type Publisher interface {
	PublishTo(ctx context.Context, routingKey string, body []byte, contentType string) error
}

// OutboxDispatcher hands intents to the transport layer through the broker,
// one message per intent, routed by channel (notify.email, notify.push,
// notify.sms). Failures are logged and counted but never propagated: a
// notification failure must not undo a committed state change, and the
// transport layer owns retries.
type OutboxDispatcher struct {
	pub     Publisher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewOutboxDispatcher builds a dispatcher over the given broker client.
func NewOutboxDispatcher(pub Publisher, logger *slog.Logger, m *metrics.Metrics) *OutboxDispatcher {
	return &OutboxDispatcher{pub: pub, logger: logger, metrics: m}
}

// Dispatch publishes every intent, continuing past individual failures.
func (d *OutboxDispatcher) Dispatch(ctx context.Context, intents []Intent) {
	for _, in := range intents {
		body, err := json.Marshal(in)
		if err != nil {
			d.logger.Error("Failed to encode notification intent",
				slog.String("job_id", in.JobID),
				slog.String("channel", string(in.Channel)),
				slog.Any("error", err),
			)
			d.metrics.MarkDispatchFailure(string(in.Channel))
			continue
		}

		if err := d.pub.PublishTo(ctx, "notify."+string(in.Channel), body, "application/json"); err != nil {
			d.logger.Error("Failed to dispatch notification intent",
				slog.String("job_id", in.JobID),
				slog.String("channel", string(in.Channel)),
				slog.String("user_id", in.UserID),
				slog.Any("error", err),
			)
			d.metrics.MarkDispatchFailure(string(in.Channel))
			continue
		}

		d.logger.Debug("Notification intent dispatched",
			slog.String("job_id", in.JobID),
			slog.String("channel", string(in.Channel)),
			slog.String("user_id", in.UserID),
			slog.Bool("delayed", in.Delayed),
		)
		d.metrics.MarkDispatched(string(in.Channel))
	}
}
