package notifier

import (
	"context"
	"log/slog"
	"time"
)

// startExpiryTicker runs the periodic sweep that times out overdue
// pending bookings and notifies their customers.
func (s *Service) startExpiryTicker(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.expiryInterval)
		defer ticker.Stop()

		s.logger.Info("Expiry sweep started",
			slog.Duration("interval", s.expiryInterval),
		)

		for {
			select {
			case <-s.stopChan:
				s.logger.Info("Expiry sweep stopped - stopChan closed")
				return

			case <-ctx.Done():
				s.logger.Info("Expiry sweep stopped - context canceled")
				return

			case <-ticker.C:
				s.sweepExpired(ctx)
			}
		}
	}()
}

// sweepExpired expires every overdue pending booking and dispatches the
// resulting notifications. Failures are logged; the next tick retries.
func (s *Service) sweepExpired(ctx context.Context) {
	expired, effects, err := s.booking.ExpireOverdue(ctx)
	if err != nil {
		s.logger.Error("Expiry sweep failed",
			slog.String("error", err.Error()),
		)
		return
	}

	if expired == 0 {
		return
	}

	s.logger.Info("Expired overdue bookings",
		slog.Int("count", expired),
	)
	s.dispatcher.Dispatch(ctx, effects.Intents)
}
