package booking

import (
	"context"
	"log/slog"

	"github.com/tolkify/booking-be/internal/booking/domain"
	"github.com/tolkify/booking-be/internal/notification"
)

// prefsOf adapts a translator profile's opt-out flags to the notification
// decision layer.
func prefsOf(p *domain.TranslatorProfile) notification.Prefs {
	return notification.Prefs{
		OptOutAll:       p.OptOutAll,
		OptOutNight:     p.OptOutNight,
		OptOutEmergency: p.OptOutEmergency,
	}
}

// FanoutIntents computes the suitable-job pushes for a created or reopened
// booking: every enabled translator is screened against the job, opt-outs
// and the exclusion carried by the event. Run by the notifier service.
func (s *Service) FanoutIntents(ctx context.Context, ev JobEvent) ([]notification.Intent, error) {
	job, err := s.store.FindJob(ctx, ev.JobID)
	if err != nil {
		return nil, err
	}
	// The booking may have been taken or cancelled between the event being
	// published and us consuming it.
	if job.Status != domain.StatusPending {
		return nil, nil
	}

	language, err := s.users.LanguageName(ctx, job.FromLanguageID)
	if err != nil {
		return nil, err
	}

	message := notification.NewBookingMessage(language, job.Duration, job.Due)
	if job.Immediate {
		message = notification.UrgentBookingMessage(language, job.Duration)
	}
	night := s.sched.NightNow()

	var intents []notification.Intent
	err = s.users.EachTranslator(ctx, func(p *domain.TranslatorProfile) error {
		if p.UserID == ev.ExcludeTranslator {
			return nil
		}
		prefs := prefsOf(p)
		if !notification.ShouldSend(prefs) || notification.SkipImmediate(prefs, job.Immediate) {
			return nil
		}
		ok, err := s.EligibleForJob(ctx, job, p)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		in := notification.PushIntent(p.UserID, job.ID, notification.KindSuitableJob, message)
		if notification.ShouldDelay(prefs, night) {
			in = notification.Delay(in, s.sched.NextBusinessTime(s.sched.Now()))
		}
		intents = append(intents, in)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveFanout(len(intents))
	s.logger.Info("Push fan-out computed",
		slog.String("job_id", job.ID),
		slog.String("event", ev.Type),
		slog.Int("recipients", len(intents)),
	)
	return intents, nil
}

// SMSFanout computes the SMS blast for a pending booking: the same
// eligibility screen as the push fan-out, but only the global opt-out
// applies since SMS has no night delay.
func (s *Service) SMSFanout(ctx context.Context, jobID string) ([]notification.Intent, error) {
	job, err := s.store.FindJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.StatusPending {
		return nil, nil
	}

	body, ok := notification.SMSBody(notification.SMSJob{
		JobID:            job.ID,
		Due:              job.Due,
		Duration:         job.Duration,
		Town:             job.Town,
		PhoneDelivery:    job.PhoneDelivery,
		PhysicalDelivery: job.PhysicalDelivery,
	})
	if !ok {
		return nil, nil
	}

	var intents []notification.Intent
	err = s.users.EachTranslator(ctx, func(p *domain.TranslatorProfile) error {
		if p.OptOutAll || p.Phone == "" {
			return nil
		}
		ok, err := s.EligibleForJob(ctx, job, p)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		intents = append(intents, notification.SMSIntent(p.UserID, p.Phone, job.ID, body))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("SMS fan-out computed",
		slog.String("job_id", job.ID),
		slog.Int("recipients", len(intents)),
	)
	return intents, nil
}
