package booking

import (
	"context"

	"github.com/tolkify/booking-be/internal/booking/domain"
)

// GetJob returns a booking for the acting user. Admins see every job,
// customers their own, translators the jobs they are assigned to.
func (s *Service) GetJob(ctx context.Context, jobID, actorID string) (*domain.Job, error) {
	actor, err := s.users.User(ctx, actorID)
	if err != nil {
		return nil, err
	}
	job, err := s.store.FindJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if actor.IsAdmin() || job.CustomerID == actorID {
		return job, nil
	}

	a, err := s.store.ActiveAssignment(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if a.Active() && a.TranslatorID == actorID {
		return job, nil
	}

	return nil, domain.ErrForbidden
}

// SessionAlerts returns jobs whose recorded session time reached twice
// the booked duration. Admin only.
func (s *Service) SessionAlerts(ctx context.Context, actorID string) ([]domain.Job, error) {
	actor, err := s.users.User(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return s.store.OverrunJobs(ctx)
}
