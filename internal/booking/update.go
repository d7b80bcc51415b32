package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tolkify/booking-be/internal/booking/domain"
	"github.com/tolkify/booking-be/internal/notification"
)

// AdminUpdate is the admin edit form for a booking. Empty fields leave the
// corresponding attribute untouched; AdminComments and Reference are always
// written through, matching the edit form's full-overwrite behavior.
type AdminUpdate struct {
	Status domain.JobStatus

	DueDate string // 2006-01-02
	DueTime string // 15:04

	FromLanguageID string

	// Either may name the new translator; email wins when both are set.
	TranslatorID    string
	TranslatorEmail string

	AdminComments string
	Reference     string

	// SessionTime (hh:mm:ss) is required when closing a started session.
	SessionTime string
}

// UpdateJob applies an admin edit: translator reassignment, due or language
// change, and a status change from the admin transition table. Status
// combinations outside the table are counted and skipped, never errored, so
// a stale admin form cannot corrupt a booking that moved on.
//
// When the edit lands on a booking whose start time has already passed, the
// changes are persisted but all notifications are suppressed.
func (s *Service) UpdateJob(ctx context.Context, actorID, jobID string, upd AdminUpdate) (*domain.Job, Effects, error) {
	actor, err := s.users.User(ctx, actorID)
	if err != nil {
		return nil, Effects{}, err
	}
	if !actor.IsAdmin() {
		return nil, Effects{}, domain.ErrForbidden
	}

	job, err := s.store.FindJob(ctx, jobID)
	if err != nil {
		return nil, Effects{}, err
	}

	now := s.sched.Now()
	var effects Effects

	oldDue := job.Due
	oldLang := job.FromLanguageID

	translatorChanged, err := s.applyTranslatorChange(ctx, job, upd, now, &effects)
	if err != nil {
		return nil, Effects{}, err
	}

	if upd.DueDate != "" && upd.DueTime != "" {
		due, err := time.ParseInLocation(dueInputLayout, upd.DueDate+" "+upd.DueTime, now.Location())
		if err != nil {
			return nil, Effects{}, domain.NewValidationError("due_date", "invalid date or time")
		}
		if !due.Equal(oldDue) {
			job.Due = due
			job.WillExpireAt = s.sched.WillExpireAt(due, job.CreatedAt)
			effects.Intents = append(effects.Intents, s.changeEmail(ctx, job,
				notification.TemplateChangedDate, map[string]string{
					"old_time": oldDue.Format(dueInputLayout),
					"new_time": due.Format(dueInputLayout),
				})...)
		}
	}

	if upd.FromLanguageID != "" && upd.FromLanguageID != oldLang {
		oldName, err := s.users.LanguageName(ctx, oldLang)
		if err != nil {
			return nil, Effects{}, err
		}
		newName, err := s.users.LanguageName(ctx, upd.FromLanguageID)
		if err != nil {
			return nil, Effects{}, err
		}
		job.FromLanguageID = upd.FromLanguageID
		effects.Intents = append(effects.Intents, s.changeEmail(ctx, job,
			notification.TemplateChangedLang, map[string]string{
				"old_lang": oldName,
				"new_lang": newName,
			})...)
	}

	if upd.Status != "" && upd.Status != job.Status {
		if err := s.applyStatusChange(ctx, job, upd, translatorChanged, now, &effects); err != nil {
			return nil, Effects{}, err
		}
	}

	job.AdminComments = upd.AdminComments
	job.Reference = upd.Reference
	job.ByAdmin = true
	job.UpdatedAt = now

	if err := s.store.UpdateJob(ctx, job); err != nil {
		return nil, Effects{}, fmt.Errorf("update job: %w", err)
	}
	s.logger.Info("Booking updated by admin",
		slog.String("job_id", job.ID),
		slog.String("admin_id", actorID),
		slog.String("status", string(job.Status)),
	)

	// Edits landing after the session start change the record only.
	if !job.Due.After(now) {
		return job, Effects{}, nil
	}
	return job, effects, nil
}

// applyTranslatorChange reassigns the booking when the form names a
// different translator. The old assignment is soft-cancelled so history
// stays queryable, and all three parties are mailed.
func (s *Service) applyTranslatorChange(ctx context.Context, job *domain.Job, upd AdminUpdate, now time.Time, effects *Effects) (bool, error) {
	if upd.TranslatorID == "" && upd.TranslatorEmail == "" {
		return false, nil
	}

	var translator *domain.User
	var err error
	if upd.TranslatorEmail != "" {
		translator, err = s.users.UserByEmail(ctx, upd.TranslatorEmail)
	} else {
		translator, err = s.users.User(ctx, upd.TranslatorID)
	}
	if err != nil {
		return false, err
	}
	if !translator.IsTranslator() {
		return false, domain.NewValidationError("translator", "user is not a translator")
	}

	current, err := s.store.ActiveAssignment(ctx, job.ID)
	if err != nil {
		return false, err
	}
	if current.Active() && current.TranslatorID == translator.ID {
		return false, nil
	}

	if current.Active() {
		if err := s.store.CancelAssignment(ctx, current.ID, now); err != nil {
			return false, fmt.Errorf("cancel assignment: %w", err)
		}
		old, err := s.users.User(ctx, current.TranslatorID)
		if err != nil {
			return false, err
		}
		effects.Intents = append(effects.Intents,
			notification.EmailIntent(old.ID, old.Email, old.Name, job.ID,
				notification.ChangedTranslatorSubject(job.ID),
				notification.TemplateChangedTranslatorOld, nil))
	}

	if err := s.store.CreateAssignment(ctx, &domain.TranslatorAssignment{
		ID:           uuid.NewString(),
		JobID:        job.ID,
		TranslatorID: translator.ID,
		CreatedAt:    now,
	}); err != nil {
		return false, fmt.Errorf("create assignment: %w", err)
	}

	customer, err := s.users.User(ctx, job.CustomerID)
	if err != nil {
		return false, err
	}
	email, name := s.customerContact(job, customer)
	effects.Intents = append(effects.Intents,
		notification.EmailIntent(job.CustomerID, email, name, job.ID,
			notification.ChangedTranslatorSubject(job.ID),
			notification.TemplateChangedTranslatorCustomer, nil),
		notification.EmailIntent(translator.ID, translator.Email, translator.Name, job.ID,
			notification.ChangedTranslatorSubject(job.ID),
			notification.TemplateChangedTranslatorNew, nil))

	s.logger.Info("Translator reassigned",
		slog.String("job_id", job.ID),
		slog.String("translator_id", translator.ID),
	)
	return true, nil
}

// changeEmail mails the customer that an attribute of their booking was
// changed. A recipient lookup failure drops the mail, never the edit.
func (s *Service) changeEmail(ctx context.Context, job *domain.Job, template string, data map[string]string) []notification.Intent {
	customer, err := s.users.User(ctx, job.CustomerID)
	if err != nil {
		s.logger.Error("Failed to resolve customer for change notice",
			slog.String("job_id", job.ID),
			slog.Any("error", err),
		)
		return nil
	}
	email, name := s.customerContact(job, customer)
	return []notification.Intent{
		notification.EmailIntent(job.CustomerID, email, name, job.ID,
			notification.ChangedBookingSubject(job.ID), template, data),
	}
}

// applyStatusChange runs the per-state admin status handlers. Transitions
// outside the table are recorded and skipped.
func (s *Service) applyStatusChange(ctx context.Context, job *domain.Job, upd AdminUpdate, translatorChanged bool, now time.Time, effects *Effects) error {
	from, to := job.Status, upd.Status

	if !to.Valid() || !domain.AdminEditAllowed(from, to) {
		s.metrics.MarkIgnoredTransition(string(from), string(to))
		s.logger.Warn("Ignored admin status edit outside the transition table",
			slog.String("job_id", job.ID),
			slog.String("from", string(from)),
			slog.String("to", string(to)),
		)
		return nil
	}

	switch from {
	case domain.StatusTimedOut:
		if to == domain.StatusAssigned && !translatorChanged {
			// Assigning a timed-out booking only makes sense together with
			// a concrete translator.
			s.metrics.MarkIgnoredTransition(string(from), string(to))
			return nil
		}
		job.Status = to
		job.CreatedAt = now
		job.WillExpireAt = s.sched.WillExpireAt(job.Due, now)
		if to == domain.StatusPending {
			return s.reopenedEffects(ctx, job, "", effects)
		}
		return s.acceptedEmail(ctx, job, effects)

	case domain.StatusCompleted:
		// completed -> timedout, reverting a wrongly closed session.
		if upd.AdminComments == "" {
			return domain.NewValidationError("admin_comments", "please add a comment")
		}
		job.Status = to
		return nil

	case domain.StatusStarted:
		// started -> completed, closing the session from the admin form.
		if upd.AdminComments == "" {
			return domain.NewValidationError("admin_comments", "please add a comment")
		}
		if upd.SessionTime == "" {
			return domain.NewValidationError("session_time", "please fill in session time")
		}
		job.Status = to
		job.SessionTime = upd.SessionTime
		job.EndAt = &now

		assignment, err := s.store.ActiveAssignment(ctx, job.ID)
		if err != nil {
			return err
		}
		if assignment.Active() {
			if err := s.store.CompleteAssignment(ctx, assignment.ID, job.CustomerID, now); err != nil {
				return fmt.Errorf("complete assignment: %w", err)
			}
		}
		ended, err := s.sessionEndedEffects(ctx, job, assignment)
		if err != nil {
			return err
		}
		effects.Intents = append(effects.Intents, ended.Intents...)
		effects.Events = append(effects.Events, ended.Events...)
		return nil

	case domain.StatusPending:
		if to == domain.StatusAssigned {
			if !translatorChanged {
				s.metrics.MarkIgnoredTransition(string(from), string(to))
				return nil
			}
			job.Status = to
			if err := s.acceptedEmail(ctx, job, effects); err != nil {
				return err
			}
			return s.sessionReminders(ctx, job, effects)
		}
		if to == domain.StatusTimedOut && upd.AdminComments == "" {
			return domain.NewValidationError("admin_comments", "please add a comment")
		}
		job.Status = to
		return s.cancellationEmail(ctx, job, effects)

	case domain.StatusAssigned:
		if to == domain.StatusTimedOut && upd.AdminComments == "" {
			return domain.NewValidationError("admin_comments", "please add a comment")
		}
		assignment, err := s.store.ActiveAssignment(ctx, job.ID)
		if err != nil {
			return err
		}
		job.Status = to
		job.WithdrawAt = &now
		if assignment.Active() {
			if err := s.store.CancelAssignment(ctx, assignment.ID, now); err != nil {
				return fmt.Errorf("cancel assignment: %w", err)
			}
			translator, err := s.users.User(ctx, assignment.TranslatorID)
			if err != nil {
				return err
			}
			effects.Intents = append(effects.Intents,
				notification.EmailIntent(translator.ID, translator.Email, translator.Name, job.ID,
					notification.CancellationSubject(job.ID),
					notification.TemplateJobCancelTranslator, nil))
		}
		return s.cancellationEmail(ctx, job, effects)

	case domain.StatusWithdrawAfter24:
		if upd.AdminComments == "" {
			return domain.NewValidationError("admin_comments", "please add a comment")
		}
		job.Status = to
		return nil
	}
	return nil
}

// Reopen puts a finished booking back on offer. A timed-out booking is
// cloned into a fresh pending row so the timeout stays on record; any other
// state is reset in place. Only the booking's customer or an admin may
// reopen.
func (s *Service) Reopen(ctx context.Context, jobID, actorID string) (*domain.Job, Effects, error) {
	actor, err := s.users.User(ctx, actorID)
	if err != nil {
		return nil, Effects{}, err
	}
	job, err := s.store.FindJob(ctx, jobID)
	if err != nil {
		return nil, Effects{}, err
	}
	if job.CustomerID != actorID && !actor.IsAdmin() {
		return nil, Effects{}, domain.ErrForbidden
	}

	now := s.sched.Now()

	assignment, err := s.store.ActiveAssignment(ctx, job.ID)
	if err != nil {
		return nil, Effects{}, err
	}
	if assignment.Active() {
		if err := s.store.CancelAssignment(ctx, assignment.ID, now); err != nil {
			return nil, Effects{}, fmt.Errorf("cancel assignment: %w", err)
		}
	}

	var effects Effects
	var reopened *domain.Job

	if job.Status == domain.StatusTimedOut {
		clone := *job
		clone.ID = uuid.NewString()
		clone.Status = domain.StatusPending
		clone.CreatedAt = now
		clone.UpdatedAt = now
		clone.WillExpireAt = s.sched.WillExpireAt(job.Due, now)
		clone.AdminComments = fmt.Sprintf("This booking is a reopening of booking #%s", job.ID)
		clone.EndAt = nil
		clone.WithdrawAt = nil
		clone.SessionTime = ""

		if err := s.store.CloneJob(ctx, job, clone.ID, now, clone.WillExpireAt, clone.AdminComments); err != nil {
			return nil, Effects{}, fmt.Errorf("clone job: %w", err)
		}
		reopened = &clone
	} else {
		job.Status = domain.StatusPending
		job.CreatedAt = now
		job.UpdatedAt = now
		job.WillExpireAt = s.sched.WillExpireAt(job.Due, now)
		job.EndAt = nil
		job.WithdrawAt = nil
		if err := s.store.UpdateJob(ctx, job); err != nil {
			return nil, Effects{}, fmt.Errorf("update job: %w", err)
		}
		reopened = job
	}

	if err := s.reopenedEffects(ctx, reopened, "", &effects); err != nil {
		return nil, Effects{}, err
	}

	s.logger.Info("Booking reopened",
		slog.String("job_id", jobID),
		slog.String("reopened_id", reopened.ID),
		slog.String("actor_id", actorID),
	)
	return reopened, effects, nil
}

// reopenedEffects mails the customer and emits the job.reopened event that
// drives a fresh push fan-out.
func (s *Service) reopenedEffects(ctx context.Context, job *domain.Job, excludeTranslator string, effects *Effects) error {
	payload, err := s.payload(ctx, job)
	if err != nil {
		return err
	}
	customer, err := s.users.User(ctx, job.CustomerID)
	if err != nil {
		return err
	}
	email, name := s.customerContact(job, customer)
	effects.Intents = append(effects.Intents,
		notification.EmailIntent(job.CustomerID, email, name, job.ID,
			notification.ReopenedSubject(payload.Language, job.ID),
			notification.TemplateJobReopenedCustomer, payloadData(payload)))
	effects.Events = append(effects.Events, JobEvent{
		Type:              EventJobReopened,
		JobID:             job.ID,
		ExcludeTranslator: excludeTranslator,
		Payload:           payload,
	})
	return nil
}

// acceptedEmail mails the customer the acceptance confirmation, used when
// an admin assignment stands in for a translator accept.
func (s *Service) acceptedEmail(ctx context.Context, job *domain.Job, effects *Effects) error {
	customer, err := s.users.User(ctx, job.CustomerID)
	if err != nil {
		return err
	}
	language, err := s.users.LanguageName(ctx, job.FromLanguageID)
	if err != nil {
		return err
	}
	email, name := s.customerContact(job, customer)
	effects.Intents = append(effects.Intents,
		notification.EmailIntent(job.CustomerID, email, name, job.ID,
			notification.AcceptedSubject(job.ID),
			notification.TemplateJobAccepted, map[string]string{
				"language": language,
				"due":      job.Due.Format(dueInputLayout),
				"duration": notification.FormatDuration(job.Duration),
			}))
	return nil
}

// cancellationEmail mails the customer that the booking was taken out of
// play by an admin edit.
func (s *Service) cancellationEmail(ctx context.Context, job *domain.Job, effects *Effects) error {
	customer, err := s.users.User(ctx, job.CustomerID)
	if err != nil {
		return err
	}
	email, name := s.customerContact(job, customer)
	effects.Intents = append(effects.Intents,
		notification.EmailIntent(job.CustomerID, email, name, job.ID,
			notification.CancellationSubject(job.ID),
			notification.TemplateStatusChangedCustomer, map[string]string{
				"status": string(job.Status),
			}))
	return nil
}

// sessionReminders pushes the upcoming-session reminder to both parties of
// a freshly assigned booking.
func (s *Service) sessionReminders(ctx context.Context, job *domain.Job, effects *Effects) error {
	language, err := s.users.LanguageName(ctx, job.FromLanguageID)
	if err != nil {
		return err
	}
	assignment, err := s.store.ActiveAssignment(ctx, job.ID)
	if err != nil {
		return err
	}

	msg := notification.SessionReminderMessage(job.PhysicalOnly(), language, job.Town, job.Due, job.Duration)
	push := notification.PushIntent(job.CustomerID, job.ID, notification.KindSessionStartRemind, msg)
	effects.Intents = append(effects.Intents, s.maybeDelayed(ctx, job.CustomerID, push)...)
	if assignment.Active() {
		push := notification.PushIntent(assignment.TranslatorID, job.ID, notification.KindSessionStartRemind, msg)
		effects.Intents = append(effects.Intents, s.maybeDelayed(ctx, assignment.TranslatorID, push)...)
	}
	return nil
}
