// Package booking implements the interpreter booking lifecycle: creation,
// acceptance, cancellation, completion, expiry and the admin edit surface.
// Every operation mutates state first and returns the notification intents
// and broker events it produced as Effects; the caller executes those only
// after the state change committed.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tolkify/booking-be/internal/booking/domain"
	"github.com/tolkify/booking-be/internal/metrics"
	"github.com/tolkify/booking-be/internal/notification"
	"github.com/tolkify/booking-be/internal/schedule"
)

const (
	defaultImmediateLead = 5 * time.Minute
	defaultCancelWindow  = 24 * time.Hour
)

// Service is the booking lifecycle engine.
type Service struct {
	store   JobStore
	users   UserDirectory
	sched   *schedule.Schedule
	logger  *slog.Logger
	metrics *metrics.Metrics

	// immediateLead is how far ahead an immediate booking is scheduled.
	immediateLead time.Duration
	// cancelWindow is the boundary between free and late cancellation.
	cancelWindow time.Duration
}

// ServiceConfig wires the lifecycle engine's dependencies.
type ServiceConfig struct {
	Store   JobStore
	Users   UserDirectory
	Sched   *schedule.Schedule
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	ImmediateLead time.Duration
	CancelWindow  time.Duration
}

// NewService builds the lifecycle engine. Zero durations fall back to the
// operational defaults (5 minute immediate lead, 24 hour cancel window).
func NewService(cfg ServiceConfig) *Service {
	if cfg.Sched == nil {
		cfg.Sched = schedule.New(nil, schedule.DefaultHours)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ImmediateLead <= 0 {
		cfg.ImmediateLead = defaultImmediateLead
	}
	if cfg.CancelWindow <= 0 {
		cfg.CancelWindow = defaultCancelWindow
	}
	return &Service{
		store:         cfg.Store,
		users:         cfg.Users,
		sched:         cfg.Sched,
		logger:        cfg.Logger,
		metrics:       cfg.Metrics,
		immediateLead: cfg.ImmediateLead,
		cancelWindow:  cfg.CancelWindow,
	}
}

// CreateBookingInput is the booking form as the customer submitted it.
type CreateBookingInput struct {
	FromLanguageID string
	Immediate      bool

	// Scheduled bookings only; immediate bookings start at now + lead.
	DueDate string // 2006-01-02
	DueTime string // 15:04

	Duration         int // minutes
	PhoneDelivery    bool
	PhysicalDelivery bool

	// JobFor carries the audience checkboxes from the booking form:
	// male, female, normal, certified, certified_in_law, certified_in_health.
	JobFor []string

	ContactEmail string
	Reference    string
}

// Audience folds the booking form's audience checkboxes into the job's
// gender and certification constraints. Ticking normal together with a
// certified level produces the combined levels (both, n_law, n_health).
func Audience(jobFor []string) (domain.Gender, domain.CertifiedLevel) {
	var gender domain.Gender
	var normal, cert, law, health bool
	for _, token := range jobFor {
		switch token {
		case "male":
			gender = domain.GenderMale
		case "female":
			gender = domain.GenderFemale
		case "normal":
			normal = true
		case "certified":
			cert = true
		case "certified_in_law":
			law = true
		// Both spellings are accepted; the legacy booking form shipped the
		// misspelled token for years and stored rows still carry it.
		case "certified_in_health", "certified_in_helth":
			health = true
		}
	}

	var level domain.CertifiedLevel
	switch {
	case normal && cert:
		level = domain.CertifiedBoth
	case normal && law:
		level = domain.CertifiedNLaw
	case normal && health:
		level = domain.CertifiedNHealth
	case cert:
		level = domain.CertifiedYes
	case law:
		level = domain.CertifiedLaw
	case health:
		level = domain.CertifiedHealth
	case normal:
		level = domain.CertifiedNormal
	}
	return gender, level
}

// jobTypeFor maps the customer's consumer tier to the job type their
// bookings carry.
func jobTypeFor(tier domain.ConsumerTier) domain.JobType {
	switch tier {
	case domain.ConsumerRWS:
		return domain.JobTypeRWS
	case domain.ConsumerNGO:
		return domain.JobTypeUnpaid
	default:
		return domain.JobTypePaid
	}
}

const dueInputLayout = "2006-01-02 15:04"

// CreateBooking validates the form, derives the job's constraints and
// persists it as pending. Effects carry the booking-received email and the
// job.created event that drives the translator push fan-out.
func (s *Service) CreateBooking(ctx context.Context, customerID string, in CreateBookingInput) (*domain.Job, Effects, error) {
	customer, err := s.users.User(ctx, customerID)
	if err != nil {
		return nil, Effects{}, err
	}
	if !customer.IsCustomer() {
		return nil, Effects{}, domain.ErrForbidden
	}

	if in.FromLanguageID == "" {
		return nil, Effects{}, domain.NewValidationError("from_language_id", "you must fill in from language")
	}

	now := s.sched.Now()
	var due time.Time

	if in.Immediate {
		if in.Duration <= 0 {
			return nil, Effects{}, domain.NewValidationError("duration", "you must fill in duration")
		}
		due = now.Add(s.immediateLead)
	} else {
		if in.DueDate == "" {
			return nil, Effects{}, domain.NewValidationError("due_date", "you must fill in due date")
		}
		if in.DueTime == "" {
			return nil, Effects{}, domain.NewValidationError("due_time", "you must fill in due time")
		}
		if !in.PhoneDelivery && !in.PhysicalDelivery {
			return nil, Effects{}, domain.NewValidationError("delivery", "you must make a selection here")
		}
		if in.Duration <= 0 {
			return nil, Effects{}, domain.NewValidationError("duration", "you must fill in duration")
		}

		due, err = time.ParseInLocation(dueInputLayout, in.DueDate+" "+in.DueTime, now.Location())
		if err != nil {
			return nil, Effects{}, domain.NewValidationError("due_date", "invalid date or time")
		}
		if due.Before(now) {
			return nil, Effects{}, domain.NewValidationError("due", "cannot create booking in the past")
		}
	}

	gender, level := Audience(in.JobFor)

	job := &domain.Job{
		ID:             uuid.NewString(),
		CustomerID:     customerID,
		Status:         domain.StatusPending,
		FromLanguageID: in.FromLanguageID,
		Immediate:      in.Immediate,
		Duration:       in.Duration,
		JobType:        jobTypeFor(customer.ConsumerTier),
		Gender:         gender,
		CertifiedLevel: level,
		// Immediate bookings are always delivered by phone.
		PhoneDelivery:    in.PhoneDelivery || in.Immediate,
		PhysicalDelivery: in.PhysicalDelivery && !in.Immediate,
		Town:             customer.City,
		Due:              due,
		CreatedAt:        now,
		UpdatedAt:        now,
		WillExpireAt:     s.sched.WillExpireAt(due, now),
		ContactEmail:     in.ContactEmail,
		Reference:        in.Reference,
	}

	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, Effects{}, fmt.Errorf("create job: %w", err)
	}
	s.metrics.MarkBookingCreated()
	s.logger.Info("Booking created",
		slog.String("job_id", job.ID),
		slog.String("customer_id", customerID),
		slog.Bool("immediate", job.Immediate),
		slog.Time("due", job.Due),
	)

	payload, err := s.payload(ctx, job)
	if err != nil {
		return nil, Effects{}, err
	}

	email, name := s.customerContact(job, customer)
	effects := Effects{
		Intents: []notification.Intent{
			notification.EmailIntent(customerID, email, name, job.ID,
				notification.BookingReceivedSubject(job.ID),
				notification.TemplateJobCreated, payloadData(payload)),
		},
		Events: []JobEvent{{Type: EventJobCreated, JobID: job.ID, Payload: payload}},
	}
	return job, effects, nil
}

// AcceptResult is what a successful acceptance hands back to the caller:
// the updated job, the translator's refreshed potential-jobs listing and,
// for the deep-link variant, a confirmation text for the translator.
type AcceptResult struct {
	Job           *domain.Job
	Confirmation  string
	PotentialJobs []domain.Job
}

// AcceptConflictError explains a lost acceptance race to the translator.
// It unwraps to domain.ErrAlreadyAccepted.
type AcceptConflictError struct {
	Message string
}

func (e *AcceptConflictError) Error() string { return e.Message }

func (e *AcceptConflictError) Unwrap() error { return domain.ErrAlreadyAccepted }

// AcceptJob is a translator taking a pending job. The store flips the
// status and inserts the assignment in one transaction, so of two
// concurrent accepts exactly one returns ErrAlreadyAccepted.
func (s *Service) AcceptJob(ctx context.Context, jobID, translatorID string) (*AcceptResult, Effects, error) {
	return s.accept(ctx, jobID, translatorID, false)
}

// AcceptJobWithID is the deep-link variant of AcceptJob: on top of the
// customer email it pushes an in-app confirmation to the customer and
// the result carries translator-facing confirmation text.
func (s *Service) AcceptJobWithID(ctx context.Context, jobID, translatorID string) (*AcceptResult, Effects, error) {
	return s.accept(ctx, jobID, translatorID, true)
}

func (s *Service) accept(ctx context.Context, jobID, translatorID string, withID bool) (*AcceptResult, Effects, error) {
	translator, err := s.users.User(ctx, translatorID)
	if err != nil {
		return nil, Effects{}, err
	}
	if !translator.IsTranslator() {
		return nil, Effects{}, domain.ErrForbidden
	}

	job, err := s.store.FindJob(ctx, jobID)
	if err != nil {
		return nil, Effects{}, err
	}

	busy, err := s.store.TranslatorBusyAt(ctx, translatorID, job.Due, job.Duration)
	if err != nil {
		return nil, Effects{}, err
	}
	if busy {
		return nil, Effects{}, domain.ErrTranslatorBooked
	}

	now := s.sched.Now()
	if _, err := s.store.AcceptJob(ctx, jobID, translatorID, uuid.NewString(), now); err != nil {
		if errors.Is(err, domain.ErrAlreadyAccepted) {
			s.metrics.MarkAcceptConflict()
			s.logger.Info("Acceptance lost to another translator",
				slog.String("job_id", jobID),
				slog.String("translator_id", translatorID),
			)
			if withID {
				if language, langErr := s.users.LanguageName(ctx, job.FromLanguageID); langErr == nil {
					err = &AcceptConflictError{
						Message: notification.AcceptLostMessage(language, job.Duration, job.Due),
					}
				}
			}
		}
		return nil, Effects{}, err
	}
	s.metrics.MarkAccepted()
	s.logger.Info("Job accepted",
		slog.String("job_id", jobID),
		slog.String("translator_id", translatorID),
	)

	job.Status = domain.StatusAssigned
	job.UpdatedAt = now

	customer, err := s.users.User(ctx, job.CustomerID)
	if err != nil {
		return nil, Effects{}, err
	}
	language, err := s.users.LanguageName(ctx, job.FromLanguageID)
	if err != nil {
		return nil, Effects{}, err
	}

	email, name := s.customerContact(job, customer)
	effects := Effects{
		Intents: []notification.Intent{
			notification.EmailIntent(job.CustomerID, email, name, job.ID,
				notification.AcceptedSubject(job.ID),
				notification.TemplateJobAccepted, map[string]string{
					"language": language,
					"due":      job.Due.Format(dueInputLayout),
					"duration": notification.FormatDuration(job.Duration),
				}),
		},
	}

	result := &AcceptResult{Job: job}
	if withID {
		push := notification.PushIntent(job.CustomerID, job.ID,
			notification.KindJobAccepted,
			notification.AcceptedMessage(language, job.Duration, job.Due))
		effects.Intents = append(effects.Intents, s.maybeDelayed(ctx, job.CustomerID, push)...)
		result.Confirmation = notification.AcceptConfirmation(language, job.Duration, job.Due)
	}

	// The acceptance is committed; a failed listing refresh must not undo it.
	potential, err := s.PotentialJobs(ctx, translatorID)
	if err != nil {
		s.logger.Warn("Failed to refresh potential jobs after acceptance",
			slog.String("translator_id", translatorID),
			slog.String("error", err.Error()),
		)
	}
	result.PotentialJobs = potential

	return result, effects, nil
}

// CancelJob handles self-service cancellation for both sides of a booking.
//
// Customers may cancel any active booking; inside the cancel window the job
// lands in withdrawafter24 (billed), outside it in withdrawbefore24.
// Translators may only cancel more than the window ahead of the start; the
// job then returns to pending and is offered to everyone else.
func (s *Service) CancelJob(ctx context.Context, jobID, userID string) (*domain.Job, Effects, error) {
	user, err := s.users.User(ctx, userID)
	if err != nil {
		return nil, Effects{}, err
	}
	job, err := s.store.FindJob(ctx, jobID)
	if err != nil {
		return nil, Effects{}, err
	}

	if job.CustomerID == userID || user.IsAdmin() {
		return s.cancelByCustomer(ctx, job)
	}
	if user.IsTranslator() {
		return s.cancelByTranslator(ctx, job, userID)
	}
	return nil, Effects{}, domain.ErrForbidden
}

func (s *Service) cancelByCustomer(ctx context.Context, job *domain.Job) (*domain.Job, Effects, error) {
	next, ok := domain.Next(job.Status, domain.TriggerCustomerCancel)
	if !ok {
		return nil, Effects{}, domain.NewValidationError("status", "booking can no longer be cancelled")
	}

	now := s.sched.Now()
	if job.Due.Sub(now) < s.cancelWindow {
		next = domain.StatusWithdrawAfter24
	}

	assignment, err := s.store.ActiveAssignment(ctx, job.ID)
	if err != nil {
		return nil, Effects{}, err
	}

	job.Status = next
	job.WithdrawAt = &now
	job.UpdatedAt = now
	if err := s.store.UpdateJob(ctx, job); err != nil {
		return nil, Effects{}, fmt.Errorf("update job: %w", err)
	}

	var effects Effects
	if assignment.Active() {
		if err := s.store.CancelAssignment(ctx, assignment.ID, now); err != nil {
			return nil, Effects{}, fmt.Errorf("cancel assignment: %w", err)
		}

		language, err := s.users.LanguageName(ctx, job.FromLanguageID)
		if err != nil {
			return nil, Effects{}, err
		}
		push := notification.PushIntent(assignment.TranslatorID, job.ID,
			notification.KindJobCancelled,
			notification.CustomerCancelledMessage(language, job.Duration, job.Due))
		effects.Intents = append(effects.Intents, s.maybeDelayed(ctx, assignment.TranslatorID, push)...)
	}

	payload, err := s.payload(ctx, job)
	if err != nil {
		return nil, Effects{}, err
	}
	effects.Events = append(effects.Events, JobEvent{Type: EventJobCancelled, JobID: job.ID, Payload: payload})

	s.logger.Info("Booking cancelled by customer",
		slog.String("job_id", job.ID),
		slog.String("status", string(job.Status)),
	)
	return job, effects, nil
}

func (s *Service) cancelByTranslator(ctx context.Context, job *domain.Job, translatorID string) (*domain.Job, Effects, error) {
	assignment, err := s.store.ActiveAssignment(ctx, job.ID)
	if err != nil {
		return nil, Effects{}, err
	}
	if !assignment.Active() || assignment.TranslatorID != translatorID {
		return nil, Effects{}, domain.ErrForbidden
	}

	now := s.sched.Now()
	if job.Due.Sub(now) < s.cancelWindow {
		return nil, Effects{}, domain.ErrTooLateToCancel
	}

	next, ok := domain.Next(job.Status, domain.TriggerTranslatorCancel)
	if !ok {
		return nil, Effects{}, domain.NewValidationError("status", "booking can no longer be cancelled")
	}

	// The job goes back on offer as if freshly created, so the expiry
	// window restarts from now.
	job.Status = next
	job.CreatedAt = now
	job.UpdatedAt = now
	job.WillExpireAt = s.sched.WillExpireAt(job.Due, now)
	if err := s.store.UpdateJob(ctx, job); err != nil {
		return nil, Effects{}, fmt.Errorf("update job: %w", err)
	}
	if err := s.store.CancelAssignment(ctx, assignment.ID, now); err != nil {
		return nil, Effects{}, fmt.Errorf("cancel assignment: %w", err)
	}

	language, err := s.users.LanguageName(ctx, job.FromLanguageID)
	if err != nil {
		return nil, Effects{}, err
	}
	payload, err := s.payload(ctx, job)
	if err != nil {
		return nil, Effects{}, err
	}

	var effects Effects
	push := notification.PushIntent(job.CustomerID, job.ID,
		notification.KindJobCancelled,
		notification.TranslatorCancelledMessage(language, job.Duration, job.Due))
	effects.Intents = append(effects.Intents, s.maybeDelayed(ctx, job.CustomerID, push)...)
	effects.Events = append(effects.Events, JobEvent{
		Type:              EventJobReopened,
		JobID:             job.ID,
		ExcludeTranslator: translatorID,
		Payload:           payload,
	})

	s.logger.Info("Booking cancelled by translator, back on offer",
		slog.String("job_id", job.ID),
		slog.String("translator_id", translatorID),
	)
	return job, effects, nil
}

// EndJob completes a started session: records the session time, completes
// the assignment and mails the session summary to both parties. Calling it
// on a job that is not started is a successful no-op, so double submissions
// of the end form stay harmless.
func (s *Service) EndJob(ctx context.Context, jobID, actorID string) (*domain.Job, Effects, error) {
	job, err := s.store.FindJob(ctx, jobID)
	if err != nil {
		return nil, Effects{}, err
	}
	if job.Status != domain.StatusStarted {
		return job, Effects{}, nil
	}

	now := s.sched.Now()
	session := now.Sub(job.Due)
	if session < 0 {
		session = -session
	}
	job.Status = domain.StatusCompleted
	job.EndAt = &now
	job.UpdatedAt = now
	job.SessionTime = fmt.Sprintf("%02d:%02d:%02d",
		int(session.Hours()), int(session.Minutes())%60, int(session.Seconds())%60)

	if err := s.store.UpdateJob(ctx, job); err != nil {
		return nil, Effects{}, fmt.Errorf("update job: %w", err)
	}

	assignment, err := s.store.ActiveAssignment(ctx, job.ID)
	if err != nil {
		return nil, Effects{}, err
	}
	if assignment.Active() {
		if err := s.store.CompleteAssignment(ctx, assignment.ID, actorID, now); err != nil {
			return nil, Effects{}, fmt.Errorf("complete assignment: %w", err)
		}
	}

	effects, err := s.sessionEndedEffects(ctx, job, assignment)
	if err != nil {
		return nil, Effects{}, err
	}

	s.logger.Info("Session ended",
		slog.String("job_id", job.ID),
		slog.String("session_time", job.SessionTime),
	)
	return job, effects, nil
}

// sessionEndedEffects builds the invoice email for the customer and the
// salary email for the translator, plus the session.ended event.
func (s *Service) sessionEndedEffects(ctx context.Context, job *domain.Job, assignment *domain.TranslatorAssignment) (Effects, error) {
	customer, err := s.users.User(ctx, job.CustomerID)
	if err != nil {
		return Effects{}, err
	}

	duration := notification.FormatSessionTime(job.SessionTime)
	email, name := s.customerContact(job, customer)

	var effects Effects
	effects.Intents = append(effects.Intents,
		notification.EmailIntent(job.CustomerID, email, name, job.ID,
			notification.SessionEndedSubject(job.ID),
			notification.TemplateSessionEnded, map[string]string{
				"session_time": duration,
				"for_text":     "invoice",
			}))

	sessionWith := ""
	if assignment != nil {
		translator, err := s.users.User(ctx, assignment.TranslatorID)
		if err != nil {
			return Effects{}, err
		}
		sessionWith = translator.ID
		effects.Intents = append(effects.Intents,
			notification.EmailIntent(translator.ID, translator.Email, translator.Name, job.ID,
				notification.SessionEndedSubject(job.ID),
				notification.TemplateSessionEnded, map[string]string{
					"session_time": duration,
					"for_text":     "salary",
				}))
	}

	payload, err := s.payload(ctx, job)
	if err != nil {
		return Effects{}, err
	}
	effects.Events = append(effects.Events, JobEvent{
		Type:        EventSessionEnded,
		JobID:       job.ID,
		SessionWith: sessionWith,
		Payload:     payload,
	})
	return effects, nil
}

// CustomerNotCall marks a no-show: the translator reports the customer
// never joined the session. The assignment is completed (the translator is
// still paid) and the job lands in not_carried_out_customer. Jobs already
// out of the active states are left untouched.
func (s *Service) CustomerNotCall(ctx context.Context, jobID, translatorID string) (*domain.Job, Effects, error) {
	job, err := s.store.FindJob(ctx, jobID)
	if err != nil {
		return nil, Effects{}, err
	}

	next, ok := domain.Next(job.Status, domain.TriggerCustomerNoShow)
	if !ok {
		return job, Effects{}, nil
	}

	now := s.sched.Now()
	job.Status = next
	job.EndAt = &now
	job.UpdatedAt = now
	if err := s.store.UpdateJob(ctx, job); err != nil {
		return nil, Effects{}, fmt.Errorf("update job: %w", err)
	}

	assignment, err := s.store.ActiveAssignment(ctx, job.ID)
	if err != nil {
		return nil, Effects{}, err
	}
	if assignment.Active() {
		if err := s.store.CompleteAssignment(ctx, assignment.ID, translatorID, now); err != nil {
			return nil, Effects{}, fmt.Errorf("complete assignment: %w", err)
		}
	}

	s.logger.Info("Customer no-show recorded", slog.String("job_id", job.ID))
	return job, Effects{}, nil
}

// ExpireOverdue times out every pending job whose expiry window has passed
// and tells the customers. Driven by the notifier service ticker.
func (s *Service) ExpireOverdue(ctx context.Context) (int, Effects, error) {
	now := s.sched.Now()
	jobs, err := s.store.ExpiredPending(ctx, now)
	if err != nil {
		return 0, Effects{}, err
	}

	var effects Effects
	expired := 0
	for i := range jobs {
		job := &jobs[i]
		next, ok := domain.Next(job.Status, domain.TriggerExpire)
		if !ok {
			continue
		}
		job.Status = next
		job.UpdatedAt = now
		if err := s.store.UpdateJob(ctx, job); err != nil {
			s.logger.Error("Failed to expire job",
				slog.String("job_id", job.ID),
				slog.Any("error", err),
			)
			continue
		}
		expired++

		language, err := s.users.LanguageName(ctx, job.FromLanguageID)
		if err != nil {
			s.logger.Error("Failed to resolve language for expiry notice",
				slog.String("job_id", job.ID),
				slog.Any("error", err),
			)
			continue
		}
		push := notification.PushIntent(job.CustomerID, job.ID,
			notification.KindJobExpired,
			notification.ExpiredMessage(language, job.Duration, job.Due))
		effects.Intents = append(effects.Intents, s.maybeDelayed(ctx, job.CustomerID, push)...)
	}

	if expired > 0 {
		s.logger.Info("Expired overdue bookings", slog.Int("count", expired))
	}
	return expired, effects, nil
}

// customerContact resolves the email address and name a booking's customer
// notifications go to. A contact email on the job overrides the account.
func (s *Service) customerContact(job *domain.Job, customer *domain.User) (email, name string) {
	email = customer.Email
	if job.ContactEmail != "" {
		email = job.ContactEmail
	}
	return email, customer.Name
}

// maybeDelayed applies the recipient's notification preferences to a push:
// dropped entirely for global opt-outs, shifted to the next business time
// for night opt-outs. Returns zero or one intents.
func (s *Service) maybeDelayed(ctx context.Context, userID string, in notification.Intent) []notification.Intent {
	prefs, err := s.users.NotificationPrefs(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load notification preferences",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		// Fail open: a preference lookup failure must not swallow the push.
		return []notification.Intent{in}
	}
	if !notification.ShouldSend(prefs) {
		return nil
	}
	if notification.ShouldDelay(prefs, s.sched.NightNow()) {
		return []notification.Intent{notification.Delay(in, s.sched.NextBusinessTime(s.sched.Now()))}
	}
	return []notification.Intent{in}
}

// payload builds the normalized event payload for a job.
func (s *Service) payload(ctx context.Context, job *domain.Job) (JobPayload, error) {
	language, err := s.users.LanguageName(ctx, job.FromLanguageID)
	if err != nil {
		return JobPayload{}, err
	}
	customer, err := s.users.User(ctx, job.CustomerID)
	if err != nil {
		return JobPayload{}, err
	}
	return BuildJobPayload(job, language, customer.ConsumerTier), nil
}

// payloadData flattens a payload into email template parameters.
func payloadData(p JobPayload) map[string]string {
	data := map[string]string{
		"language": p.Language,
		"due_date": p.DueDate,
		"due_time": p.DueTime,
		"duration": notification.FormatDuration(p.Duration),
		"town":     p.CustomerTown,
	}
	if p.Immediate {
		data["immediate"] = "yes"
	}
	return data
}
