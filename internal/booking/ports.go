package booking

import (
	"context"
	"time"

	"github.com/tolkify/booking-be/internal/booking/domain"
	"github.com/tolkify/booking-be/internal/notification"
)

// MatchFilter narrows the pending-job scan to jobs a translator could take.
type MatchFilter struct {
	TranslatorID string
	JobType      domain.JobType
	Languages    []string
	Gender       domain.Gender
	Levels       []domain.CertifiedLevel
}

// JobStore is the persistence port of the lifecycle engine. Implementations
// must make AcceptJob atomic: the status flip from pending and the
// assignment insert happen in one transaction, so concurrent accepts of the
// same job yield exactly one winner.
type JobStore interface {
	FindJob(ctx context.Context, id string) (*domain.Job, error)
	CreateJob(ctx context.Context, job *domain.Job) error
	UpdateJob(ctx context.Context, job *domain.Job) error

	// CloneJob copies a job into a fresh pending row, used when reopening
	// a timed-out booking.
	CloneJob(ctx context.Context, src *domain.Job, newID string, now, expireAt time.Time, adminComments string) error

	// AcceptJob flips a pending job to assigned and inserts the assignment
	// in one transaction. Returns domain.ErrAlreadyAccepted when the job is
	// no longer pending by the time the update runs.
	AcceptJob(ctx context.Context, jobID, translatorID, assignmentID string, now time.Time) (*domain.TranslatorAssignment, error)

	// ActiveAssignment returns the single uncancelled assignment of a job,
	// or nil when the job has none.
	ActiveAssignment(ctx context.Context, jobID string) (*domain.TranslatorAssignment, error)
	// LatestCompletedAssignment returns the most recent completed
	// assignment, used by admin edits on finished jobs.
	LatestCompletedAssignment(ctx context.Context, jobID string) (*domain.TranslatorAssignment, error)

	CreateAssignment(ctx context.Context, a *domain.TranslatorAssignment) error
	CancelAssignment(ctx context.Context, id string, at time.Time) error
	CompleteAssignment(ctx context.Context, id, completedBy string, at time.Time) error

	// PendingMatches returns pending jobs matching the filter, excluding
	// jobs whose owner blacklisted the translator, ordered by due ascending.
	PendingMatches(ctx context.Context, f MatchFilter) ([]domain.Job, error)

	// TranslatorBusyAt reports whether the translator holds an active
	// assignment overlapping the given start time and duration.
	TranslatorBusyAt(ctx context.Context, translatorID string, due time.Time, duration int) (bool, error)

	// TownMatch reports whether the translator can take physical-only jobs
	// of this customer: a prior job in the same town, or an explicit town
	// registration.
	TownMatch(ctx context.Context, customerID, translatorID string) (bool, error)

	// ExpiredPending returns pending jobs whose expiry window has passed.
	ExpiredPending(ctx context.Context, now time.Time) ([]domain.Job, error)

	// OverrunJobs returns jobs whose recorded session time reached twice
	// the booked duration, for the admin alert surface.
	OverrunJobs(ctx context.Context) ([]domain.Job, error)
}

// UserDirectory resolves accounts referenced by bookings. Implemented by
// the storage layer; the engine never mutates users.
type UserDirectory interface {
	User(ctx context.Context, id string) (*domain.User, error)
	UserByEmail(ctx context.Context, email string) (*domain.User, error)
	TranslatorProfile(ctx context.Context, id string) (*domain.TranslatorProfile, error)
	NotificationPrefs(ctx context.Context, userID string) (notification.Prefs, error)
	Blacklisted(ctx context.Context, customerID, translatorID string) (bool, error)
	LanguageName(ctx context.Context, languageID string) (string, error)

	// EachTranslator streams enabled translator profiles, cursor-style.
	// Returning an error from fn stops the scan.
	EachTranslator(ctx context.Context, fn func(p *domain.TranslatorProfile) error) error
}
