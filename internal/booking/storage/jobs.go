// Package storage is the PostgreSQL implementation of the booking engine's
// persistence ports.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/tolkify/booking-be/internal/booking"
	"github.com/tolkify/booking-be/internal/booking/domain"
	"github.com/tolkify/booking-be/shared/postgresql"
)

// Storage implements booking.JobStore on PostgreSQL.
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a Storage over the shared PostgreSQL client.
func NewStorage(pg *postgresql.Client, logger *slog.Logger) *Storage {
	return &Storage{db: pg.GetDB(), logger: logger}
}

const jobColumns = `
	id, customer_id, status, from_language_id, immediate, duration,
	job_type, gender, certified_level, phone_delivery, physical_delivery,
	town, pinned_translator_id, due, created_at, updated_at, will_expire_at,
	end_at, withdraw_at, session_time, contact_email, admin_comments,
	reference, flagged, manually_handled, by_admin
`

const insertJobQuery = `
	INSERT INTO jobs (
		id, customer_id, status, from_language_id, immediate, duration,
		job_type, gender, certified_level, phone_delivery, physical_delivery,
		town, pinned_translator_id, due, created_at, updated_at, will_expire_at,
		end_at, withdraw_at, session_time, contact_email, admin_comments,
		reference, flagged, manually_handled, by_admin
	) VALUES (
		:id, :customer_id, :status, :from_language_id, :immediate, :duration,
		:job_type, :gender, :certified_level, :phone_delivery, :physical_delivery,
		:town, :pinned_translator_id, :due, :created_at, :updated_at, :will_expire_at,
		:end_at, :withdraw_at, :session_time, :contact_email, :admin_comments,
		:reference, :flagged, :manually_handled, :by_admin
	)
`

// FindJob loads a job by id.
func (s *Storage) FindJob(ctx context.Context, id string) (*domain.Job, error) {
	var job domain.Job
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`

	err := s.db.GetContext(ctx, &job, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// CreateJob inserts a new booking row.
func (s *Storage) CreateJob(ctx context.Context, job *domain.Job) error {
	if _, err := s.db.NamedExecContext(ctx, insertJobQuery, job); err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// UpdateJob writes the full job row back.
func (s *Storage) UpdateJob(ctx context.Context, job *domain.Job) error {
	query := `
		UPDATE jobs SET
			status = :status,
			from_language_id = :from_language_id,
			duration = :duration,
			gender = :gender,
			certified_level = :certified_level,
			phone_delivery = :phone_delivery,
			physical_delivery = :physical_delivery,
			town = :town,
			pinned_translator_id = :pinned_translator_id,
			due = :due,
			created_at = :created_at,
			updated_at = :updated_at,
			will_expire_at = :will_expire_at,
			end_at = :end_at,
			withdraw_at = :withdraw_at,
			session_time = :session_time,
			contact_email = :contact_email,
			admin_comments = :admin_comments,
			reference = :reference,
			flagged = :flagged,
			manually_handled = :manually_handled,
			by_admin = :by_admin
		WHERE id = :id
	`

	result, err := s.db.NamedExecContext(ctx, query, job)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

// CloneJob copies a booking into a fresh pending row, used when reopening a
// timed-out booking. The original row is left untouched.
func (s *Storage) CloneJob(ctx context.Context, src *domain.Job, newID string, now, expireAt time.Time, adminComments string) error {
	clone := *src
	clone.ID = newID
	clone.Status = domain.StatusPending
	clone.CreatedAt = now
	clone.UpdatedAt = now
	clone.WillExpireAt = expireAt
	clone.AdminComments = adminComments
	clone.EndAt = nil
	clone.WithdrawAt = nil
	clone.SessionTime = ""

	if _, err := s.db.NamedExecContext(ctx, insertJobQuery, &clone); err != nil {
		return fmt.Errorf("failed to clone job: %w", err)
	}
	return nil
}

// AcceptJob flips a pending job to assigned and inserts the assignment in
// one transaction. The conditional UPDATE is the guard: when a concurrent
// accept got there first the job is no longer pending, zero rows match and
// the loser gets domain.ErrAlreadyAccepted.
func (s *Storage) AcceptJob(ctx context.Context, jobID, translatorID, assignmentID string, now time.Time) (*domain.TranslatorAssignment, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE jobs
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`, domain.StatusAssigned, now, jobID, domain.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to claim job: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		s.logger.Warn("Failed to claim job - no longer pending",
			slog.String("job_id", jobID),
			slog.String("translator_id", translatorID),
		)
		return nil, domain.ErrAlreadyAccepted
	}

	assignment := &domain.TranslatorAssignment{
		ID:           assignmentID,
		JobID:        jobID,
		TranslatorID: translatorID,
		CreatedAt:    now,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO translator_assignments (id, job_id, translator_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, assignment.ID, assignment.JobID, assignment.TranslatorID, assignment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Job claimed successfully",
		slog.String("job_id", jobID),
		slog.String("translator_id", translatorID),
	)
	return assignment, nil
}

const assignmentColumns = `
	id, job_id, translator_id, created_at, cancelled_at, completed_at, completed_by
`

// ActiveAssignment returns the uncancelled assignment of a job, or nil.
func (s *Storage) ActiveAssignment(ctx context.Context, jobID string) (*domain.TranslatorAssignment, error) {
	var a domain.TranslatorAssignment
	query := `
		SELECT ` + assignmentColumns + `
		FROM translator_assignments
		WHERE job_id = $1 AND cancelled_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1
	`

	err := s.db.GetContext(ctx, &a, query, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active assignment: %w", err)
	}
	return &a, nil
}

// LatestCompletedAssignment returns the most recently completed assignment
// of a job, or nil.
func (s *Storage) LatestCompletedAssignment(ctx context.Context, jobID string) (*domain.TranslatorAssignment, error) {
	var a domain.TranslatorAssignment
	query := `
		SELECT ` + assignmentColumns + `
		FROM translator_assignments
		WHERE job_id = $1 AND completed_at IS NOT NULL
		ORDER BY completed_at DESC
		LIMIT 1
	`

	err := s.db.GetContext(ctx, &a, query, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get completed assignment: %w", err)
	}
	return &a, nil
}

// CreateAssignment inserts an assignment row outside the accept path, used
// by admin reassignment.
func (s *Storage) CreateAssignment(ctx context.Context, a *domain.TranslatorAssignment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO translator_assignments (id, job_id, translator_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, a.ID, a.JobID, a.TranslatorID, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	return nil
}

// CancelAssignment soft-cancels an assignment; the row stays for history.
func (s *Storage) CancelAssignment(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE translator_assignments SET cancelled_at = $1 WHERE id = $2 AND cancelled_at IS NULL
	`, at, id)
	if err != nil {
		return fmt.Errorf("failed to cancel assignment: %w", err)
	}
	return nil
}

// CompleteAssignment marks an assignment done and records who closed it.
func (s *Storage) CompleteAssignment(ctx context.Context, id, completedBy string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE translator_assignments SET completed_at = $1, completed_by = $2 WHERE id = $3
	`, at, completedBy, id)
	if err != nil {
		return fmt.Errorf("failed to complete assignment: %w", err)
	}
	return nil
}

// PendingMatches returns the pending jobs matching the translator's type,
// languages, gender and certifications, excluding customers who blacklisted
// the translator. Town and pinning checks are layered on by the engine.
func (s *Storage) PendingMatches(ctx context.Context, f booking.MatchFilter) ([]domain.Job, error) {
	levels := make([]string, len(f.Levels))
	for i, l := range f.Levels {
		levels[i] = string(l)
	}

	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE status = $1
		  AND job_type = $2
		  AND from_language_id = ANY($3)
		  AND (gender = '' OR gender = $4)
		  AND certified_level = ANY($5)
		  AND NOT EXISTS (
			SELECT 1 FROM users_blacklist b
			WHERE b.customer_id = jobs.customer_id AND b.translator_id = $6
		  )
		ORDER BY due ASC
	`

	var jobs []domain.Job
	err := s.db.SelectContext(ctx, &jobs, query,
		domain.StatusPending,
		f.JobType,
		pq.Array(f.Languages),
		f.Gender,
		pq.Array(levels),
		f.TranslatorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending matches: %w", err)
	}
	return jobs, nil
}

// TranslatorBusyAt reports whether the translator holds an active
// assignment on a booking overlapping the given start time and duration.
func (s *Storage) TranslatorBusyAt(ctx context.Context, translatorID string, due time.Time, duration int) (bool, error) {
	var busy bool
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM translator_assignments a
			JOIN jobs j ON j.id = a.job_id
			WHERE a.translator_id = $1
			  AND a.cancelled_at IS NULL
			  AND j.status IN ($2, $3)
			  AND j.due < $4::timestamptz + make_interval(mins => $5)
			  AND j.due + make_interval(mins => j.duration) > $4
		)
	`

	err := s.db.GetContext(ctx, &busy, query,
		translatorID, domain.StatusAssigned, domain.StatusStarted, due, duration)
	if err != nil {
		return false, fmt.Errorf("failed to check translator schedule: %w", err)
	}
	return busy, nil
}

// TownMatch reports whether the translator can take physical-only jobs of
// this customer: either an explicit registration for the customer's town,
// or a prior physical booking between the two.
func (s *Storage) TownMatch(ctx context.Context, customerID, translatorID string) (bool, error) {
	var match bool
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM translator_towns t
			JOIN users cu ON cu.id = $1
			WHERE t.translator_id = $2 AND t.town = cu.city
		) OR EXISTS (
			SELECT 1
			FROM jobs j
			JOIN translator_assignments a ON a.job_id = j.id
			WHERE j.customer_id = $1
			  AND a.translator_id = $2
			  AND j.physical_delivery
		)
	`

	err := s.db.GetContext(ctx, &match, query, customerID, translatorID)
	if err != nil {
		return false, fmt.Errorf("failed to check town match: %w", err)
	}
	return match, nil
}

// ExpiredPending returns the pending jobs whose expiry window has passed,
// oldest first.
func (s *Storage) ExpiredPending(ctx context.Context, now time.Time) ([]domain.Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE status = $1 AND will_expire_at < $2
		ORDER BY will_expire_at ASC
	`

	var jobs []domain.Job
	err := s.db.SelectContext(ctx, &jobs, query, domain.StatusPending, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired jobs: %w", err)
	}
	return jobs, nil
}

// OverrunJobs returns completed jobs whose recorded session ran to at least
// twice the booked duration, for the admin alert surface.
func (s *Storage) OverrunJobs(ctx context.Context) ([]domain.Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE status = $1
		  AND session_time <> ''
		  AND EXTRACT(EPOCH FROM session_time::interval) / 60 >= duration * 2
		ORDER BY due DESC
	`

	var jobs []domain.Job
	err := s.db.SelectContext(ctx, &jobs, query, domain.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to list overrun jobs: %w", err)
	}
	return jobs, nil
}
