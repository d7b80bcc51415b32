package domain

import "time"

// JobType classifies who pays for a booking. It is derived from the
// consumer tier of the customer who created it.
type JobType string

const (
	JobTypePaid   JobType = "paid"
	JobTypeRWS    JobType = "rws"
	JobTypeUnpaid JobType = "unpaid"
)

// Gender is an optional constraint a customer can place on a booking.
type Gender string

const (
	GenderAny    Gender = ""
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// CertifiedLevel is the credential tier a booking requires of a translator.
// The combined levels (both, n_law, n_health) come from customers ticking
// several audiences on the booking form.
type CertifiedLevel string

const (
	CertifiedNone    CertifiedLevel = ""
	CertifiedNormal  CertifiedLevel = "normal"
	CertifiedYes     CertifiedLevel = "certified"
	CertifiedLaw     CertifiedLevel = "law"
	CertifiedHealth  CertifiedLevel = "health"
	CertifiedBoth    CertifiedLevel = "both"
	CertifiedNLaw    CertifiedLevel = "n_law"
	CertifiedNHealth CertifiedLevel = "n_health"
)

// Job is a single interpreter booking with a lifecycle status.
// Only the booking lifecycle service mutates it.
type Job struct {
	ID         string    `db:"id"`
	CustomerID string    `db:"customer_id"`
	Status     JobStatus `db:"status"`

	FromLanguageID string         `db:"from_language_id"`
	Immediate      bool           `db:"immediate"`
	Duration       int            `db:"duration"` // minutes
	JobType        JobType        `db:"job_type"`
	Gender         Gender         `db:"gender"`
	CertifiedLevel CertifiedLevel `db:"certified_level"`

	// Delivery channels. At least one must be set on a scheduled booking;
	// immediate bookings are always phone.
	PhoneDelivery    bool   `db:"phone_delivery"`
	PhysicalDelivery bool   `db:"physical_delivery"`
	Town             string `db:"town"`

	// PinnedTranslatorID restricts the job to a single translator when set.
	PinnedTranslatorID string `db:"pinned_translator_id"`

	Due          time.Time  `db:"due"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	WillExpireAt time.Time  `db:"will_expire_at"`
	EndAt        *time.Time `db:"end_at"`
	WithdrawAt   *time.Time `db:"withdraw_at"`
	SessionTime  string     `db:"session_time"` // hh:mm:ss, set on completion

	// ContactEmail overrides the customer account email when set.
	ContactEmail string `db:"contact_email"`

	// Admin metadata, preserved across every update.
	AdminComments   string `db:"admin_comments"`
	Reference       string `db:"reference"`
	Flagged         bool   `db:"flagged"`
	ManuallyHandled bool   `db:"manually_handled"`
	ByAdmin         bool   `db:"by_admin"`
}

// PhysicalOnly reports whether the job can only be delivered on site,
// which restricts matching to translators in the customer's town.
func (j *Job) PhysicalOnly() bool {
	return j.PhysicalDelivery && !j.PhoneDelivery
}

// TranslatorAssignment links one translator to one job over time.
// Reassignment cancels the old row and creates a new one; rows are never
// mutated after cancellation, so the full history stays queryable.
type TranslatorAssignment struct {
	ID           string     `db:"id"`
	JobID        string     `db:"job_id"`
	TranslatorID string     `db:"translator_id"`
	CreatedAt    time.Time  `db:"created_at"`
	CancelledAt  *time.Time `db:"cancelled_at"`
	CompletedAt  *time.Time `db:"completed_at"`
	CompletedBy  string     `db:"completed_by"`
}

// Active reports whether this assignment still binds the translator to the job.
func (a *TranslatorAssignment) Active() bool {
	return a != nil && a.CancelledAt == nil
}
