package booking

import (
	"time"

	"github.com/tolkify/booking-be/internal/booking/domain"
	"github.com/tolkify/booking-be/internal/notification"
)

// Job event types published to the broker for the notifier service.
const (
	EventJobCreated   = "job.created"
	EventJobReopened  = "job.reopened"
	EventJobCancelled = "job.cancelled"
	EventSessionEnded = "session.ended"
	EventResendPush   = "job.resend_push"
	EventResendSMS    = "job.resend_sms"
)

// JobPayload is the normalized snapshot of a job carried by events and
// notification templates.
type JobPayload struct {
	JobID            string    `json:"job_id"`
	FromLanguageID   string    `json:"from_language_id"`
	Language         string    `json:"language"`
	Immediate        bool      `json:"immediate"`
	Duration         int       `json:"duration"`
	Status           string    `json:"status"`
	JobType          string    `json:"job_type"`
	Gender           string    `json:"gender,omitempty"`
	CertifiedLevel   string    `json:"certified_level,omitempty"`
	Due              time.Time `json:"due"`
	DueDate          string    `json:"due_date"`
	DueTime          string    `json:"due_time"`
	PhoneDelivery    bool      `json:"phone_delivery"`
	PhysicalDelivery bool      `json:"physical_delivery"`
	CustomerTown     string    `json:"customer_town"`
	CustomerTier     string    `json:"customer_tier"`
	Audience         []string  `json:"audience,omitempty"`
}

// JobEvent announces a lifecycle change to the notifier service.
type JobEvent struct {
	Type  string `json:"type"`
	JobID string `json:"job_id"`
	// ExcludeTranslator is skipped during fan-out, e.g. the translator who
	// just cancelled the job.
	ExcludeTranslator string     `json:"exclude_translator,omitempty"`
	SessionWith       string     `json:"session_with,omitempty"`
	Payload           JobPayload `json:"payload"`
}

// BuildJobPayload normalizes a job for events and templates.
func BuildJobPayload(job *domain.Job, language string, tier domain.ConsumerTier) JobPayload {
	return JobPayload{
		JobID:            job.ID,
		FromLanguageID:   job.FromLanguageID,
		Language:         language,
		Immediate:        job.Immediate,
		Duration:         job.Duration,
		Status:           string(job.Status),
		JobType:          string(job.JobType),
		Gender:           string(job.Gender),
		CertifiedLevel:   string(job.CertifiedLevel),
		Due:              job.Due,
		DueDate:          job.Due.Format("2006-01-02"),
		DueTime:          job.Due.Format("15:04"),
		PhoneDelivery:    job.PhoneDelivery,
		PhysicalDelivery: job.PhysicalDelivery,
		CustomerTown:     job.Town,
		CustomerTier:     string(tier),
		Audience:         audienceLabels(job),
	}
}

// audienceLabels renders the gender and certification constraints the way
// customer-facing templates list them.
func audienceLabels(job *domain.Job) []string {
	var labels []string

	switch job.Gender {
	case domain.GenderMale:
		labels = append(labels, "Male")
	case domain.GenderFemale:
		labels = append(labels, "Female")
	}

	switch job.CertifiedLevel {
	case domain.CertifiedBoth:
		labels = append(labels, "Approved interpreter", "Certified interpreter")
	case domain.CertifiedYes:
		labels = append(labels, "Certified interpreter")
	case domain.CertifiedLaw, domain.CertifiedNLaw:
		labels = append(labels, "Certified interpreter in law")
	case domain.CertifiedHealth, domain.CertifiedNHealth:
		labels = append(labels, "Certified interpreter in health care")
	case domain.CertifiedNormal:
		labels = append(labels, "Approved interpreter")
	}

	return labels
}

// Effects bundles the side effects a lifecycle operation produced: outbox
// intents for the dispatcher and events for the broker. Both are executed
// by the caller strictly after the state change committed.
type Effects struct {
	Intents []notification.Intent
	Events  []JobEvent
}
