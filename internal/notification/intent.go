// Package notification owns the decision half of outbound messaging:
// which template, which recipients, which channel, and whether delivery is
// delayed to business hours. Actual transport (mail server, push provider,
// SMS gateway) lives behind the outbox queue and is out of scope here.
package notification

import "time"

// Channel is the delivery channel of an intent.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPush  Channel = "push"
	ChannelSMS   Channel = "sms"
)

// Kind tags a push intent so clients can pick sounds and screens.
const (
	KindSuitableJob        = "suitable_job"
	KindJobAccepted        = "job_accepted"
	KindJobCancelled       = "job_cancelled"
	KindJobExpired         = "job_expired"
	KindSessionStartRemind = "session_start_remind"
)

// Email template identifiers understood by the transport layer.
const (
	TemplateJobCreated                = "job-created"
	TemplateJobAccepted               = "job-accepted"
	TemplateSessionEnded              = "session-ended"
	TemplateStatusChangedCustomer     = "status-changed-customer"
	TemplateJobReopenedCustomer       = "job-reopened-customer"
	TemplateJobCancelTranslator       = "job-cancel-translator"
	TemplateChangedTranslatorCustomer = "changed-translator-customer"
	TemplateChangedTranslatorOld      = "changed-translator-old"
	TemplateChangedTranslatorNew      = "changed-translator-new"
	TemplateChangedDate               = "changed-date"
	TemplateChangedLang               = "changed-lang"
)

// Intent is one outbox record: a notification the lifecycle decided to
// send, executed by the dispatcher after the state change committed.
type Intent struct {
	Channel Channel `json:"channel"`

	// Recipient. UserID is always set; Email/Phone/Name when known.
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	Phone  string `json:"phone,omitempty"`

	JobID    string `json:"job_id"`
	Kind     string `json:"kind,omitempty"`     // push kinds above
	Template string `json:"template,omitempty"` // email templates above
	Subject  string `json:"subject,omitempty"`
	Message  string `json:"message,omitempty"`

	// Data carries template parameters the transport layer interpolates.
	Data map[string]string `json:"data,omitempty"`

	// Delayed pushes are released at SendAfter instead of immediately.
	Delayed   bool      `json:"delayed,omitempty"`
	SendAfter time.Time `json:"send_after,omitzero"`
}

// EmailIntent builds an email outbox record.
func EmailIntent(userID, email, name, jobID, subject, template string, data map[string]string) Intent {
	return Intent{
		Channel:  ChannelEmail,
		UserID:   userID,
		Email:    email,
		Name:     name,
		JobID:    jobID,
		Subject:  subject,
		Template: template,
		Data:     data,
	}
}

// PushIntent builds a push outbox record.
func PushIntent(userID, jobID, kind, message string) Intent {
	return Intent{
		Channel: ChannelPush,
		UserID:  userID,
		JobID:   jobID,
		Kind:    kind,
		Message: message,
	}
}

// SMSIntent builds an SMS outbox record.
func SMSIntent(userID, phone, jobID, message string) Intent {
	return Intent{
		Channel: ChannelSMS,
		UserID:  userID,
		Phone:   phone,
		JobID:   jobID,
		Message: message,
	}
}
