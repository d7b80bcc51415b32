package notification

import (
	"fmt"
	"time"
)

const dueLayout = "2006-01-02 15:04"

// FormatDuration renders booked minutes the way templates expect.
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dmin", minutes)
	}
	if minutes == 60 {
		return "1h"
	}
	return fmt.Sprintf("%02dh %02dmin", minutes/60, minutes%60)
}

// FormatSessionTime renders an hh:mm:ss session time as "H h M min".
func FormatSessionTime(session string) string {
	var h, m, s int
	if _, err := fmt.Sscanf(session, "%d:%d:%d", &h, &m, &s); err != nil {
		return session
	}
	return fmt.Sprintf("%d h %d min", h, m)
}

// NewBookingMessage is the push body offering a scheduled job to a translator.
func NewBookingMessage(language string, duration int, due time.Time) string {
	return fmt.Sprintf("New booking for a %s interpreter, %dmin, %s",
		language, duration, due.Format(dueLayout))
}

// UrgentBookingMessage is the push body offering an immediate job.
func UrgentBookingMessage(language string, duration int) string {
	return fmt.Sprintf("New urgent booking for a %s interpreter, %dmin", language, duration)
}

// AcceptedMessage tells the customer a translator took the booking.
func AcceptedMessage(language string, duration int, due time.Time) string {
	return fmt.Sprintf("Your booking for a %s interpreter, %dmin, %s has been accepted. Open the app for translator details.",
		language, duration, due.Format(dueLayout))
}

// AcceptConfirmation is the translator-facing confirmation text.
func AcceptConfirmation(language string, duration int, due time.Time) string {
	return fmt.Sprintf("You have accepted and been given the booking for a %s interpreter, %dmin, %s",
		language, duration, due.Format(dueLayout))
}

// AcceptLostMessage explains a lost acceptance race to the translator.
func AcceptLostMessage(language string, duration int, due time.Time) string {
	return fmt.Sprintf("The %s interpretation, %dmin, %s has already been accepted by another translator. You have not been given this booking.",
		language, duration, due.Format(dueLayout))
}

// CustomerCancelledMessage tells the translator the customer withdrew.
func CustomerCancelledMessage(language string, duration int, due time.Time) string {
	return fmt.Sprintf("The customer has cancelled the booking for a %s interpreter, %dmin, %s. Check your bookings for details.",
		language, duration, due.Format(dueLayout))
}

// TranslatorCancelledMessage tells the customer their translator withdrew.
func TranslatorCancelledMessage(language string, duration int, due time.Time) string {
	return fmt.Sprintf("Your %s interpreter, %dmin, %s, has cancelled. We are now looking for a replacement.",
		language, duration, due.Format(dueLayout))
}

// ExpiredMessage tells the customer nobody accepted in time.
func ExpiredMessage(language string, duration int, due time.Time) string {
	return fmt.Sprintf("Unfortunately no interpreter accepted your booking (%s, %dmin, %s). Please try booking a new time.",
		language, duration, due.Format(dueLayout))
}

// SessionReminderMessage reminds a participant of an upcoming session.
// Physical sessions name the town, phone sessions do not.
func SessionReminderMessage(physical bool, language, town string, due time.Time, duration int) string {
	if physical {
		return fmt.Sprintf("Reminder: you have a %s interpretation (on site in %s) at %s on %s, booked for %d min. Please remember to leave feedback afterwards.",
			language, town, due.Format("15:04"), due.Format("2006-01-02"), duration)
	}
	return fmt.Sprintf("Reminder: you have a %s interpretation (by phone) at %s on %s, booked for %d min. Please remember to leave feedback afterwards.",
		language, due.Format("15:04"), due.Format("2006-01-02"), duration)
}

// Subjects for the email templates.

func BookingReceivedSubject(jobID string) string {
	return fmt.Sprintf("We have received your interpreter booking #%s", jobID)
}

func AcceptedSubject(jobID string) string {
	return fmt.Sprintf("Confirmation - an interpreter has accepted your booking #%s", jobID)
}

func SessionEndedSubject(jobID string) string {
	return fmt.Sprintf("Summary of the completed interpretation for booking #%s", jobID)
}

func CancellationSubject(jobID string) string {
	return fmt.Sprintf("Cancellation of booking #%s", jobID)
}

func ReopenedSubject(language, jobID string) string {
	return fmt.Sprintf("We have reopened your booking of a %s interpreter, booking #%s", language, jobID)
}

func ChangedTranslatorSubject(jobID string) string {
	return fmt.Sprintf("Notice of interpreter assignment for booking #%s", jobID)
}

func ChangedBookingSubject(jobID string) string {
	return fmt.Sprintf("Notice of change to interpreter booking #%s", jobID)
}

// SMSJob carries the job fields the SMS templates interpolate.
type SMSJob struct {
	JobID            string
	Due              time.Time
	Duration         int
	Town             string
	PhoneDelivery    bool
	PhysicalDelivery bool
}

// SMSBody picks the SMS template for a job's delivery channels. Phone takes
// precedence when both channels are enabled. The second return is false
// when no channel is set and no SMS should be sent.
func SMSBody(job SMSJob) (string, bool) {
	date := job.Due.Format("02.01.2006")
	clock := job.Due.Format("15:04")
	duration := FormatDuration(job.Duration)

	switch {
	case job.PhoneDelivery:
		return fmt.Sprintf("New phone interpretation %s %s, %s. Booking #%s. Open the app to accept.",
			date, clock, duration, job.JobID), true
	case job.PhysicalDelivery:
		return fmt.Sprintf("New on-site interpretation in %s, %s %s, %s. Booking #%s. Open the app to accept.",
			job.Town, date, clock, duration, job.JobID), true
	default:
		return "", false
	}
}
