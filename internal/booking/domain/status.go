package domain

// JobStatus is the lifecycle state of a booking.
type JobStatus string

const (
	StatusPending               JobStatus = "pending"
	StatusAssigned              JobStatus = "assigned"
	StatusStarted               JobStatus = "started"
	StatusCompleted             JobStatus = "completed"
	StatusWithdrawBefore24      JobStatus = "withdrawbefore24"
	StatusWithdrawAfter24       JobStatus = "withdrawafter24"
	StatusTimedOut              JobStatus = "timedout"
	StatusNotCarriedOutCustomer JobStatus = "not_carried_out_customer"
)

// Valid reports whether s is a known lifecycle state.
func (s JobStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAssigned, StatusStarted, StatusCompleted,
		StatusWithdrawBefore24, StatusWithdrawAfter24, StatusTimedOut,
		StatusNotCarriedOutCustomer:
		return true
	}
	return false
}

// Terminal reports whether no further transition may leave s.
// A timed-out job is not terminal: it can be reopened into a new pending job.
func (s JobStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusWithdrawBefore24, StatusWithdrawAfter24,
		StatusNotCarriedOutCustomer:
		return true
	}
	return false
}

// Trigger names an operation that moves a job between states.
type Trigger string

const (
	TriggerAccept           Trigger = "accept"
	TriggerStart            Trigger = "start"
	TriggerComplete         Trigger = "complete"
	TriggerCustomerNoShow   Trigger = "customer_no_show"
	TriggerCustomerCancel   Trigger = "customer_cancel"
	TriggerTranslatorCancel Trigger = "translator_cancel"
	TriggerExpire           Trigger = "expire"
	TriggerReopen           Trigger = "reopen"
)

// active is the set of states a customer-side trigger can act on.
func (s JobStatus) active() bool {
	return s == StatusPending || s == StatusAssigned || s == StatusStarted
}

// Next returns the state a trigger moves a job into. The second return is
// false when the transition is not defined for the current state; callers
// treat that as a rejected operation, never as a fallthrough.
//
// TriggerCustomerCancel resolves to withdrawbefore24 here; the lifecycle
// service downgrades it to withdrawafter24 when the booking starts within
// the cancellation window.
func Next(from JobStatus, trig Trigger) (JobStatus, bool) {
	switch trig {
	case TriggerAccept:
		if from == StatusPending {
			return StatusAssigned, true
		}
	case TriggerStart:
		if from == StatusAssigned {
			return StatusStarted, true
		}
	case TriggerComplete:
		if from == StatusStarted {
			return StatusCompleted, true
		}
	case TriggerCustomerNoShow:
		if from.active() {
			return StatusNotCarriedOutCustomer, true
		}
	case TriggerCustomerCancel:
		if from.active() {
			return StatusWithdrawBefore24, true
		}
	case TriggerTranslatorCancel:
		if from == StatusAssigned || from == StatusStarted {
			return StatusPending, true
		}
	case TriggerExpire:
		if from == StatusPending {
			return StatusTimedOut, true
		}
	case TriggerReopen:
		if from == StatusTimedOut {
			return StatusPending, true
		}
	}
	return from, false
}

// AdminEditAllowed reports whether an admin status edit from one state to
// another is part of the transition table. Combinations outside the table
// are treated as no-ops by the lifecycle service (counted, not errored).
func AdminEditAllowed(from, to JobStatus) bool {
	switch from {
	case StatusTimedOut:
		return to == StatusPending || to == StatusAssigned
	case StatusCompleted:
		return to == StatusTimedOut
	case StatusStarted:
		return to == StatusCompleted
	case StatusPending:
		// Assignment with a translator change, or any cancellation-style
		// state set by the admin form.
		return to == StatusAssigned || to == StatusTimedOut ||
			to == StatusWithdrawBefore24 || to == StatusWithdrawAfter24 ||
			to == StatusNotCarriedOutCustomer
	case StatusAssigned:
		return to == StatusWithdrawBefore24 || to == StatusWithdrawAfter24 ||
			to == StatusTimedOut
	case StatusWithdrawAfter24:
		return to == StatusTimedOut
	}
	return false
}
