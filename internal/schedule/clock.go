// Package schedule owns all time-derived booking rules: the expiry window
// of a pending booking and the business-hours decisions behind delayed
// push notifications.
package schedule

import "time"

// Clock abstracts "now" so lifecycle rules stay testable.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Hours holds the configurable business-hours boundaries (24h clock).
type Hours struct {
	NightStart    int // hour after which pushes may be delayed
	NightEnd      int // hour before which pushes may be delayed
	BusinessStart int // hour delayed pushes are released at
}

// DefaultHours matches the operational defaults shipped in config.
var DefaultHours = Hours{NightStart: 22, NightEnd: 6, BusinessStart: 9}

// Schedule combines a clock with the business-hours configuration.
type Schedule struct {
	clock Clock
	hours Hours
}

// New builds a Schedule. A nil clock falls back to the system clock.
func New(clock Clock, hours Hours) *Schedule {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Schedule{clock: clock, hours: hours}
}

// Now returns the schedule's current time.
func (s *Schedule) Now() time.Time { return s.clock.Now() }

// defaultExpiryOffset is applied when expiry inputs are degenerate;
// callers depend on always receiving a usable timestamp.
const defaultExpiryOffset = 90 * time.Minute

// WillExpireAt computes when a pending booking stops being offered.
// With h the hours between creation and the target start time:
//
//	h <= 90          -> due
//	h <= 30 days     -> createdAt + 90 minutes
//	otherwise        -> due - 48 hours
//
// The function is total: zero inputs yield now + 90 minutes.
func (s *Schedule) WillExpireAt(due, createdAt time.Time) time.Time {
	if due.IsZero() || createdAt.IsZero() {
		return s.clock.Now().Add(defaultExpiryOffset)
	}

	h := due.Sub(createdAt).Hours()
	if h < 0 {
		h = -h
	}

	switch {
	case h <= 90:
		return due
	case h <= 24*30:
		return createdAt.Add(90 * time.Minute)
	default:
		return due.Add(-48 * time.Hour)
	}
}

// IsNightTime reports whether t falls outside business hours.
func (s *Schedule) IsNightTime(t time.Time) bool {
	h := t.Hour()
	if s.hours.NightStart > s.hours.NightEnd {
		// Window wraps midnight, e.g. 22..06.
		return h >= s.hours.NightStart || h < s.hours.NightEnd
	}
	return h >= s.hours.NightStart && h < s.hours.NightEnd
}

// NightNow reports whether it is currently night time.
func (s *Schedule) NightNow() bool { return s.IsNightTime(s.clock.Now()) }

// NextBusinessTime returns the next moment a delayed push may be released:
// the coming BusinessStart hour, today if still ahead, otherwise tomorrow.
func (s *Schedule) NextBusinessTime(t time.Time) time.Time {
	next := time.Date(t.Year(), t.Month(), t.Day(), s.hours.BusinessStart, 0, 0, 0, t.Location())
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
