package notification

import "time"

// Prefs are the per-recipient notification preferences consulted before a
// push is sent.
type Prefs struct {
	OptOutAll       bool
	OptOutNight     bool
	OptOutEmergency bool
}

// ShouldSend reports whether the recipient receives pushes at all.
// Globally opted-out recipients are excluded before delay evaluation.
func ShouldSend(p Prefs) bool {
	return !p.OptOutAll
}

// SkipImmediate reports whether the recipient must be skipped for an
// immediate (urgent) booking fan-out.
func SkipImmediate(p Prefs, immediate bool) bool {
	return immediate && p.OptOutEmergency
}

// ShouldDelay reports whether a push must wait for the next business time:
// it is night right now and this recipient opted out of night pushes.
func ShouldDelay(p Prefs, night bool) bool {
	return night && p.OptOutNight
}

// Delay marks an intent as delayed until sendAfter.
func Delay(in Intent, sendAfter time.Time) Intent {
	in.Delayed = true
	in.SendAfter = sendAfter
	return in
}
