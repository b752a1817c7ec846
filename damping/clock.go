package damping

import "time"

// Clock is injected wherever the controller needs "now" or a timer, so
// tests can drive expiration and re-arm logic deterministically instead of
// sleeping real wall-clock time (spec §9: "inject a clock/timer capability
// so tests can drive time deterministically").
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is the single-shot handle returned by Clock.AfterFunc. It mirrors
// time.Timer's Stop semantics: Stop reports whether the call stopped the
// timer before it fired.
type Timer interface {
	Stop() bool
}

type realClock struct{}

// RealClock is the production Clock, backed by the standard library.
func RealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
