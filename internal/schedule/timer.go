package schedule

import "time"

// Timer is a cancellable one-shot timer. Stop reports whether the timer was
// stopped before firing.
type Timer interface {
	Stop() bool
}

// TimerFactory schedules fn to run once after d. The default factory is
// time.AfterFunc; tests substitute a manual clock.
type TimerFactory func(d time.Duration, fn func()) Timer

func afterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
