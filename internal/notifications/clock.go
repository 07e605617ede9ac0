package notifications

import "time"

// Clock abstracts wall-clock time and timer creation so the registry can be
// driven by a test clock instead of real sleeps.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) TimerHandle
}

// TimerHandle is a pending timer. Stop reports whether the timer was stopped
// before firing.
type TimerHandle interface {
	Stop() bool
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, fn func()) TimerHandle {
	return time.AfterFunc(d, fn)
}

// SystemClock returns a Clock backed by the time package.
func SystemClock() Clock { return realClock{} }
