package session

import "time"

// Timer is a pending scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d, typically on another goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type timeScheduler struct{}

func (timeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
