package engine

import "time"

// Timer is a scheduled call that can still be called off.
type Timer interface {
	Stop() bool
}

// Scheduler runs fn once after delay on its own goroutine.
type Scheduler interface {
	AfterFunc(delay time.Duration, fn func()) Timer
}

type clockScheduler struct{}

func (clockScheduler) AfterFunc(delay time.Duration, fn func()) Timer {
	return time.AfterFunc(delay, fn)
}
