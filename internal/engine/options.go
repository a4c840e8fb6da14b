package engine

import (
	"time"

	"golang.org/x/exp/rand"
)

type Option func(e *Engine)

// WithRand - source of randomness for boards and robot picks.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

func WithScheduler(scheduler Scheduler) Option {
	return func(e *Engine) {
		e.scheduler = scheduler
	}
}

// WithObserver - adds an observer, may be given more than once.
func WithObserver(observer Observer) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, observer)
	}
}

// WithRobotDelay - pause before a robot-controlled side commits its move.
func WithRobotDelay(delay time.Duration) Option {
	return func(e *Engine) {
		e.robotDelay = delay
	}
}

// WithManualRobotDelay - pause used by RequestRobotMove.
func WithManualRobotDelay(delay time.Duration) Option {
	return func(e *Engine) {
		e.manualRobotDelay = delay
	}
}
