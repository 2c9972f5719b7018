package scheduler

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Scheduler drives a task in the background. Both variants share the same
// start/stop contract so deployments can disable periodic execution by
// configuration alone.
type Scheduler interface {
	Start()
	Stop()
}

// New selects a scheduler by mode: "interval" runs the task periodically,
// anything else disables periodic execution.
func New(mode string, task func(), interval time.Duration) Scheduler {
	if mode == "interval" {
		return NewInterval(task, interval)
	}
	return &Noop{}
}

type state int

const (
	idle state = iota
	running
	stopping
)

// DefaultGrace bounds how long Stop waits for an in-flight cycle.
const DefaultGrace = 5 * time.Second

// Interval runs the task immediately on Start and then once per interval
// until stopped.
type Interval struct {
	task     func()
	interval time.Duration
	grace    time.Duration

	mu   sync.Mutex
	st   state
	stop chan struct{}
	done chan struct{}
}

func NewInterval(task func(), interval time.Duration) *Interval {
	return &Interval{
		task:     task,
		interval: interval,
		grace:    DefaultGrace,
	}
}

func (s *Interval) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st != idle {
		return
	}
	s.st = running
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(s.stop, s.done)
}

// Stop wakes the interval wait immediately and blocks until the in-flight
// cycle finishes or the grace period elapses. Stopping an idle scheduler is
// a no-op.
func (s *Interval) Stop() {
	s.mu.Lock()
	if s.st != running {
		s.mu.Unlock()
		return
	}
	s.st = stopping
	stop, done := s.stop, s.done
	s.mu.Unlock()

	close(stop)

	select {
	case <-done:
	case <-time.After(s.grace):
		log.Warn("Scheduler grace period elapsed with a cycle still in flight")
	}

	s.mu.Lock()
	s.st = idle
	s.mu.Unlock()
}

func (s *Interval) loop(stop chan struct{}, done chan struct{}) {
	defer close(done)

	log.WithFields(log.Fields{
		"interval": s.interval,
	}).Info("Scheduler started")

	for {
		s.runCycle()
		select {
		case <-stop:
			log.Info("Scheduler stopped")
			return
		case <-time.After(s.interval):
		}
	}
}

// runCycle shields the loop from a panicking cycle; the error is reported
// and the loop continues to the next interval.
func (s *Interval) runCycle() {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"panic": r,
			}).Error("Scheduled cycle panicked")
		}
	}()
	s.task()
}

// Noop disables periodic execution entirely for manual-trigger-only
// deployments.
type Noop struct{}

func (n *Noop) Start() {
	log.Info("Scheduler disabled, periodic ingestion will not run")
}

func (n *Noop) Stop() {}
