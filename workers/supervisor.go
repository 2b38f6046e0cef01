// Package workers runs background loops under supervision.
package workers

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Worker is a long-running loop. It does not protect itself; the supervisor
// recovers its panics and restarts it.
type Worker interface {
	Run(ctx context.Context) error
}

// Supervisor runs each worker in its own goroutine, recovers panics,
// restarts failed workers after a fixed interval, and drains cleanly when
// the parent context is cancelled.
type Supervisor struct {
	log             *slog.Logger
	restartInterval time.Duration
	wg              sync.WaitGroup
	workers         []Worker
}

func NewSupervisor(log *slog.Logger, restartInterval time.Duration) *Supervisor {
	return &Supervisor{log: log, restartInterval: restartInterval}
}

func (s *Supervisor) Add(workers ...Worker) *Supervisor {
	s.workers = append(s.workers, workers...)
	return s
}

// Run starts every registered worker and blocks until all of them have
// stopped, which only happens after ctx is cancelled.
func (s *Supervisor) Run(ctx context.Context) {
	for _, worker := range s.workers {
		s.start(ctx, worker)
	}
	s.wg.Wait()
}

func (s *Supervisor) start(ctx context.Context, worker Worker) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			err := s.runOnce(ctx, worker)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				s.log.Error("worker stopped, restarting", "error", err)
			} else {
				s.log.Warn("worker returned early, restarting")
			}
			select {
			case <-time.After(s.restartInterval):
			case <-ctx.Done():
				return
			}
		}
	}()
}

// runOnce isolates one worker execution so a panic unwinds no further than
// the supervision loop.
func (s *Supervisor) runOnce(ctx context.Context, worker Worker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("worker panicked", "panic", r)
			err = nil
		}
	}()
	return worker.Run(ctx)
}
