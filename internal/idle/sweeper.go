package idle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/pagemap-sessions/internal/ports"
)

// SweepFunc runs one eviction pass.
type SweepFunc func() (ports.SweepReport, error)

// Sweeper runs a SweepFunc on a single goroutine. The next pass is armed only
// after the previous one returned, whatever the outcome, so passes never
// overlap and a failing pass never ends the schedule.
type Sweeper struct {
	period   time.Duration
	sweep    SweepFunc
	reporter ports.SweepReporter

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}

	passes atomic.Int64
}

func NewSweeper(period time.Duration, sweep SweepFunc, reporter ports.SweepReporter) *Sweeper {
	if period <= 0 {
		period = DefaultSweepPeriod
	}
	if reporter == nil {
		reporter = logReporter{logger: slog.Default()}
	}

	return &Sweeper{
		period:   period,
		sweep:    sweep,
		reporter: reporter,
		done:     make(chan struct{}),
	}
}

// Start launches the background loop. Calling it again, or after Stop, is a no-op.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || s.stopped {
		return
	}
	s.started = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	go s.loop(ctx)
}

// Stop prevents any further pass from being armed and waits for an in-flight
// pass to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.stopped = true
	started := s.started
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	if !started {
		close(s.done)
		return
	}
	<-s.done
}

// Done is closed once the sweeper is stopped.
func (s *Sweeper) Done() <-chan struct{} {
	return s.done
}

// Passes counts every pass started so far, including those that failed or panicked.
func (s *Sweeper) Passes() int {
	return int(s.passes.Load())
}

func (s *Sweeper) Period() time.Duration {
	return s.period
}

func (s *Sweeper) loop(ctx context.Context) {
	defer close(s.done)

	timer := time.NewTimer(s.period)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		s.runScheduled(ctx, timer)
	}
}

func (s *Sweeper) runScheduled(ctx context.Context, timer *time.Timer) {
	defer func() {
		if ctx.Err() == nil {
			timer.Reset(s.period)
		}
	}()

	_, _ = s.RunOnce()
}

// RunOnce performs one pass on the calling goroutine. Errors and panics are
// turned into a *ScanError, handed to the reporter and returned.
func (s *Sweeper) RunOnce() (report ports.SweepReport, err error) {
	pass := int(s.passes.Add(1))

	defer func() {
		if r := recover(); r != nil {
			err = &ScanError{Pass: pass, Panic: r, Err: fmt.Errorf("panic: %v", r)}
		}
		if err == nil {
			return
		}

		var scanErr *ScanError
		if !errors.As(err, &scanErr) {
			err = &ScanError{Pass: pass, Err: err}
		}
		s.reporter.SweepFailed(err)
	}()

	report, err = s.sweep()
	report.Pass = pass
	s.reporter.SweepCompleted(report)

	return report, err
}

type logReporter struct {
	logger *slog.Logger
}

func (r logReporter) SweepCompleted(report ports.SweepReport) {
	if report.Evicted == 0 && report.Stale == 0 {
		return
	}
	r.logger.Debug("idle page maps swept",
		"pass", report.Pass,
		"evicted", report.Evicted,
		"stale", report.Stale,
		"remaining", report.Remaining,
	)
}

func (r logReporter) SweepFailed(err error) {
	r.logger.Error("idle page map sweep failed", "error", err)
}
