package report

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/bnema/pagemap-sessions/internal/ports"
)

// Logger writes sweep outcomes to a slog logger. Passes that evict nothing
// stay silent.
type Logger struct {
	logger *slog.Logger
}

var _ ports.SweepReporter = (*Logger)(nil)

func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger.With("component", "idle-sweeper")}
}

func (l *Logger) SweepCompleted(report ports.SweepReport) {
	if report.Evicted == 0 && report.Stale == 0 && report.Failed == 0 {
		return
	}
	l.logger.Debug("idle page maps swept",
		"pass", report.Pass,
		"evicted", report.Evicted,
		"stale", report.Stale,
		"failed", report.Failed,
		"remaining", report.Remaining,
		"duration", report.Duration,
	)
}

func (l *Logger) SweepFailed(err error) {
	l.logger.Error("idle page map sweep failed", "error", err)
}

// Channel forwards sweep failures to a buffered channel. A full buffer drops
// the failure instead of blocking the sweeper.
type Channel struct {
	errs    chan error
	dropped atomic.Int64

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

var _ ports.SweepReporter = (*Channel)(nil)

func NewChannel(buffer int) *Channel {
	if buffer < 0 {
		buffer = 0
	}
	return &Channel{errs: make(chan error, buffer)}
}

func (c *Channel) Errors() <-chan error {
	return c.errs
}

// Dropped reports how many failures were discarded because nobody was reading.
func (c *Channel) Dropped() int64 {
	return c.dropped.Load()
}

func (c *Channel) SweepCompleted(ports.SweepReport) {}

func (c *Channel) SweepFailed(err error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		c.dropped.Add(1)
		return
	}

	select {
	case c.errs <- err:
	default:
		c.dropped.Add(1)
	}
}

// Close ends the Errors stream. Failures reported afterwards are dropped.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.errs)
		c.mu.Unlock()
	})
}

type fanout []ports.SweepReporter

// Fanout reports every outcome to each non-nil reporter in order.
func Fanout(reporters ...ports.SweepReporter) ports.SweepReporter {
	out := make(fanout, 0, len(reporters))
	for _, reporter := range reporters {
		if reporter != nil {
			out = append(out, reporter)
		}
	}
	return out
}

func (f fanout) SweepCompleted(report ports.SweepReport) {
	for _, reporter := range f {
		reporter.SweepCompleted(report)
	}
}

func (f fanout) SweepFailed(err error) {
	for _, reporter := range f {
		reporter.SweepFailed(err)
	}
}
