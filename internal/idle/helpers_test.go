package idle

import (
	"sync"
	"time"

	"github.com/bnema/pagemap-sessions/internal/ports"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: epoch}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Set(offset time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = epoch.Add(offset)
}

type recordingReporter struct {
	mu        sync.Mutex
	completed []ports.SweepReport
	failed    []error
}

func (r *recordingReporter) SweepCompleted(report ports.SweepReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, report)
}

func (r *recordingReporter) SweepFailed(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, err)
}

func (r *recordingReporter) failures() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.failed...)
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
