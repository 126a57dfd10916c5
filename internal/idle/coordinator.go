package idle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bnema/pagemap-sessions/internal/domain"
	"github.com/bnema/pagemap-sessions/internal/ports"
)

const (
	DefaultIdleTimeout = 10 * time.Minute
	DefaultSweepPeriod = time.Minute
)

// DiscardFunc drops the heavy payload of an idle page map.
type DiscardFunc func(pageMap *domain.PageMap) error

type Config struct {
	// IdleTimeout is how long a page map may go without a new last page
	// before its last page is discarded.
	IdleTimeout time.Duration
	SweepPeriod time.Duration

	// Discard defaults to (*domain.PageMap).UnsetLastPage.
	Discard DiscardFunc
	Logger  *slog.Logger
}

func (c Config) withDefaults() (Config, error) {
	if c.IdleTimeout < 0 {
		return c, fmt.Errorf("%w: idle timeout %s must be positive", ErrInvalidConfig, c.IdleTimeout)
	}
	if c.SweepPeriod < 0 {
		return c, fmt.Errorf("%w: sweep period %s must be positive", ErrInvalidConfig, c.SweepPeriod)
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.SweepPeriod == 0 {
		c.SweepPeriod = DefaultSweepPeriod
	}
	if c.Discard == nil {
		c.Discard = (*domain.PageMap).UnsetLastPage
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}

	return c, nil
}

type Stats struct {
	Tracked         int           `json:"tracked"`
	OldestTouchedAt time.Time     `json:"oldest_touched_at"`
	OldestIdleFor   time.Duration `json:"oldest_idle_for"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	SweepPeriod     time.Duration `json:"sweep_period"`
	Passes          int           `json:"passes"`
	Evicted         int           `json:"evicted"`
	Stale           int           `json:"stale"`
	Failures        int           `json:"failures"`
	LastSweepAt     time.Time     `json:"last_sweep_at"`
	LastError       string        `json:"last_error,omitempty"`
}

// Coordinator tracks when page maps last received a last page and discards
// the last page of those left idle. All index access goes through mu.
type Coordinator struct {
	cfg   Config
	clock ports.Clock

	mu    sync.Mutex
	index *TimeIndex

	statsMu sync.Mutex
	stats   Stats

	reporter ports.SweepReporter
	sweeper  *Sweeper
}

var _ domain.LastPageObserver = (*Coordinator)(nil)

func NewCoordinator(cfg Config, clock ports.Clock, reporter ports.SweepReporter) (*Coordinator, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if reporter == nil {
		reporter = logReporter{logger: cfg.Logger}
	}

	c := &Coordinator{
		cfg:      cfg,
		clock:    clock,
		index:    NewTimeIndex(),
		reporter: reporter,
	}
	c.sweeper = NewSweeper(cfg.SweepPeriod, c.sweepLocked, statsRecorder{c})

	return c, nil
}

// Touch marks pageMap as used now.
func (c *Coordinator) Touch(pageMap *domain.PageMap) {
	if pageMap == nil {
		return
	}
	key := pageMap.Key()
	ref := NewHandle(pageMap)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.index.Touch(key, ref, c.clock.Now())
}

// OnAfterLastPageSet touches the page map whenever it receives a non-nil last page.
func (c *Coordinator) OnAfterLastPageSet(pageMap *domain.PageMap, page *domain.Page) {
	if page == nil {
		return
	}
	c.Touch(pageMap)
}

// Forget stops tracking key, typically because its session went away.
func (c *Coordinator) Forget(key domain.TrackedKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.index.Remove(key)
}

// Sweep runs one pass immediately on the calling goroutine.
func (c *Coordinator) Sweep() (ports.SweepReport, error) {
	return c.sweeper.RunOnce()
}

func (c *Coordinator) Start(ctx context.Context) {
	c.sweeper.Start(ctx)
}

func (c *Coordinator) Stop() {
	c.sweeper.Stop()
}

func (c *Coordinator) Done() <-chan struct{} {
	return c.sweeper.Done()
}

func (c *Coordinator) Tracked() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.index.Entries()
}

func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	tracked := c.index.Len()
	oldest, hasOldest := c.index.Oldest()
	now := c.clock.Now()
	c.mu.Unlock()

	c.statsMu.Lock()
	stats := c.stats
	c.statsMu.Unlock()

	stats.Tracked = tracked
	stats.Passes = c.sweeper.Passes()
	stats.IdleTimeout = c.cfg.IdleTimeout
	stats.SweepPeriod = c.cfg.SweepPeriod
	if hasOldest {
		stats.OldestTouchedAt = oldest.TouchedAt
		stats.OldestIdleFor = now.Sub(oldest.TouchedAt)
	}

	return stats
}

func (c *Coordinator) sweepLocked() (ports.SweepReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	report := ports.SweepReport{At: now}

	result, err := c.index.EvictIdlePrefix(now, c.cfg.IdleTimeout, func(_ domain.TrackedKey, ref Handle) error {
		pageMap, ok := ref.Resolve()
		if !ok {
			report.Stale++
			c.countEviction(0, 1)
			return nil
		}
		if err := c.cfg.Discard(pageMap); err != nil {
			report.Failed++
			return err
		}
		report.Evicted++
		c.countEviction(1, 0)
		return nil
	})
	report.Remaining = result.Remaining
	report.Duration = c.clock.Now().Sub(now)

	return report, err
}

// countEviction is called per entry so a pass that panics halfway still
// accounts for the page maps it already discarded.
func (c *Coordinator) countEviction(evicted, stale int) {
	c.statsMu.Lock()
	c.stats.Evicted += evicted
	c.stats.Stale += stale
	c.statsMu.Unlock()
}

// statsRecorder folds pass outcomes into the coordinator stats before handing
// them to the configured reporter. Passes come from the sweeper itself.
type statsRecorder struct {
	c *Coordinator
}

func (r statsRecorder) SweepCompleted(report ports.SweepReport) {
	r.c.statsMu.Lock()
	r.c.stats.LastSweepAt = report.At
	r.c.statsMu.Unlock()

	r.c.reporter.SweepCompleted(report)
}

func (r statsRecorder) SweepFailed(err error) {
	r.c.statsMu.Lock()
	r.c.stats.Failures++
	r.c.stats.LastError = err.Error()
	r.c.statsMu.Unlock()

	r.c.reporter.SweepFailed(err)
}
