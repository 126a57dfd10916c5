package idle

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bnema/pagemap-sessions/internal/domain"
	"github.com/bnema/pagemap-sessions/internal/ports"
	"github.com/bnema/pagemap-sessions/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestCoordinator(t *testing.T, cfg Config, clock ports.Clock) *Coordinator {
	t.Helper()

	c, err := NewCoordinator(cfg, clock, &recordingReporter{})
	require.NoError(t, err)
	t.Cleanup(c.Stop)
	return c
}

func trackedPageMap(c *Coordinator, name string) *domain.PageMap {
	pm := domain.NewPageMap("s-1", name, c)
	pm.SetLastPage(&domain.Page{ID: 1, Title: name})
	return pm
}

func TestNewCoordinatorConfig(t *testing.T) {
	t.Parallel()

	c, err := NewCoordinator(Config{}, nil, nil)
	require.NoError(t, err)
	stats := c.Stats()
	assert.Equal(t, DefaultIdleTimeout, stats.IdleTimeout)
	assert.Equal(t, DefaultSweepPeriod, stats.SweepPeriod)

	_, err = NewCoordinator(Config{IdleTimeout: -time.Second}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewCoordinator(Config{SweepPeriod: -time.Second}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestCoordinatorScenarioA(t *testing.T) {
	t.Parallel()

	clock := newManualClock()
	c := newTestCoordinator(t, Config{IdleTimeout: ms(1000)}, clock)
	pm := trackedPageMap(c, "K")

	clock.Set(ms(500))
	report, err := c.Sweep()
	require.NoError(t, err)
	assert.Zero(t, report.Evicted)
	assert.True(t, pm.HasLastPage())

	clock.Set(ms(1500))
	report, err = c.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Evicted)
	assert.False(t, pm.HasLastPage())
	assert.Empty(t, c.Tracked())
}

func TestCoordinatorScenarioB(t *testing.T) {
	t.Parallel()

	clock := newManualClock()
	c := newTestCoordinator(t, Config{IdleTimeout: ms(1000)}, clock)
	k1 := trackedPageMap(c, "K1")
	clock.Set(ms(10))
	k2 := trackedPageMap(c, "K2")

	clock.Set(ms(1005))
	report, err := c.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Evicted)
	assert.Equal(t, 1, report.Remaining)
	assert.False(t, k1.HasLastPage())
	assert.True(t, k2.HasLastPage())
}

func TestCoordinatorScenarioC(t *testing.T) {
	t.Parallel()

	clock := newManualClock()
	c := newTestCoordinator(t, Config{IdleTimeout: ms(1000)}, clock)
	pm := trackedPageMap(c, "K")
	clock.Set(ms(5))
	pm.SetLastPage(&domain.Page{ID: 2})

	clock.Set(ms(1004))
	report, err := c.Sweep()
	require.NoError(t, err)
	assert.Zero(t, report.Evicted)
	assert.True(t, pm.HasLastPage())
	require.Len(t, c.Tracked(), 1)
	assert.Equal(t, epoch.Add(ms(5)), c.Tracked()[0].TouchedAt)
}

func TestCoordinatorIgnoresClearedLastPage(t *testing.T) {
	t.Parallel()

	c := newTestCoordinator(t, Config{}, newManualClock())
	pm := domain.NewPageMap("s-1", "main", c)

	pm.SetLastPage(nil)
	c.Touch(nil)
	assert.Empty(t, c.Tracked())
}

func TestCoordinatorStaleHandleIsNoop(t *testing.T) {
	t.Parallel()

	clock := newManualClock()
	discarded := 0
	c := newTestCoordinator(t, Config{
		IdleTimeout: time.Second,
		Discard: func(*domain.PageMap) error {
			discarded++
			return nil
		},
	}, clock)

	c.mu.Lock()
	c.index.Touch(domain.TrackedKey{SessionID: "gone", Name: "main"}, Handle{}, epoch)
	c.mu.Unlock()

	clock.Set(time.Minute)
	report, err := c.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Stale)
	assert.Zero(t, report.Evicted)
	assert.Zero(t, discarded)
	assert.Empty(t, c.Tracked())
	assert.Equal(t, 1, c.Stats().Stale)
}

func TestCoordinatorDoesNotKeepPageMapsAlive(t *testing.T) {
	clock := newManualClock()
	c := newTestCoordinator(t, Config{IdleTimeout: time.Second}, clock)

	func() {
		pm := domain.NewPageMap("s-1", "main", c)
		pm.SetLastPage(&domain.Page{ID: 1, Markup: strings.Repeat("x", 1<<16)})
	}()
	require.Len(t, c.Tracked(), 1)

	require.Eventually(t, func() bool {
		runtime.GC()
		c.mu.Lock()
		defer c.mu.Unlock()
		for pair := c.index.entries.Oldest(); pair != nil; pair = pair.Next() {
			if _, ok := pair.Value.ref.Resolve(); ok {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond)

	clock.Set(time.Minute)
	report, err := c.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Stale)
}

func TestCoordinatorDiscardErrorIsReported(t *testing.T) {
	t.Parallel()

	clock := newManualClock()
	reporter := mocks.NewMockSweepReporter(t)
	boom := errors.New("disk full")

	c, err := NewCoordinator(Config{
		IdleTimeout: time.Second,
		Discard: func(pm *domain.PageMap) error {
			if pm.Name() == "bad" {
				return boom
			}
			return pm.UnsetLastPage()
		},
	}, clock, reporter)
	require.NoError(t, err)

	bad := trackedPageMap(c, "bad")
	good := trackedPageMap(c, "good")

	reporter.EXPECT().SweepCompleted(mock.MatchedBy(func(r ports.SweepReport) bool {
		return r.Pass == 1 && r.Evicted == 1 && r.Failed == 1
	})).Once()
	reporter.EXPECT().SweepFailed(mock.MatchedBy(func(err error) bool {
		return errors.Is(err, boom)
	})).Once()

	clock.Set(time.Minute)
	_, err = c.Sweep()

	var scanErr *ScanError
	require.ErrorAs(t, err, &scanErr)
	assert.ErrorIs(t, err, boom)
	assert.True(t, bad.HasLastPage())
	assert.False(t, good.HasLastPage())
	assert.Empty(t, c.Tracked())

	stats := c.Stats()
	assert.Equal(t, 1, stats.Failures)
	assert.Equal(t, 1, stats.Evicted)
	assert.Contains(t, stats.LastError, "disk full")
}

func TestCoordinatorBackgroundSweepSurvivesPanickingDiscard(t *testing.T) {
	t.Parallel()

	clock := newManualClock()
	c := newTestCoordinator(t, Config{
		IdleTimeout: time.Second,
		SweepPeriod: 2 * time.Millisecond,
		Discard: func(pm *domain.PageMap) error {
			if pm.Name() == "poison" {
				panic("unset exploded")
			}
			return pm.UnsetLastPage()
		},
	}, clock)

	poison := trackedPageMap(c, "poison")
	clock.Set(time.Minute)
	c.Start(context.Background())

	require.Eventually(t, func() bool { return c.Stats().Failures >= 1 }, 2*time.Second, 2*time.Millisecond)
	assert.True(t, poison.HasLastPage())

	healthy := trackedPageMap(c, "healthy")
	clock.Set(2 * time.Minute)

	require.Eventually(t, func() bool { return !healthy.HasLastPage() }, 2*time.Second, 2*time.Millisecond)
	assert.Equal(t, 1, c.Stats().Failures)
	assert.Contains(t, c.Stats().LastError, "unset exploded")
}

func TestCoordinatorStopEndsBackgroundSweeps(t *testing.T) {
	t.Parallel()

	clock := newManualClock()
	c := newTestCoordinator(t, Config{IdleTimeout: time.Second, SweepPeriod: time.Millisecond}, clock)
	c.Start(context.Background())

	require.Eventually(t, func() bool { return c.Stats().Passes >= 2 }, 2*time.Second, time.Millisecond)
	c.Stop()
	<-c.Done()

	passes := c.Stats().Passes
	pm := trackedPageMap(c, "after-stop")
	clock.Set(time.Hour)
	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, passes, c.Stats().Passes)
	assert.True(t, pm.HasLastPage())
}

func TestCoordinatorForget(t *testing.T) {
	t.Parallel()

	c := newTestCoordinator(t, Config{}, newManualClock())
	pm := trackedPageMap(c, "main")

	assert.True(t, c.Forget(pm.Key()))
	assert.False(t, c.Forget(pm.Key()))
	assert.Empty(t, c.Tracked())
}

func TestCoordinatorStats(t *testing.T) {
	t.Parallel()

	clock := newManualClock()
	c := newTestCoordinator(t, Config{IdleTimeout: time.Minute, SweepPeriod: 30 * time.Second}, clock)
	first := trackedPageMap(c, "a")
	clock.Set(40 * time.Second)
	second := trackedPageMap(c, "b")

	clock.Set(90 * time.Second)
	_, err := c.Sweep()
	require.NoError(t, err)

	stats := c.Stats()
	assert.Equal(t, 1, stats.Tracked)
	assert.Equal(t, 1, stats.Passes)
	assert.Equal(t, 1, stats.Evicted)
	assert.Equal(t, epoch.Add(40*time.Second), stats.OldestTouchedAt)
	assert.Equal(t, 50*time.Second, stats.OldestIdleFor)
	assert.Equal(t, epoch.Add(90*time.Second), stats.LastSweepAt)
	assert.Equal(t, 30*time.Second, stats.SweepPeriod)
	assert.Empty(t, stats.LastError)

	assert.False(t, first.HasLastPage())
	assert.True(t, second.HasLastPage())
}

func TestCoordinatorStatsCountPanickingPass(t *testing.T) {
	t.Parallel()

	clock := newManualClock()
	c := newTestCoordinator(t, Config{
		IdleTimeout: time.Minute,
		Discard: func(pm *domain.PageMap) error {
			if pm.Name() == "poison" {
				panic("unset exploded")
			}
			return pm.UnsetLastPage()
		},
	}, clock)

	healthy := trackedPageMap(c, "healthy")
	clock.Set(time.Second)
	poison := trackedPageMap(c, "poison")
	clock.Set(time.Hour)

	_, err := c.Sweep()
	var scanErr *ScanError
	require.ErrorAs(t, err, &scanErr)
	assert.Equal(t, "unset exploded", scanErr.Panic)

	assert.False(t, healthy.HasLastPage())
	assert.True(t, poison.HasLastPage())

	stats := c.Stats()
	assert.Equal(t, 1, stats.Passes)
	assert.Equal(t, 1, stats.Evicted)
	assert.Equal(t, 1, stats.Failures)
	assert.Contains(t, stats.LastError, "unset exploded")
}

func TestCoordinatorConcurrentTouchAndSweep(t *testing.T) {
	t.Parallel()

	c := newTestCoordinator(t, Config{IdleTimeout: time.Millisecond}, nil)

	pageMaps := make([]*domain.PageMap, 16)
	for i := range pageMaps {
		pageMaps[i] = domain.NewPageMap("s-1", fmt.Sprintf("pm-%d", i), c)
	}

	var wg sync.WaitGroup
	for _, pm := range pageMaps {
		wg.Add(1)
		go func(pm *domain.PageMap) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				pm.SetLastPage(&domain.Page{ID: i})
			}
		}(pm)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			_, _ = c.Sweep()
		}
	}()

	wg.Wait()
	<-done

	entries := c.Tracked()
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].TouchedAt.Before(entries[i-1].TouchedAt))
	}
	assert.LessOrEqual(t, len(entries), len(pageMaps))
	runtime.KeepAlive(pageMaps)
}
