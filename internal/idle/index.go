package idle

import (
	"errors"
	"fmt"
	"time"

	"github.com/bnema/pagemap-sessions/internal/domain"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type entry struct {
	touchedAt time.Time
	ref       Handle
}

// Entry is a read-only view of one tracked page map.
type Entry struct {
	Key       domain.TrackedKey
	TouchedAt time.Time
}

type EvictFunc func(key domain.TrackedKey, ref Handle) error

type EvictResult struct {
	Evicted   int
	Remaining int
}

// TimeIndex orders tracked page maps from least to most recently touched.
// It does no locking of its own.
type TimeIndex struct {
	entries *orderedmap.OrderedMap[domain.TrackedKey, entry]
}

func NewTimeIndex() *TimeIndex {
	return &TimeIndex{entries: orderedmap.New[domain.TrackedKey, entry]()}
}

// Touch moves key to the back of the index with the given timestamp, replacing
// the handle it was tracked with.
func (ix *TimeIndex) Touch(key domain.TrackedKey, ref Handle, now time.Time) {
	ix.entries.Delete(key)
	ix.entries.Set(key, entry{touchedAt: now, ref: ref})
}

// EvictIdlePrefix removes entries from the front for as long as they are idle
// and stops at the first one that is not. Every removed entry is handed to
// onEvict after it left the index; callback errors are joined, they do not
// stop the walk.
func (ix *TimeIndex) EvictIdlePrefix(now time.Time, timeout time.Duration, onEvict EvictFunc) (EvictResult, error) {
	var (
		result EvictResult
		errs   []error
	)

	for pair := ix.entries.Oldest(); pair != nil; pair = ix.entries.Oldest() {
		if !IsIdle(pair.Value.touchedAt, now, timeout) {
			break
		}

		key, ref := pair.Key, pair.Value.ref
		ix.entries.Delete(key)
		result.Evicted++

		if onEvict == nil {
			continue
		}
		if err := onEvict(key, ref); err != nil {
			errs = append(errs, fmt.Errorf("evict %s: %w", key, err))
		}
	}

	result.Remaining = ix.entries.Len()
	return result, errors.Join(errs...)
}

func (ix *TimeIndex) Remove(key domain.TrackedKey) bool {
	_, present := ix.entries.Delete(key)
	return present
}

func (ix *TimeIndex) Len() int {
	return ix.entries.Len()
}

func (ix *TimeIndex) Oldest() (Entry, bool) {
	pair := ix.entries.Oldest()
	if pair == nil {
		return Entry{}, false
	}
	return Entry{Key: pair.Key, TouchedAt: pair.Value.touchedAt}, true
}

// Entries lists the index front to back.
func (ix *TimeIndex) Entries() []Entry {
	out := make([]Entry, 0, ix.entries.Len())
	for pair := ix.entries.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, Entry{Key: pair.Key, TouchedAt: pair.Value.touchedAt})
	}
	return out
}

// IsIdle treats a missing timestamp as idle.
func IsIdle(touchedAt, now time.Time, timeout time.Duration) bool {
	if touchedAt.IsZero() {
		return true
	}
	return now.Sub(touchedAt) >= timeout
}
