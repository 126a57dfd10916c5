package application

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/pagemap-sessions/internal/domain"
	"github.com/bnema/pagemap-sessions/internal/ports"
	"github.com/google/uuid"
)

// IdleTracker is told about every last page a page map receives and can be
// asked to stop tracking a page map whose session went away.
type IdleTracker interface {
	domain.LastPageObserver
	Forget(key domain.TrackedKey) bool
}

type session struct {
	id        string
	createdAt time.Time
	pageMaps  map[string]*domain.PageMap

	// writeMu is held while a page is stored and handed to its page map.
	// Invalidation sets invalidated and then waits on writeMu, so once it
	// forgets the page maps nothing can store or track them again.
	writeMu     sync.Mutex
	invalidated atomic.Bool
}

func (sess *session) notFound() error {
	return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sess.id)
}

// SessionStore owns the page maps of every live session. Page maps keep their
// last page in memory; every version is also written to the page store so a
// discarded last page can be brought back on the next read.
type SessionStore struct {
	tracker IdleTracker
	pages   ports.PageStore
	clock   ports.Clock
	newID   func() string

	mu       sync.RWMutex
	sessions map[string]*session
}

func NewSessionStore(tracker IdleTracker, pages ports.PageStore, clock ports.Clock) (*SessionStore, error) {
	if tracker == nil {
		return nil, domain.ErrIdleTrackerRequired
	}
	if pages == nil {
		return nil, errors.New("page store is required")
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &SessionStore{
		tracker:  tracker,
		pages:    pages,
		clock:    clock,
		newID:    uuid.NewString,
		sessions: map[string]*session{},
	}, nil
}

func (s *SessionStore) CreateSession(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	if _, exists := s.sessions[id]; exists {
		return "", fmt.Errorf("session id %q already in use", id)
	}
	s.sessions[id] = &session{
		id:        id,
		createdAt: s.clock.Now(),
		pageMaps:  map[string]*domain.PageMap{},
	}

	return id, nil
}

// PageMap returns the named page map of the session, creating it on first use.
func (s *SessionStore) PageMap(ctx context.Context, sessionID, name string) (*domain.PageMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return s.pageMap(sessionID, name, true)
}

func (s *SessionStore) SetLastPage(ctx context.Context, sessionID, name string, page domain.Page) error {
	if err := page.Validate(); err != nil {
		return err
	}
	if page.RenderedAt.IsZero() {
		page.RenderedAt = s.clock.Now()
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	sess, pageMap, err := s.lookup(sessionID, name, true)
	if err != nil {
		return err
	}

	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	if sess.invalidated.Load() {
		return sess.notFound()
	}

	if err := s.pages.StorePage(ctx, sessionID, pageMap.Name(), page); err != nil {
		return fmt.Errorf("store page %d/%d: %w", page.ID, page.Version, err)
	}
	pageMap.SetLastPage(&page)

	return nil
}

// LastPage returns the last page of the page map. When the in-memory copy was
// discarded for idleness, the latest stored version is restored and restored
// is true.
func (s *SessionStore) LastPage(ctx context.Context, sessionID, name string) (page domain.Page, restored bool, err error) {
	if err := ctx.Err(); err != nil {
		return domain.Page{}, false, err
	}

	sess, pageMap, err := s.lookup(sessionID, name, false)
	if err != nil {
		return domain.Page{}, false, err
	}

	if last := pageMap.LastPage(); last != nil {
		return *last, false, nil
	}

	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	if sess.invalidated.Load() {
		return domain.Page{}, false, sess.notFound()
	}
	if last := pageMap.LastPage(); last != nil {
		return *last, false, nil
	}

	latest, err := s.pages.LatestPage(ctx, sessionID, pageMap.Name())
	if err != nil {
		if errors.Is(err, domain.ErrPageNotFound) {
			return domain.Page{}, false, err
		}
		return domain.Page{}, false, fmt.Errorf("load latest page: %w", err)
	}
	pageMap.SetLastPage(&latest)

	return latest, true, nil
}

func (s *SessionStore) GetPage(ctx context.Context, sessionID, name string, pageID, version int) (domain.Page, error) {
	if err := ctx.Err(); err != nil {
		return domain.Page{}, err
	}

	pageMap, err := s.pageMap(sessionID, name, false)
	if err != nil {
		return domain.Page{}, err
	}

	if last := pageMap.LastPage(); last != nil && last.ID == pageID && last.Version == version {
		return *last, nil
	}

	page, err := s.pages.GetPage(ctx, sessionID, pageMap.Name(), pageID, version)
	if err != nil {
		if errors.Is(err, domain.ErrPageNotFound) {
			return domain.Page{}, err
		}
		return domain.Page{}, fmt.Errorf("get page %d/%d: %w", pageID, version, err)
	}

	return page, nil
}

// InvalidateSession drops the session, stops tracking its page maps and
// removes its stored pages.
func (s *SessionStore) InvalidateSession(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
		sess.invalidated.Store(true)
	}
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}

	// A write that passed the invalidated check before us finishes first.
	sess.writeMu.Lock()
	for _, pageMap := range sess.pageMaps {
		s.tracker.Forget(pageMap.Key())
	}
	sess.writeMu.Unlock()

	if err := s.pages.RemoveSession(ctx, sessionID); err != nil {
		return fmt.Errorf("remove stored pages: %w", err)
	}

	return nil
}

func (s *SessionStore) Sessions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s *SessionStore) PageMapNames(sessionID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}

	names := make([]string, 0, len(sess.pageMaps))
	for name := range sess.pageMaps {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func (s *SessionStore) Describe(sessionID string) (SessionSummary, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	var pageMaps []*domain.PageMap
	if ok {
		pageMaps = make([]*domain.PageMap, 0, len(sess.pageMaps))
		for _, pageMap := range sess.pageMaps {
			pageMaps = append(pageMaps, pageMap)
		}
	}
	s.mu.RUnlock()

	if !ok {
		return SessionSummary{}, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}

	summary := SessionSummary{
		ID:        sess.id,
		CreatedAt: sess.createdAt,
		PageMaps:  make([]PageMapSummary, 0, len(pageMaps)),
	}
	for _, pageMap := range pageMaps {
		summary.PageMaps = append(summary.PageMaps, PageMapSummary{
			Name:        pageMap.Name(),
			HasLastPage: pageMap.HasLastPage(),
		})
	}
	slices.SortFunc(summary.PageMaps, func(a, b PageMapSummary) int {
		return strings.Compare(a.Name, b.Name)
	})

	return summary, nil
}

func (s *SessionStore) pageMap(sessionID, name string, create bool) (*domain.PageMap, error) {
	_, pageMap, err := s.lookup(sessionID, name, create)
	return pageMap, err
}

func (s *SessionStore) lookup(sessionID, name string, create bool) (*session, *domain.PageMap, error) {
	name = domain.NormalizePageMapName(name)

	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	var pageMap *domain.PageMap
	if ok {
		pageMap = sess.pageMaps[name]
	}
	s.mu.RUnlock()

	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	if pageMap != nil {
		return sess, pageMap, nil
	}
	if !create {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrPageMapNotFound, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok = s.sessions[sessionID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	if existing, ok := sess.pageMaps[name]; ok {
		return sess, existing, nil
	}
	pageMap = domain.NewPageMap(sessionID, name, s.tracker)
	sess.pageMaps[name] = pageMap

	return sess, pageMap, nil
}
