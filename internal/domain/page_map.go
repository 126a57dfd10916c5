package domain

import (
	"fmt"
	"strings"
	"sync"
)

const DefaultPageMapName = "default"

// TrackedKey identifies a page map across its lifetime. It is comparable and
// only carries the session id and the page map name.
type TrackedKey struct {
	SessionID string
	Name      string
}

func (k TrackedKey) String() string {
	return fmt.Sprintf("pagemap[session=%s, name=%s]", k.SessionID, k.Name)
}

// LastPageObserver is notified every time a page map's last page is assigned,
// including when it is cleared.
type LastPageObserver interface {
	OnAfterLastPageSet(pageMap *PageMap, page *Page)
}

// PageMap holds the last rendered page of one named page map of a session.
type PageMap struct {
	sessionID string
	name      string

	mu       sync.Mutex
	lastPage *Page
	observer LastPageObserver
}

// NormalizePageMapName trims name and falls back to DefaultPageMapName.
func NormalizePageMapName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultPageMapName
	}
	return name
}

func NewPageMap(sessionID, name string, observer LastPageObserver) *PageMap {
	return &PageMap{sessionID: sessionID, name: NormalizePageMapName(name), observer: observer}
}

func (m *PageMap) SessionID() string {
	return m.sessionID
}

func (m *PageMap) Name() string {
	return m.name
}

func (m *PageMap) Key() TrackedKey {
	return TrackedKey{SessionID: m.sessionID, Name: m.name}
}

// LastPage returns a copy of the last page, or nil when none is held.
func (m *PageMap) LastPage() *Page {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastPage == nil {
		return nil
	}
	page := *m.lastPage
	return &page
}

// SetLastPage stores page and then notifies the observer outside of the
// page map lock.
func (m *PageMap) SetLastPage(page *Page) {
	var stored *Page
	if page != nil {
		copied := *page
		stored = &copied
	}

	m.mu.Lock()
	m.lastPage = stored
	observer := m.observer
	m.mu.Unlock()

	if observer != nil {
		observer.OnAfterLastPageSet(m, stored)
	}
}

// UnsetLastPage drops the last page payload without notifying the observer.
func (m *PageMap) UnsetLastPage() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastPage = nil
	return nil
}

func (m *PageMap) HasLastPage() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lastPage != nil
}
