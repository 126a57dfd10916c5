package memory

import (
	"context"
	"sync"

	"github.com/bnema/pagemap-sessions/internal/domain"
	"github.com/bnema/pagemap-sessions/internal/ports"
)

const DefaultMaxVersions = 16

type pageMapKey struct {
	sessionID string
	name      string
}

// PageRepository keeps page versions in process memory. Restarting the
// process loses them.
type PageRepository struct {
	maxVersions int

	mu    sync.RWMutex
	pages map[pageMapKey][]domain.Page
}

var _ ports.PageStore = (*PageRepository)(nil)

func NewPageRepository(maxVersions int) *PageRepository {
	if maxVersions <= 0 {
		maxVersions = DefaultMaxVersions
	}

	return &PageRepository{
		maxVersions: maxVersions,
		pages:       map[pageMapKey][]domain.Page{},
	}
}

func (r *PageRepository) StorePage(ctx context.Context, sessionID, pageMap string, page domain.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := pageMapKey{sessionID: sessionID, name: pageMap}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing := r.pages[key]
	versions := make([]domain.Page, 0, len(existing)+1)
	for _, stored := range existing {
		if stored.ID == page.ID && stored.Version == page.Version {
			continue
		}
		versions = append(versions, stored)
	}
	versions = append(versions, page)
	if len(versions) > r.maxVersions {
		versions = versions[len(versions)-r.maxVersions:]
	}
	r.pages[key] = versions

	return nil
}

func (r *PageRepository) GetPage(ctx context.Context, sessionID, pageMap string, id, version int) (domain.Page, error) {
	if err := ctx.Err(); err != nil {
		return domain.Page{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	versions := r.pages[pageMapKey{sessionID: sessionID, name: pageMap}]
	for i := len(versions) - 1; i >= 0; i-- {
		if versions[i].ID == id && versions[i].Version == version {
			return versions[i], nil
		}
	}

	return domain.Page{}, domain.ErrPageNotFound
}

func (r *PageRepository) LatestPage(ctx context.Context, sessionID, pageMap string) (domain.Page, error) {
	if err := ctx.Err(); err != nil {
		return domain.Page{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	versions := r.pages[pageMapKey{sessionID: sessionID, name: pageMap}]
	if len(versions) == 0 {
		return domain.Page{}, domain.ErrPageNotFound
	}

	return versions[len(versions)-1], nil
}

func (r *PageRepository) RemoveSession(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.pages {
		if key.sessionID == sessionID {
			delete(r.pages, key)
		}
	}

	return nil
}

// Len reports how many versions are held across all sessions.
func (r *PageRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, versions := range r.pages {
		total += len(versions)
	}
	return total
}
