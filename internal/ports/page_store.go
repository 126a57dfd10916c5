package ports

import (
	"context"

	"github.com/bnema/pagemap-sessions/internal/domain"
)

// PageStore persists page versions so a discarded last page can be restored.
type PageStore interface {
	StorePage(ctx context.Context, sessionID, pageMap string, page domain.Page) error
	GetPage(ctx context.Context, sessionID, pageMap string, id, version int) (domain.Page, error)
	LatestPage(ctx context.Context, sessionID, pageMap string) (domain.Page, error)
	RemoveSession(ctx context.Context, sessionID string) error
}
