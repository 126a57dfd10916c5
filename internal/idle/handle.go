package idle

import (
	"weak"

	"github.com/bnema/pagemap-sessions/internal/domain"
)

// Handle refers to a tracked page map without keeping it reachable. Once the
// owning session drops the page map, Resolve reports it as gone.
type Handle struct {
	ptr weak.Pointer[domain.PageMap]
}

func NewHandle(pageMap *domain.PageMap) Handle {
	if pageMap == nil {
		return Handle{}
	}
	return Handle{ptr: weak.Make(pageMap)}
}

func (h Handle) Resolve() (*domain.PageMap, bool) {
	pageMap := h.ptr.Value()
	return pageMap, pageMap != nil
}
