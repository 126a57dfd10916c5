package domain

import (
	"fmt"
	"time"
)

type Page struct {
	ID         int
	Version    int
	Title      string
	Markup     string
	RenderedAt time.Time
}

func (p Page) Validate() error {
	if p.ID < 0 {
		return fmt.Errorf("%w: id must not be negative", ErrInvalidPage)
	}
	if p.Version < 0 {
		return fmt.Errorf("%w: version must not be negative", ErrInvalidPage)
	}

	return nil
}

// Size is the number of payload bytes the page keeps in memory.
func (p Page) Size() int {
	return len(p.Title) + len(p.Markup)
}
