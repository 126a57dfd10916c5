package toml

import (
	"fmt"
	"time"

	"github.com/bnema/pagemap-sessions/internal/domain"
)

const currentPageSchemaVersion = 1

type sessionFileSchema struct {
	Version   int             `toml:"version"`
	SessionID string          `toml:"session_id"`
	PageMaps  []pageMapSchema `toml:"page_maps"`
}

func (s *sessionFileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentPageSchemaVersion
	}
}

func (s sessionFileSchema) validateVersion() error {
	if s.Version > currentPageSchemaVersion {
		return fmt.Errorf("unsupported page schema version %d (current %d)", s.Version, currentPageSchemaVersion)
	}

	return nil
}

func (s *sessionFileSchema) pageMap(name string) *pageMapSchema {
	for i := range s.PageMaps {
		if s.PageMaps[i].Name == name {
			return &s.PageMaps[i]
		}
	}
	return nil
}

type pageMapSchema struct {
	Name  string       `toml:"name"`
	Pages []pageSchema `toml:"pages"`
}

type pageSchema struct {
	ID         int    `toml:"id"`
	Version    int    `toml:"version"`
	Title      string `toml:"title"`
	Markup     string `toml:"markup"`
	RenderedAt string `toml:"rendered_at"`
}

func toPageSchema(page domain.Page) pageSchema {
	return pageSchema{
		ID:         page.ID,
		Version:    page.Version,
		Title:      page.Title,
		Markup:     page.Markup,
		RenderedAt: formatTime(page.RenderedAt),
	}
}

func fromPageSchema(schema pageSchema) domain.Page {
	return domain.Page{
		ID:         schema.ID,
		Version:    schema.Version,
		Title:      schema.Title,
		Markup:     schema.Markup,
		RenderedAt: parseTime(schema.RenderedAt),
	}
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.Format(time.RFC3339Nano)
}
