package httpapi

import (
	"time"

	"github.com/bnema/pagemap-sessions/internal/domain"
	"github.com/bnema/pagemap-sessions/internal/idle"
	"github.com/bnema/pagemap-sessions/internal/ports"
)

const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error"`
}

type HealthResponse struct {
	Status  string     `json:"status"` // "healthy" or "degraded"
	Uptime  string     `json:"uptime"`
	Idle    idle.Stats `json:"idle"`
	Version string     `json:"version"`
}

type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

type PageRequest struct {
	ID         int       `json:"id"`
	Version    int       `json:"version"`
	Title      string    `json:"title"`
	Markup     string    `json:"markup"`
	RenderedAt time.Time `json:"rendered_at"`
}

func (r PageRequest) toDomain() domain.Page {
	return domain.Page{
		ID:         r.ID,
		Version:    r.Version,
		Title:      r.Title,
		Markup:     r.Markup,
		RenderedAt: r.RenderedAt,
	}
}

type PageResponse struct {
	ID         int       `json:"id"`
	Version    int       `json:"version"`
	Title      string    `json:"title"`
	Markup     string    `json:"markup"`
	RenderedAt time.Time `json:"rendered_at"`
	Size       int       `json:"size"`
}

func toPageResponse(page domain.Page) PageResponse {
	return PageResponse{
		ID:         page.ID,
		Version:    page.Version,
		Title:      page.Title,
		Markup:     page.Markup,
		RenderedAt: page.RenderedAt,
		Size:       page.Size(),
	}
}

type LastPageResponse struct {
	Page     PageResponse `json:"page"`
	Restored bool         `json:"restored"`
}

type SweepResponse struct {
	Pass      int       `json:"pass"`
	At        time.Time `json:"at"`
	Duration  string    `json:"duration"`
	Evicted   int       `json:"evicted"`
	Stale     int       `json:"stale"`
	Failed    int       `json:"failed"`
	Remaining int       `json:"remaining"`
	Error     string    `json:"error,omitempty"`
}

func toSweepResponse(report ports.SweepReport, err error) SweepResponse {
	resp := SweepResponse{
		Pass:      report.Pass,
		At:        report.At,
		Duration:  report.Duration.String(),
		Evicted:   report.Evicted,
		Stale:     report.Stale,
		Failed:    report.Failed,
		Remaining: report.Remaining,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}
