package httpapi

import (
	"context"
	"log/slog"
	"time"

	"github.com/bnema/pagemap-sessions/internal/application"
	"github.com/bnema/pagemap-sessions/internal/domain"
	"github.com/bnema/pagemap-sessions/internal/idle"
	"github.com/bnema/pagemap-sessions/internal/ports"
	"github.com/gin-gonic/gin"
)

// SessionService is the part of the session store the API serves.
type SessionService interface {
	CreateSession(ctx context.Context) (string, error)
	InvalidateSession(ctx context.Context, sessionID string) error
	Describe(sessionID string) (application.SessionSummary, error)
	SetLastPage(ctx context.Context, sessionID, name string, page domain.Page) error
	LastPage(ctx context.Context, sessionID, name string) (domain.Page, bool, error)
	GetPage(ctx context.Context, sessionID, name string, pageID, version int) (domain.Page, error)
}

// IdleService exposes the idle eviction coordinator.
type IdleService interface {
	Stats() idle.Stats
	Sweep() (ports.SweepReport, error)
}

type Options struct {
	Mode              string
	RequestsPerSecond float64
	Burst             int
	StartedAt         time.Time
	Version           string
	Logger            *slog.Logger
	Now               func() time.Time
}

// NewRouter builds the gin engine. The rate limiter janitor stops with ctx.
//
// Middleware chain:
//
//	Global:  Recovery -> request log
//	API:     RateLimit (health is exempt)
func NewRouter(ctx context.Context, sessions SessionService, idleSvc IdleService, opts Options) *gin.Engine {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.StartedAt.IsZero() {
		opts.StartedAt = opts.Now()
	}

	h := &handlers{
		sessions: sessions,
		idle:     idleSvc,
		logger:   opts.Logger,
		opts:     opts,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(opts.Logger))

	v1 := r.Group("/api/v1")
	v1.GET("/health", h.health)

	limiters := newClientLimiters(opts.RequestsPerSecond, opts.Burst, opts.Now)
	go limiters.runJanitor(ctx)

	protected := v1.Group("")
	protected.Use(rateLimit(limiters))

	protected.POST("/sessions", h.createSession)
	protected.GET("/sessions/:session", h.describeSession)
	protected.DELETE("/sessions/:session", h.deleteSession)
	protected.PUT("/sessions/:session/pagemaps/:name/last-page", h.setLastPage)
	protected.GET("/sessions/:session/pagemaps/:name/last-page", h.lastPage)
	protected.GET("/sessions/:session/pagemaps/:name/pages/:id/:version", h.getPage)

	protected.GET("/idle", h.idleStats)
	protected.POST("/idle/sweep", h.sweep)

	return r
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client", c.ClientIP(),
		)
	}
}
