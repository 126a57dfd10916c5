package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/bnema/pagemap-sessions/internal/domain"
	"github.com/gin-gonic/gin"
)

type handlers struct {
	sessions SessionService
	idle     IdleService
	logger   *slog.Logger
	opts     Options
}

// health reports degraded when the oldest tracked page map has outlived the
// idle timeout by more than two sweep periods, meaning sweeps are not keeping up.
func (h *handlers) health(c *gin.Context) {
	stats := h.idle.Stats()

	status := "healthy"
	if stats.Tracked > 0 && stats.OldestIdleFor > stats.IdleTimeout+2*stats.SweepPeriod {
		status = "degraded"
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:  status,
		Uptime:  h.opts.Now().Sub(h.opts.StartedAt).Round(time.Second).String(),
		Idle:    stats,
		Version: h.opts.Version,
	})
}

func (h *handlers) createSession(c *gin.Context) {
	sessionID, err := h.sessions.CreateSession(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateSessionResponse{SessionID: sessionID})
}

func (h *handlers) describeSession(c *gin.Context) {
	summary, err := h.sessions.Describe(c.Param("session"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *handlers) deleteSession(c *gin.Context) {
	if err := h.sessions.InvalidateSession(c.Request.Context(), c.Param("session")); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *handlers) setLastPage(c *gin.Context) {
	var req PageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, ErrCodeInvalidInput, "invalid page body: "+err.Error())
		return
	}

	if err := h.sessions.SetLastPage(c.Request.Context(), c.Param("session"), c.Param("name"), req.toDomain()); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *handlers) lastPage(c *gin.Context) {
	page, restored, err := h.sessions.LastPage(c.Request.Context(), c.Param("session"), c.Param("name"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, LastPageResponse{Page: toPageResponse(page), Restored: restored})
}

func (h *handlers) getPage(c *gin.Context) {
	pageID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, ErrCodeInvalidInput, "page id must be an integer")
		return
	}
	version, err := strconv.Atoi(c.Param("version"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, ErrCodeInvalidInput, "page version must be an integer")
		return
	}

	page, err := h.sessions.GetPage(c.Request.Context(), c.Param("session"), c.Param("name"), pageID, version)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toPageResponse(page))
}

func (h *handlers) idleStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.idle.Stats())
}

func (h *handlers) sweep(c *gin.Context) {
	report, err := h.idle.Sweep()
	c.JSON(http.StatusOK, toSweepResponse(report, err))
}

func (h *handlers) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidPage):
		abortWithError(c, http.StatusBadRequest, ErrCodeInvalidInput, err.Error())
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrPageMapNotFound),
		errors.Is(err, domain.ErrPageNotFound):
		abortWithError(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	default:
		h.logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		abortWithError(c, http.StatusInternalServerError, ErrCodeInternal, "internal error")
	}
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Success: false,
		Error:   &ErrorDetail{Code: code, Message: message},
	})
}
