package autoapply

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"autoapply-backend/internal/shared/server/middleware"
	"autoapply-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches auto-apply routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auto-apply/queue", h.listQueue)
	rg.GET("/auto-apply/queue/:id", h.getEntry)
	rg.POST("/auto-apply/run", h.run)
	rg.POST("/auto-apply/queue/:id/submitted", h.markSubmitted)
	rg.POST("/auto-apply/queue/:id/cancel", h.cancel)
	rg.POST("/auto-apply/queue/:id/retry", h.retry)
	rg.GET("/auto-apply/log", h.listLog)
}

func (h *Handler) listQueue(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	limit, offset := pagination(c, 20)

	entries, err := h.Svc.ListQueue(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list queue", nil)
		return
	}
	if entries == nil {
		entries = []QueueEntry{}
	}

	respond.JSON(c, http.StatusOK, entries)
}

func (h *Handler) getEntry(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	entry, err := h.Svc.GetEntry(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "queue entry not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch queue entry", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, entry)
}

func (h *Handler) run(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	stats, err := h.Svc.Run(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "auto-apply run failed", nil)
		return
	}

	respond.JSON(c, http.StatusOK, stats)
}

func (h *Handler) markSubmitted(c *gin.Context) {
	h.applyTransition(c, func(userID, entryID string) (QueueEntry, error) {
		return h.Svc.MarkSubmitted(c.Request.Context(), userID, entryID)
	})
}

func (h *Handler) cancel(c *gin.Context) {
	h.applyTransition(c, func(userID, entryID string) (QueueEntry, error) {
		return h.Svc.Cancel(c.Request.Context(), userID, entryID)
	})
}

func (h *Handler) retry(c *gin.Context) {
	h.applyTransition(c, func(userID, entryID string) (QueueEntry, error) {
		return h.Svc.Retry(c.Request.Context(), userID, entryID)
	})
}

func (h *Handler) applyTransition(c *gin.Context, fn func(userID, entryID string) (QueueEntry, error)) {
	userID := middleware.UserIDFromContext(c)

	entry, err := fn(userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "queue entry not found", nil)
		case errors.Is(err, ErrInvalidTransition):
			respond.Error(c, http.StatusConflict, "invalid_transition", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update queue entry", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, entry)
}

func (h *Handler) listLog(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	limit, offset := pagination(c, 50)

	entries, err := h.Svc.ListLog(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list action log", nil)
		return
	}
	if entries == nil {
		entries = []ActionLog{}
	}

	respond.JSON(c, http.StatusOK, entries)
}

func pagination(c *gin.Context, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
