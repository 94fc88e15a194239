package generate

import (
	"errors"
	"net/http"

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

// RegisterRoutes attaches generation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/generate/answers", h.answers)
}

type answersRequest struct {
	PersonaID string   `json:"personaId"`
	JobID     string   `json:"jobId"`
	Questions []string `json:"questions"`
}

func (h *Handler) answers(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req answersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.PersonaID == "" || req.JobID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "personaId and jobId are required", nil)
		return
	}

	raw, err := h.Svc.ForApplication(c.Request.Context(), userID, req.PersonaID, req.JobID, req.Questions)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", err.Error(), nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrNotImplemented):
			respond.Error(c, http.StatusServiceUnavailable, "llm_unavailable", "generation is not configured", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "generation failed", nil)
		}
		return
	}

	c.Data(http.StatusOK, "application/json", raw)
}
