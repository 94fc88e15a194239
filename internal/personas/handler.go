package personas

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

// RegisterRoutes attaches persona routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/personas", h.create)
	rg.GET("/personas", h.list)
	rg.GET("/personas/:id", h.get)
	rg.PUT("/personas/:id", h.update)
	rg.DELETE("/personas/:id", h.remove)
}

type personaRequest struct {
	Name     string  `json:"name"`
	Headline string  `json:"headline"`
	ResumeID *string `json:"resumeId"`
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req personaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	persona, err := h.Svc.Create(c.Request.Context(), userID, CreateInput{
		Name:     req.Name,
		Headline: req.Headline,
		ResumeID: req.ResumeID,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create persona", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, persona)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	personas, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list personas", nil)
		return
	}
	if personas == nil {
		personas = []Persona{}
	}

	respond.JSON(c, http.StatusOK, personas)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	persona, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "persona not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch persona", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, persona)
}

func (h *Handler) update(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req personaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	persona, err := h.Svc.Update(c.Request.Context(), userID, c.Param("id"), CreateInput{
		Name:     req.Name,
		Headline: req.Headline,
		ResumeID: req.ResumeID,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "persona not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update persona", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, persona)
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "persona not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete persona", nil)
		}
		return
	}

	c.Status(http.StatusNoContent)
}
