package rules

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

// RegisterRoutes attaches rule routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/rules", h.create)
	rg.GET("/rules", h.list)
	rg.GET("/rules/:id", h.get)
	rg.PUT("/rules/:id", h.update)
	rg.PATCH("/rules/:id/enabled", h.setEnabled)
	rg.DELETE("/rules/:id", h.remove)
}

type ruleRequest struct {
	Name                   string   `json:"name"`
	PersonaID              *string  `json:"personaId"`
	MatchScoreThreshold    *int     `json:"matchScoreThreshold"`
	MaxApplicationsPerWeek *int     `json:"maxApplicationsPerWeek"`
	ExcludeCompanies       []string `json:"excludeCompanies"`
	IncludeOnlyCompanies   []string `json:"includeOnlyCompanies"`
	RequireAllKeywords     []string `json:"requireAllKeywords"`
	ActiveDays             []string `json:"activeDays"`
	Enabled                bool     `json:"enabled"`
}

func (req ruleRequest) toInput() CreateInput {
	return CreateInput{
		Name:                   req.Name,
		PersonaID:              req.PersonaID,
		MatchScoreThreshold:    req.MatchScoreThreshold,
		MaxApplicationsPerWeek: req.MaxApplicationsPerWeek,
		ExcludeCompanies:       req.ExcludeCompanies,
		IncludeOnlyCompanies:   req.IncludeOnlyCompanies,
		RequireAllKeywords:     req.RequireAllKeywords,
		ActiveDays:             req.ActiveDays,
		Enabled:                req.Enabled,
	}
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req ruleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	rule, err := h.Svc.Create(c.Request.Context(), userID, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create rule", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, rule)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	rules, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list rules", nil)
		return
	}
	if rules == nil {
		rules = []AutoApplyRule{}
	}

	respond.JSON(c, http.StatusOK, rules)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	rule, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "rule not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch rule", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, rule)
}

func (h *Handler) update(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req ruleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	rule, err := h.Svc.Update(c.Request.Context(), userID, c.Param("id"), req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "rule not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update rule", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, rule)
}

type setEnabledRequest struct {
	Enabled *bool `json:"enabled"`
}

func (h *Handler) setEnabled(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req setEnabledRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Enabled == nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "enabled is required", nil)
		return
	}

	rule, err := h.Svc.SetEnabled(c.Request.Context(), userID, c.Param("id"), *req.Enabled)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "rule not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update rule", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, rule)
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "rule not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete rule", nil)
		}
		return
	}

	c.Status(http.StatusNoContent)
}
