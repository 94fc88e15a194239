package jobs

import (
	"errors"
	"net/http"
	"strconv"
	"time"

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

// RegisterRoutes attaches job and match routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/jobs", h.ingest)
	rg.GET("/jobs", h.list)
	rg.GET("/jobs/:id", h.get)
	rg.POST("/matches", h.recordMatch)
	rg.GET("/matches", h.listMatches)
}

type ingestRequest struct {
	ExternalURL string    `json:"externalUrl"`
	Company     string    `json:"company"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Source      string    `json:"source"`
	PostedAt    time.Time `json:"postedAt"`
}

func (h *Handler) ingest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	job, created, err := h.Svc.Ingest(c.Request.Context(), IngestInput{
		ExternalURL: req.ExternalURL,
		Company:     req.Company,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Source:      req.Source,
		PostedAt:    req.PostedAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to ingest job", nil)
		}
		return
	}
	if !created {
		respond.JSON(c, http.StatusOK, gin.H{"duplicate": true})
		return
	}

	respond.JSON(c, http.StatusCreated, job)
}

func (h *Handler) list(c *gin.Context) {
	limit, offset := pagination(c, 20)

	jobsList, err := h.Svc.ListRecent(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list jobs", nil)
		return
	}
	if jobsList == nil {
		jobsList = []Job{}
	}

	respond.JSON(c, http.StatusOK, jobsList)
}

func (h *Handler) get(c *gin.Context) {
	job, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch job", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, job)
}

type recordMatchRequest struct {
	PersonaID  string `json:"personaId"`
	JobID      string `json:"jobId"`
	MatchScore *int   `json:"matchScore"`
}

func (h *Handler) recordMatch(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req recordMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.PersonaID == "" || req.JobID == "" || req.MatchScore == nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "personaId, jobId and matchScore are required", nil)
		return
	}

	match, err := h.Svc.RecordMatch(c.Request.Context(), userID, req.PersonaID, req.JobID, *req.MatchScore)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to record match", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, match)
}

func (h *Handler) listMatches(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	limit, offset := pagination(c, 20)

	matches, err := h.Svc.ListMatches(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list matches", nil)
		return
	}
	if matches == nil {
		matches = []Match{}
	}

	respond.JSON(c, http.StatusOK, matches)
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
