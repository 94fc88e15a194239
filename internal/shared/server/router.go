package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	googleauth "autoapply-backend/internal/auth"
	"autoapply-backend/internal/autoapply"
	"autoapply-backend/internal/generate"
	"autoapply-backend/internal/jobs"
	"autoapply-backend/internal/personas"
	"autoapply-backend/internal/resumes"
	"autoapply-backend/internal/rules"
	"autoapply-backend/internal/shared/config"
	"autoapply-backend/internal/shared/metrics"
	"autoapply-backend/internal/shared/server/middleware"
	"autoapply-backend/internal/shared/server/respond"
	"autoapply-backend/internal/users"
)

// RouterDeps carries the handlers the router mounts. Nil handlers are
// skipped so partial wiring (workers, tests) stays cheap.
type RouterDeps struct {
	Config           config.Config
	RulesHandler     *rules.Handler
	PersonasHandler  *personas.Handler
	ResumesHandler   *resumes.Handler
	JobsHandler      *jobs.Handler
	AutoApplyHandler *autoapply.Handler
	GenerateHandler  *generate.Handler
	UsersHandler     *users.Handler
	GoogleAuth       *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
		middleware.RateLimit(middleware.RateLimitConfig{
			// Queue status polling gets a looser budget than mutations.
			GroupFor: func(c *gin.Context) string {
				if c.Request.Method == http.MethodGet && c.FullPath() == "/api/v1/auto-apply/queue/:id" {
					return "POLLING"
				}
				return "DEFAULT"
			},
			Rules: map[string]middleware.RateLimitRule{
				"DEFAULT": {Rate: 5, Burst: 20},
				"POLLING": {Rate: 20, Burst: 60},
			},
		}),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UsersHandler != nil {
		deps.UsersHandler.RegisterRoutes(api)
	}
	if deps.RulesHandler != nil {
		deps.RulesHandler.RegisterRoutes(api)
	}
	if deps.PersonasHandler != nil {
		deps.PersonasHandler.RegisterRoutes(api)
	}
	if deps.ResumesHandler != nil {
		deps.ResumesHandler.RegisterRoutes(api)
	}
	if deps.JobsHandler != nil {
		deps.JobsHandler.RegisterRoutes(api)
	}
	if deps.AutoApplyHandler != nil {
		deps.AutoApplyHandler.RegisterRoutes(api)
	}
	if deps.GenerateHandler != nil {
		deps.GenerateHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
