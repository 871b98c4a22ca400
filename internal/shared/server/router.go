package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"diagnostics-backend/internal/analytics"
	googleauth "diagnostics-backend/internal/auth"
	"diagnostics-backend/internal/flows"
	"diagnostics-backend/internal/notifications"
	"diagnostics-backend/internal/services/health"
	"diagnostics-backend/internal/sessions"
	"diagnostics-backend/internal/shared/config"
	"diagnostics-backend/internal/shared/metrics"
	"diagnostics-backend/internal/shared/server/middleware"
	"diagnostics-backend/internal/shared/server/respond"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config              config.Config
	FlowHandler         *flows.Handler
	SessionHandler      *sessions.Handler
	NotificationHandler *notifications.Handler
	AnalyticsHandler    *analytics.Handler
	GoogleAuth          *googleauth.GoogleService
	Health              *health.Service
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
			Rules: map[string]middleware.RateLimitRule{
				"SESSION_START": {Rate: 1, Burst: 10},
				"FLOW_WRITE":    {Rate: 0.5, Burst: 5},
			},
			GroupFor: func(c *gin.Context) string {
				switch {
				case c.Request.Method == http.MethodPost && c.Request.URL.Path == "/api/v1/diagnostics/sessions":
					return "SESSION_START"
				case c.Request.Method != http.MethodGet && strings.HasPrefix(c.Request.URL.Path, "/api/v1/flows"):
					return "FLOW_WRITE"
				}
				return ""
			},
		}),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		status := deps.Health.Status(c.Request.Context())
		code := http.StatusOK
		if ok, _ := status["ok"].(bool); !ok {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})
	api.GET("/metrics", metrics.Handler())

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	registerMeRoutes(api)
	if deps.FlowHandler != nil {
		deps.FlowHandler.RegisterRoutes(api)
	}
	if deps.SessionHandler != nil {
		deps.SessionHandler.RegisterRoutes(api)
	}
	if deps.NotificationHandler != nil {
		deps.NotificationHandler.RegisterRoutes(api)
	}
	if deps.AnalyticsHandler != nil {
		deps.AnalyticsHandler.RegisterRoutes(api)
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
