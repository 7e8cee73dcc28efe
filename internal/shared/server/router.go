package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lexiguard-backend/internal/analyses"
	googleauth "lexiguard-backend/internal/auth"
	"lexiguard-backend/internal/chat"
	"lexiguard-backend/internal/history"
	"lexiguard-backend/internal/shared/auth"
	"lexiguard-backend/internal/shared/config"
	"lexiguard-backend/internal/shared/metrics"
	"lexiguard-backend/internal/shared/server/middleware"
	"lexiguard-backend/internal/shared/server/respond"
	"lexiguard-backend/internal/users"
)

// RouterDeps carries the handlers the router mounts. Nil handlers are skipped.
type RouterDeps struct {
	Config          config.Config
	Verifier        auth.Verifier
	Limiter         *middleware.RateLimiter
	AnalysisHandler *analyses.Handler
	ChatHandler     *chat.Handler
	HistoryHandler  *history.Handler
	UserHandler     *users.Handler
	GoogleAuth      *googleauth.GoogleService
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
	)

	r.GET("/", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"status": "ok", "message": "Welcome to the LexiGuard API!"})
	})
	r.GET("/metrics", metrics.Handler())

	limiter := deps.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(nil)
	}

	api := r.Group("/api")
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(api, middleware.RateLimit(middleware.RateLimitConfig{
			Rule:    middleware.PerMinute(deps.Config.RateLimitAnalyzePerMin),
			Group:   "analyze",
			Limiter: limiter,
		}))
	}
	if deps.ChatHandler != nil {
		deps.ChatHandler.RegisterRoutes(api, middleware.RateLimit(middleware.RateLimitConfig{
			Rule:    middleware.PerMinute(deps.Config.RateLimitChatPerMin),
			Group:   "chat",
			Limiter: limiter,
		}))
	}
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}

	protected := api.Group("")
	protected.Use(middleware.Auth(deps.Verifier))
	if deps.HistoryHandler != nil {
		deps.HistoryHandler.RegisterRoutes(protected)
	}
	if deps.UserHandler == nil {
		deps.UserHandler = users.NewHandler(nil)
	}
	deps.UserHandler.RegisterRoutes(protected)

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
