package handler

import (
	"sync"
	"time"

	"github.com/Kosench/shortlink/internal/cache"
	"github.com/Kosench/shortlink/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// RouterDeps - все зависимости HTTP слоя
type RouterDeps struct {
	Links     *LinkHandler
	Analytics *AnalyticsHandler
	Auth      *AuthHandler
	OAuth     *OAuthHandler
	Users     *UserHandler
	Health    *HealthHandler

	TokenParser    middleware.AccessTokenParser
	RateLimiter    cache.RateLimiter
	RateLimit      RateLimitConfig
	AllowedOrigins []string
	Logger         *zap.Logger
}

var registerTagNameOnce sync.Once

func registerJSONTagNames() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

// NewRouter собирает цепочки rate limit -> auth -> handler для всех маршрутов
func NewRouter(deps RouterDeps) *gin.Engine {
	registerTagNameOnce.Do(registerJSONTagNames)

	router := gin.New()
	router.Use(
		middleware.Recovery(deps.Logger),
		middleware.StructuredLogging(deps.Logger),
		middleware.PrometheusMetrics(),
		cors.New(cors.Config{
			AllowOrigins:     deps.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	limited := middleware.RateLimit(deps.RateLimiter, deps.RateLimit.Requests, deps.RateLimit.Window, deps.Logger)
	authenticated := middleware.Auth(deps.TokenParser)

	// Служебные эндпоинты
	router.GET("/health", deps.Health.Health)
	router.GET("/info", deps.Health.Info)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authGroup := router.Group("/auth", limited)
	{
		authGroup.POST("/register", deps.Auth.Register)
		authGroup.POST("/login", deps.Auth.Login)
		authGroup.POST("/refresh", deps.Auth.Refresh)
		authGroup.POST("/logout", deps.Auth.Logout)

		authGroup.GET("/providers", deps.OAuth.Providers)
		authGroup.GET("/:provider", deps.OAuth.Start)
		authGroup.GET("/:provider/callback", deps.OAuth.Callback)
	}

	router.POST("/shorten", limited, authenticated, deps.Links.Shorten)
	router.GET("/urls", authenticated, deps.Links.List)
	router.DELETE("/urls/:id", authenticated, deps.Links.Delete)
	router.GET("/analytics/:shortCode", authenticated, deps.Analytics.GetLinkAnalytics)

	users := router.Group("/users", authenticated)
	{
		users.GET("/me", deps.Users.GetProfile)
		users.PATCH("/me", deps.Users.UpdateProfile)
		users.DELETE("/me", deps.Users.DeleteAccount)
	}

	router.GET("/:shortCode", deps.Links.Redirect)

	return router
}
