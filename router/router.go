package router

import (
	"github.com/NomadCrew/cats-backend/config"
	"github.com/NomadCrew/cats-backend/handlers"
	"github.com/NomadCrew/cats-backend/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies struct holds all dependencies required for setting up routes.
type Dependencies struct {
	Config        *config.Config
	JWTValidator  middleware.Validator
	HealthHandler *handlers.HealthHandler
	// CatHandler and UserHandler are nil when the database is disabled.
	CatHandler  *handlers.CatHandler
	UserHandler *handlers.UserHandler
	// Redis backs rate limiting. Nil disables it.
	Redis redis.Cmdable
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	cfg := deps.Config

	// Global Middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.APIVersion(cfg.Server.Version))
	r.Use(middleware.SecurityHeadersMiddleware(cfg))
	r.Use(middleware.CORSMiddleware(cfg.Server))
	r.Use(middleware.ErrorHandler())

	// Health and Metrics Routes
	r.GET("/status", deps.HealthHandler.Status)
	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if !cfg.Database.Enabled || deps.CatHandler == nil || deps.UserHandler == nil {
		return r
	}

	authMiddleware := middleware.AuthMiddleware(deps.JWTValidator)
	var apiLimit, authLimit gin.HandlerFunc = passThrough, passThrough
	if deps.Redis != nil {
		window := cfg.RateLimit.Window()
		apiLimit = middleware.APIRateLimiter(deps.Redis, cfg.RateLimit.RequestsPerMinute, window)
		authLimit = middleware.AuthRateLimiter(deps.Redis, cfg.RateLimit.AuthRequestsPerMinute, window)
	}

	// User Routes
	users := r.Group("/users")
	{
		users.POST("", authLimit, deps.UserHandler.Register)
		users.POST("/authenticate", authLimit, deps.UserHandler.Authenticate)
		users.GET("/me", authMiddleware, apiLimit, deps.UserHandler.Me)
	}

	// Versioned API Group (v1)
	v1 := r.Group("/v1")
	v1.Use(authMiddleware, apiLimit)
	{
		cats := v1.Group("/cats")
		{
			cats.POST("", deps.CatHandler.CreateCat)
			cats.GET("", deps.CatHandler.ListCats)
			cats.GET("/stats", deps.CatHandler.CatStats)
			cats.GET("/:id", deps.CatHandler.GetCat)
			cats.PUT("/:id", deps.CatHandler.UpdateCat)
			cats.DELETE("/:id", deps.CatHandler.DeleteCat)
		}
	}

	return r
}

func passThrough(c *gin.Context) {
	c.Next()
}
