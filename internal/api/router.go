package api

import (
	"github.com/gin-gonic/gin"

	"dealscope/internal/config"
	"dealscope/pkg/ratelimiter"
)

// SetupRouter builds the Gin engine with every route group wired. The rate
// limiter guards only the LLM-backed routes; CRUD traffic is never throttled.
func SetupRouter(h *Handler, cfg *config.AppConfig) *gin.Engine {
	r := gin.Default()

	authMiddleware := AuthMiddleware(cfg.Auth.JwtSecret)

	apiV1 := r.Group("/api/v1")
	{
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
		}

		sessions := apiV1.Group("/sessions")
		sessions.Use(authMiddleware)
		{
			sessions.POST("", h.CreateSession)
			sessions.GET("", h.ListSessions)
			sessions.GET("/:id", h.GetSession)
			sessions.DELETE("/:id", h.DeleteSession)
			sessions.PUT("/:id/data", h.SaveSessionData)
			sessions.GET("/:id/data", h.LoadSessionData)
			sessions.GET("/:id/companies/search", h.SearchCompanies)
		}

		uploads := apiV1.Group("/uploads")
		uploads.Use(authMiddleware)
		{
			uploads.POST("", h.CreateUpload)
			uploads.GET("", h.ListUploads)
			uploads.GET("/:id", h.GetUpload)
			uploads.PUT("/:id", h.UpdateUpload)
			uploads.GET("/:id/file", h.DownloadUploadFile)
			uploads.DELETE("/:id", h.DeleteUpload)
		}

		llmRoutes := apiV1.Group("")
		llmRoutes.Use(authMiddleware)
		if cfg.RateLimiter.Enabled {
			limiter := ratelimiter.NewTokenBucket(cfg.RateLimiter.Rate, cfg.RateLimiter.Capacity)
			llmRoutes.Use(RateLimitMiddleware(limiter))
		}
		{
			llmRoutes.POST("/analyze", h.Analyze)
			llmRoutes.POST("/chat", h.Chat)
		}

		secdata := apiV1.Group("/secdata")
		secdata.Use(authMiddleware)
		{
			secdata.GET("/companyfacts/:cik", h.SECCompanyFacts)
			secdata.GET("/companyconcept/:cik/:taxonomy/:tag", h.SECCompanyConcept)
			secdata.GET("/submissions/:cik", h.SECSubmissions)
		}
	}

	return r
}
