package routes

import (
	"net/http"

	"coinwatch/config"
	"coinwatch/controllers"
	"coinwatch/middleware"
	"coinwatch/services/pipeline"
	"coinwatch/services/store"

	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up all web routes
func SetupRoutes(router *gin.Engine, cfg *config.Config, users *store.UserStore, p *pipeline.Pipeline) {
	authController := controllers.NewAuthController(cfg, users)
	dashboardController := controllers.NewDashboardController(p)

	// Generated chart artifacts are served as static assets
	router.Static("/static", cfg.ArtifactDir)

	// Auth routes
	router.GET("/signup", authController.SignupPage)
	router.POST("/signup", authController.Signup)
	router.GET("/login", authController.LoginPage)
	router.POST("/login", authController.Login)
	router.GET("/logout", authController.Logout)

	// Dashboard (requires session)
	secured := router.Group("/")
	secured.Use(middleware.SessionAuth([]byte(cfg.SessionSecret)))
	{
		secured.GET("", dashboardController.Index)
		secured.POST("", dashboardController.Index)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Coinwatch is running",
		})
	})
}
