package api

import (
	"net/http"

	"github.com/abhishyantkhare/marathon-trainer/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	frontendURL string,
	authService service.AuthService,
	profileService service.ProfileService,
	planService service.PlanService,
) {

	authHandler := NewAuthHandler(authService, profileService, frontendURL)
	profileHandler := NewProfileHandler(profileService)
	planHandler := NewPlanHandler(planService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// --- Auth Routes ---
	authGroup := router.Group("/auth")
	{
		authGroup.GET("/strava", authHandler.StravaLogin)
		authGroup.GET("/strava/callback", authHandler.StravaCallback)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/me", authMiddleware, authHandler.Me)
	}

	// --- API Routes (authenticated) ---
	apiGroup := router.Group("/api")
	apiGroup.Use(authMiddleware)
	{
		profileGroup := apiGroup.Group("/profile")
		{
			profileGroup.POST("", profileHandler.UpsertProfile)
			profileGroup.GET("", profileHandler.GetProfile)
		}

		planGroup := apiGroup.Group("/training-plan")
		{
			planGroup.GET("", planHandler.GetPlan)
			planGroup.POST("/generate", planHandler.GeneratePlan)
			planGroup.GET("/export", planHandler.ExportPlan)
		}
	}
}
