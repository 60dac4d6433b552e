package routes

import (
	"habitflow/internal/controller"
	"habitflow/internal/middleware"

	"github.com/gin-gonic/gin"
)

func Router(ctl *controller.Controller) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// Health for load balancers and K8s probes
	router.GET("/health", ctl.Health)
	router.GET("/ready", ctl.Ready)

	// Public: no auth
	auth := router.Group("/api/auth")
	{
		auth.POST("/register", ctl.Register)
		auth.POST("/login", ctl.Login)
		auth.POST("/reset-password", ctl.ResetPassword)
	}

	// Protected: JWT required
	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		api.GET("/habits", ctl.ListHabits)
		api.POST("/habits", ctl.CreateHabit)
		api.PUT("/habits/:id", ctl.UpdateHabit)
		api.DELETE("/habits/:id", ctl.DeleteHabit)
		api.POST("/habits/:id/complete", ctl.CompleteHabit)
		api.GET("/habits/:id/completion", ctl.HabitCompletion)
		api.GET("/habit-logs", ctl.Logs)
		api.GET("/today-progress", ctl.TodayProgress)
		api.GET("/stream", ctl.Stream)
	}

	return router
}
