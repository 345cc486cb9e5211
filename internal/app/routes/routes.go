package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/coursewatch/internal/app/controllers"
	"github.com/yigit/coursewatch/internal/middleware"
)

// Setup registers all routes on the engine.
func Setup(router *gin.Engine, dashboard *controllers.DashboardController) {
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.GET("/dashboard", dashboard.GetDashboard)
		api.GET("/dashboard/:semester", dashboard.GetSemester)
		api.GET("/sections/:id/history", dashboard.GetSectionHistory)
	}
}
