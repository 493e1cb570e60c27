package routes

import (
	"wardwatch-be/controllers"
	"wardwatch-be/middlewares"

	"github.com/gin-gonic/gin"
)

// WardRoutes sets up the ward directory and aggregation routes
func WardRoutes(r *gin.Engine) {
	ward := r.Group("/api/ward")
	{
		ward.GET("", controllers.ListWards)
		ward.GET("/:id/stats", middlewares.AuthMiddleware(), controllers.GetWardStats)
		ward.GET("/:id/summary", middlewares.AuthMiddleware(), controllers.GetWardSummary)
	}
}
