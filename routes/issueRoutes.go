package routes

import (
	"wardwatch-be/config"
	"wardwatch-be/controllers"
	"wardwatch-be/middlewares"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the issue routes
func IssueRoutes(r *gin.Engine) {
	issue := r.Group("/api/issue")
	{
		issue.POST("/create",
			middlewares.AuthMiddleware(),
			middlewares.IssueRateLimiter(config.Get().DailyReportLimit),
			controllers.CreateIssue)
		issue.GET("", middlewares.AuthMiddleware(), controllers.GetAllIssues)
		issue.GET("/mine", middlewares.AuthMiddleware(), controllers.GetIssuesByUser)
		issue.GET("/recent", controllers.RecentIssues)
		issue.GET("/analytics", middlewares.AuthMiddleware(), controllers.GetIssueAnalytics)
		issue.GET("/stream", middlewares.AuthMiddleware(), controllers.StreamIssues)
		issue.GET("/:id", middlewares.AuthMiddleware(), controllers.GetIssue)
		issue.PATCH("/:id/status", middlewares.AuthMiddleware(), middlewares.RequireAuthority(), controllers.UpdateIssueStatus)
		issue.POST("/:id/upvote", middlewares.AuthMiddleware(), controllers.ToggleUpvote)
		issue.DELETE("/:id", middlewares.AuthMiddleware(), middlewares.RequireAuthority(), controllers.DeleteIssue)
	}
}
