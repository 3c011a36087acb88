package routes

import (
	"citizenreport/config"
	"citizenreport/controllers"
	"citizenreport/middlewares"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the issue, comment, and admin routes
func IssueRoutes(r *gin.Engine) {
	cfg := config.Load()

	issue := r.Group("/api/issues")
	{
		issue.POST("", middlewares.AuthMiddleware(), middlewares.SubmitRateLimiter(cfg.SubmitDailyLimit), controllers.SubmitIssue)
		issue.GET("", middlewares.OptionalAuthMiddleware(), controllers.GetAllIssues)
		issue.GET("/recent", controllers.RecentIssues)
		issue.GET("/:id", middlewares.OptionalAuthMiddleware(), controllers.GetIssue)
		issue.PATCH("/:id/status", middlewares.AuthMiddleware(), controllers.UpdateIssueStatus)

		issue.GET("/:id/comments", middlewares.OptionalAuthMiddleware(), controllers.GetComments)
		issue.POST("/:id/comments", middlewares.AuthMiddleware(), controllers.AddComment)
	}

	r.POST("/api/locate", controllers.Locate)

	admin := r.Group("/api/admin")
	{
		admin.GET("/summary", middlewares.AuthMiddleware(), controllers.AdminSummary)
	}
}
