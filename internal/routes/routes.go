package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/authz"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/handlers"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	verifyHandler *handlers.VerifyHandler,
	taskHandler *handlers.TaskHandler,
	submissionHandler *handlers.SubmissionHandler,
	leaderboardHandler *handlers.LeaderboardHandler,
	uploadHandler *handlers.UploadHandler,
	reportHandler *handlers.ReportHandler,
) *gin.Engine {

	// ---- public
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.POST("/login", authHandler.Login)
	r.POST("/refresh", authHandler.RefreshToken)
	r.POST("/register", userHandler.Register)
	r.POST("/register/confirm", verifyHandler.ConfirmUser)
	r.POST("/register/resend", verifyHandler.ResendUser)

	// ---- protected
	r.Use(middleware.AuthMiddleware())

	r.GET("/users/me", userHandler.Me)

	// TASKS: everyone reads, admins mutate
	tasks := r.Group("/tasks")
	{
		tasks.GET("/", taskHandler.List)
		tasks.GET("/:id", taskHandler.GetByID)

		admin := tasks.Group("", middleware.RequireRoles(authz.RoleAdmin))
		{
			admin.POST("/", taskHandler.Create)
			admin.PUT("/:id", taskHandler.Update)
			admin.POST("/:id/visibility", taskHandler.SetVisibility)
		}
	}

	// SUBMISSIONS
	subs := r.Group("/submissions")
	{
		subs.GET("/", submissionHandler.List)
		subs.GET("/preview", submissionHandler.Preview)
		subs.POST("/", submissionHandler.Create)
		subs.DELETE("/:id", submissionHandler.Delete)

		admin := subs.Group("", middleware.RequireRoles(authz.RoleAdmin))
		{
			admin.POST("/:id/approve", submissionHandler.Approve)
			admin.POST("/:id/reject", submissionHandler.Reject)
		}
	}

	// LEADERBOARD
	r.GET("/leaderboard", leaderboardHandler.Get)

	// EVIDENCE UPLOADS
	uploads := r.Group("/uploads")
	{
		uploads.POST("/", uploadHandler.Upload)
		uploads.GET("/*ref", middleware.RequireRoles(authz.RoleAdmin), uploadHandler.Serve)
	}

	// REPORTS (admin)
	reports := r.Group("/reports", middleware.RequireRoles(authz.RoleAdmin))
	{
		reports.GET("/leaderboard", reportHandler.Leaderboard)
		reports.GET("/submissions", reportHandler.Submissions)
	}

	return r
}
