package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"planner-backend-go/internal/core"
	"planner-backend-go/internal/middleware"
)

// Services bundles the core services the handlers depend on.
type Services struct {
	Auth        core.AuthService
	Planners    core.PlannerService
	Sections    core.SectionService
	Sharing     core.SharingService
	Activity    core.ActivityService
	AI          core.AIService
	Export      core.ExportService
	Handwriting core.HandwritingService
}

// RouteMiddleware carries the middleware that routes are wrapped in.
// APILimit applies to every /api route; AuthLimit additionally guards the
// public sign-in endpoints.
type RouteMiddleware struct {
	Auth      *middleware.AuthMiddleware
	APILimit  gin.HandlerFunc
	AuthLimit gin.HandlerFunc
}

// SetupRoutes configures all the application routes. Global middleware
// (request id, logging, recovery, CORS) is applied to router by the caller.
func SetupRoutes(router *gin.Engine, svc Services, mw RouteMiddleware, logger *zap.Logger) {
	authHandler := NewAuthHandler(svc.Auth)
	plannerHandler := NewPlannerHandler(svc.Planners)
	sectionHandler := NewSectionHandler(svc.Sections)
	sharingHandler := NewSharingHandler(svc.Sharing)
	activityHandler := NewActivityHandler(svc.Activity)
	aiHandler := NewAIHandler(svc.AI)
	exportHandler := NewExportHandler(svc.Export)
	handwritingHandler := NewHandwritingHandler(svc.Handwriting)

	requireAuth := mw.Auth.VerifyToken()

	apiV1 := router.Group("/api/v1")
	if mw.APILimit != nil {
		apiV1.Use(mw.APILimit)
	}
	{
		authGroup := apiV1.Group("/auth")
		{
			public := authGroup.Group("")
			if mw.AuthLimit != nil {
				public.Use(mw.AuthLimit)
			}
			public.POST("/register", authHandler.Register)
			public.POST("/login", authHandler.Login)
			public.POST("/google", authHandler.Google)
			public.POST("/apple", authHandler.Apple)
			public.POST("/refresh", authHandler.Refresh)

			authGroup.GET("/me", requireAuth, authHandler.Me)
			authGroup.POST("/logout", requireAuth, authHandler.Logout)
			authGroup.PUT("/profile", requireAuth, authHandler.UpdateProfile)
			authGroup.PUT("/password", requireAuth, authHandler.ChangePassword)
			authGroup.DELETE("/account", requireAuth, authHandler.DeleteAccount)
		}

		planners := apiV1.Group("/planners", requireAuth)
		{
			planners.GET("", plannerHandler.ListPlanners)
			planners.POST("", plannerHandler.CreatePlanner)
			planners.GET("/date/:date", plannerHandler.ListPlannersForDate)
			planners.GET("/:id", plannerHandler.GetPlanner)
			planners.PUT("/:id", plannerHandler.UpdatePlanner)
			planners.DELETE("/:id", plannerHandler.DeletePlanner)
			planners.POST("/:id/duplicate", plannerHandler.DuplicatePlanner)
			planners.PUT("/:id/default", plannerHandler.SetDefault)
			planners.PUT("/:id/archive", plannerHandler.ArchivePlanner)
			planners.PUT("/:id/restore", plannerHandler.RestorePlanner)
		}

		sections := apiV1.Group("/sections", requireAuth)
		{
			sections.PUT("/reorder", sectionHandler.Reorder)
			sections.PUT("/bulk-update", sectionHandler.BulkUpdate)
			sections.GET("/planner/:plannerId/date/:date", sectionHandler.ListByDate)
			sections.GET("/planner/:plannerId/range", sectionHandler.ListInRange)
			sections.GET("/planner/:plannerId/type/:type", sectionHandler.ListByType)
			sections.POST("/planner/:plannerId", sectionHandler.CreateSection)
			sections.GET("/:id", sectionHandler.GetSection)
			sections.PUT("/:id", sectionHandler.UpdateSection)
			sections.DELETE("/:id", sectionHandler.DeleteSection)
			sections.PUT("/:id/collapse", sectionHandler.ToggleCollapse)
			sections.POST("/:id/duplicate", sectionHandler.DuplicateSection)
		}

		sharing := apiV1.Group("/sharing", requireAuth)
		{
			sharing.POST("/planner/:plannerId", sharingHandler.SharePlanner)
			sharing.GET("/planner/:plannerId", sharingHandler.ListShares)
			sharing.POST("/planner/:plannerId/leave", sharingHandler.LeavePlanner)
			sharing.GET("/invitations", sharingHandler.PendingInvitations)
			sharing.GET("/shared-with-me", sharingHandler.SharedWithMe)
			sharing.PUT("/:shareId/permission", sharingHandler.UpdatePermission)
			sharing.DELETE("/:shareId", sharingHandler.RemoveShare)
			sharing.POST("/:shareId/accept", sharingHandler.AcceptInvitation)
			sharing.POST("/:shareId/reject", sharingHandler.RejectInvitation)
		}

		activity := apiV1.Group("/activity", requireAuth)
		{
			activity.GET("/planner/:plannerId", activityHandler.PlannerActivity)
			activity.DELETE("/planner/:plannerId", activityHandler.ClearPlannerActivity)
			activity.GET("/user", activityHandler.UserActivity)
			activity.GET("/:activityId", activityHandler.GetActivity)
		}

		ai := apiV1.Group("/ai", requireAuth)
		{
			ai.POST("/chat", aiHandler.Chat)
			ai.GET("/chat/history/:plannerId", aiHandler.ChatHistory)
			ai.DELETE("/chat/history/:plannerId", aiHandler.ClearChatHistory)
			ai.POST("/suggest-meals", aiHandler.SuggestMeals)
			ai.POST("/generate-schedule", aiHandler.GenerateSchedule)
			ai.POST("/analyze-habits", aiHandler.AnalyzeHabits)
			ai.POST("/suggest-tasks", aiHandler.SuggestTasks)
			ai.POST("/generate-goals", aiHandler.GenerateGoals)
			ai.POST("/provide-feedback", aiHandler.ProvideFeedback)
		}

		exports := apiV1.Group("/export", requireAuth)
		{
			exports.POST("/pdf/planner/:plannerId", exportHandler.ExportPlannerPDF)
			exports.POST("/pdf/date-range", exportHandler.ExportDateRangePDF)
			exports.GET("/status/:exportId", exportHandler.ExportStatus)
			exports.GET("/download/:exportId", exportHandler.DownloadExport)
			exports.POST("/calendar/:plannerId", exportHandler.ExportCalendar)
		}

		handwriting := apiV1.Group("/handwriting", requireAuth)
		{
			handwriting.POST("/convert", handwritingHandler.Convert)
			handwriting.POST("/save", handwritingHandler.Save)
			handwriting.GET("/:id", handwritingHandler.Get)
			handwriting.DELETE("/:id", handwritingHandler.Delete)
		}
	}

	started := time.Now()
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"uptime":    time.Since(started).Seconds(),
		})
	})

	router.NoRoute(func(c *gin.Context) {
		respondFailure(c, http.StatusNotFound, "Resource not found", nil)
	})

	logger.Info("API routes configured under /api/v1 and /health")
}
