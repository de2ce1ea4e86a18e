package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pawangupta079/skill-hire/pkg/model"
	"github.com/pawangupta079/skill-hire/pkg/response"
)

func (app *application) routes() http.Handler {
	if app.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(app.RequestLogger())
	r.Use(app.CORSMiddleware())

	r.GET("/healthz", app.healthz)
	r.GET("/ws", app.AuthMiddleware(), app.Handler.ServeWS)

	h := app.Handler
	recruiters := app.RequireRole(model.UserTypeRecruiter, model.UserTypeAdmin)
	admins := app.RequireRole(model.UserTypeAdmin)

	api := r.Group("/api")
	api.Use(app.RateLimitMiddleware())
	{
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)

		api.GET("/jobs", h.ListJobs)
		api.GET("/jobs/search/suggestions", h.JobSuggestions)
	}

	protected := api.Group("/")
	protected.Use(app.AuthMiddleware())
	{
		protected.GET("/auth/me", h.Me)

		// user routes
		protected.GET("/users/profile", h.Me)
		protected.PUT("/users/profile", h.UpdateProfile)
		protected.GET("/users/:id", h.GetUser)
		protected.GET("/users", admins, h.ListUsers)
		protected.PUT("/users/:id/status", admins, h.SetUserStatus)

		// job routes
		protected.GET("/jobs/my-jobs", recruiters, h.MyJobs)
		protected.POST("/jobs", recruiters, h.CreateJob)
		protected.PUT("/jobs/:id", recruiters, h.UpdateJob)
		protected.PUT("/jobs/:id/status", recruiters, h.SetJobStatus)
		protected.DELETE("/jobs/:id", recruiters, h.DeleteJob)

		// application routes
		protected.POST("/applications", app.RequireRole(model.UserTypeCandidate), h.SubmitApplication)
		protected.GET("/applications/my-applications", app.RequireRole(model.UserTypeCandidate), h.MyApplications)
		protected.GET("/applications/dashboard/stats", h.DashboardStats)
		protected.GET("/applications/job/:jobId", recruiters, h.JobApplications)
		protected.GET("/applications/:id", h.GetApplication)
		protected.PUT("/applications/:id/status", recruiters, h.UpdateApplicationStatus)
		protected.PUT("/applications/:id/withdraw", h.WithdrawApplication)
		protected.POST("/applications/:id/notes", h.AddApplicationNote)
		protected.POST("/applications/:id/interview", recruiters, h.ScheduleInterview)
		protected.POST("/applications/:id/communications", h.AddCommunication)

		// chat routes
		protected.POST("/chat/room", h.OpenRoom)
		protected.GET("/chat/rooms", h.ListRooms)
		protected.GET("/chat/room/:roomId/messages", h.ListMessages)
		protected.POST("/chat/room/:roomId/messages", h.SendMessage)
		protected.POST("/chat/room/:roomId/messages/:messageId/read", h.MarkRead)
		protected.PUT("/chat/messages/:messageId", h.EditMessage)
		protected.DELETE("/chat/messages/:messageId", h.DeleteMessage)
		protected.GET("/chat/unread-count", h.UnreadCount)
	}

	api.GET("/jobs/:id", app.OptionalAuthMiddleware(), h.GetJob)

	return r
}

func (app *application) healthz(c *gin.Context) {
	ctx := c.Request.Context()
	if app.DB != nil {
		if err := app.DB.Ping(ctx); err != nil {
			app.Logger.Sugar().Errorw("health check: database", "err", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	if app.Redis != nil {
		if err := app.Redis.Ping(ctx).Err(); err != nil {
			app.Logger.Sugar().Errorw("health check: redis", "err", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	response.OK(c, gin.H{"status": "ok"})
}
