package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/mockmate/config"
	"github.com/yoockh/mockmate/internal/api/handlers"
	"github.com/yoockh/mockmate/internal/api/middleware"
)

type Deps struct {
	JWT config.JWTConfig

	Match   *handlers.MatchHandler
	Session *handlers.SessionHandler
	Note    *handlers.NoteHandler
	Profile *handlers.ProfileHandler
	WS      *handlers.WSHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Protected routes (JWT); every caller must carry an application role
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth(d.JWT), middleware.RequireAppRole())

	auth.GET("/match/interviewers", middleware.RequireInterviewee(), d.Match.FindInterviewers)

	auth.POST("/sessions", middleware.RequireInterviewee(), d.Session.Create)
	auth.GET("/sessions", d.Session.List)
	auth.GET("/sessions/:id", d.Session.Get)
	auth.PUT("/sessions/:id/accept", d.Session.Accept)
	auth.PUT("/sessions/:id/reject", d.Session.Reject)
	auth.PUT("/sessions/:id/start", d.Session.Start)
	auth.PUT("/sessions/:id/end", d.Session.End)

	auth.POST("/sessions/:id/notes", d.Note.Upsert)
	auth.GET("/sessions/:id/notes", d.Note.List)

	auth.POST("/profile", d.Profile.Register)
	auth.GET("/profile", d.Profile.Me)
	auth.PUT("/profile", d.Profile.Update)

	// WebSocket
	auth.GET("/ws/sessions", d.WS.SessionFeed)
}
