package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/mockmate/internal/models"
	"github.com/yoockh/mockmate/internal/services"
)

type SessionHandler struct {
	svc services.SessionService
}

func NewSessionHandler(svc services.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

type CreateSessionRequest struct {
	InterviewerID    string     `json:"interviewer_id" binding:"required"`
	Subject          string     `json:"subject" binding:"required"`
	ScheduledAt      *time.Time `json:"scheduled_at"`
	RecordingEnabled bool       `json:"recording_enabled"`
}

func (h *SessionHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "SessionHandler.Create", "invalid request body", err)
		return
	}

	view, err := h.svc.Create(c.Request.Context(), actor, services.CreateSessionInput{
		InterviewerID:    req.InterviewerID,
		Subject:          req.Subject,
		ScheduledAt:      req.ScheduledAt,
		RecordingEnabled: req.RecordingEnabled,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *SessionHandler) List(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	rows, err := h.svc.List(c.Request.Context(), actor, c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *SessionHandler) Get(c *gin.Context) {
	h.run(c, h.svc.Get)
}

func (h *SessionHandler) Accept(c *gin.Context) {
	h.run(c, h.svc.Accept)
}

func (h *SessionHandler) Reject(c *gin.Context) {
	h.run(c, h.svc.Reject)
}

func (h *SessionHandler) Start(c *gin.Context) {
	h.run(c, h.svc.Start)
}

func (h *SessionHandler) End(c *gin.Context) {
	h.run(c, h.svc.End)
}

type sessionOp func(ctx context.Context, actor models.Actor, sessionID string) (*models.SessionView, error)

func (h *SessionHandler) run(c *gin.Context, fn sessionOp) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	view, err := fn(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
