package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/mockmate/internal/services"
)

type NoteHandler struct {
	svc services.NoteService
}

func NewNoteHandler(svc services.NoteService) *NoteHandler {
	return &NoteHandler{svc: svc}
}

type UpsertNoteRequest struct {
	Content string `json:"content"`
}

// Upsert creates or replaces the caller's note on the session.
func (h *NoteHandler) Upsert(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req UpsertNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "NoteHandler.Upsert", "invalid request body", err)
		return
	}

	note, err := h.svc.Upsert(c.Request.Context(), actor, c.Param("id"), req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (h *NoteHandler) List(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	notes, err := h.svc.List(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": c.Param("id"),
		"notes":      notes,
	})
}
