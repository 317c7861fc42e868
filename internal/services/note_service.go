package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yoockh/mockmate/internal/models"
	pgrepo "github.com/yoockh/mockmate/internal/repositories/postgres"
	"github.com/yoockh/mockmate/internal/utils"
)

// SessionAuthorizer resolves a session the user is bound to, failing with
// NOT_FOUND or FORBIDDEN otherwise.
type SessionAuthorizer interface {
	Authorize(ctx context.Context, userID, sessionID string) (*models.Session, error)
}

type NoteService interface {
	Upsert(ctx context.Context, actor models.Actor, sessionID, content string) (*models.NoteView, error)
	List(ctx context.Context, actor models.Actor, sessionID string) ([]models.NoteView, error)
}

type noteService struct {
	notes     pgrepo.NoteRepository
	sessions  SessionAuthorizer
	directory DirectoryService
	maxBytes  int
	now       func() time.Time
}

// NewNoteService limits note content to maxBytes; 0 disables the limit.
func NewNoteService(notes pgrepo.NoteRepository, sessions SessionAuthorizer, directory DirectoryService, maxBytes int) NoteService {
	return &noteService{
		notes:     notes,
		sessions:  sessions,
		directory: directory,
		maxBytes:  maxBytes,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *noteService) Upsert(ctx context.Context, actor models.Actor, sessionID, content string) (*models.NoteView, error) {
	const op = "NoteService.Upsert"

	if _, err := s.sessions.Authorize(ctx, actor.UserID, sessionID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "content is required", nil)
	}
	if s.maxBytes > 0 && len(content) > s.maxBytes {
		return nil, utils.E(utils.CodeInvalidArgument, op, "content is too long", nil)
	}

	now := s.now()
	stored, err := s.notes.Upsert(ctx, &models.Note{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		AuthorID:  actor.UserID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save note", err)
	}

	users, err := s.directory.GetMany(ctx, []string{actor.UserID})
	if err != nil {
		return nil, err
	}
	return &models.NoteView{Note: *stored, Author: models.ProfileOf(users[actor.UserID])}, nil
}

func (s *noteService) List(ctx context.Context, actor models.Actor, sessionID string) ([]models.NoteView, error) {
	const op = "NoteService.List"

	sess, err := s.sessions.Authorize(ctx, actor.UserID, sessionID)
	if err != nil {
		return nil, err
	}

	rows, err := s.notes.ListBySession(ctx, sess.ID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list notes", err)
	}

	users, err := s.directory.GetMany(ctx, []string{sess.IntervieweeID, sess.InterviewerID})
	if err != nil {
		return nil, err
	}

	out := make([]models.NoteView, 0, len(rows))
	for _, n := range rows {
		out = append(out, models.NoteView{Note: n, Author: models.ProfileOf(users[n.AuthorID])})
	}
	return out, nil
}
