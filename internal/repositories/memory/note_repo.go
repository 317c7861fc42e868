package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/yoockh/mockmate/internal/models"
	pgrepo "github.com/yoockh/mockmate/internal/repositories/postgres"
	"github.com/yoockh/mockmate/internal/utils"
)

var _ pgrepo.NoteRepository = (*NoteRepo)(nil)

type noteKey struct {
	sessionID string
	authorID  string
}

type NoteRepo struct {
	mu    sync.RWMutex
	notes map[noteKey]*models.Note
}

func NewNoteRepo() *NoteRepo {
	return &NoteRepo{notes: make(map[noteKey]*models.Note)}
}

func (r *NoteRepo) Upsert(_ context.Context, n *models.Note) (*models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := noteKey{sessionID: n.SessionID, authorID: n.AuthorID}
	if cur, ok := r.notes[k]; ok {
		cur.Content = n.Content
		cur.UpdatedAt = n.UpdatedAt
		c := *cur
		return &c, nil
	}

	c := *n
	r.notes[k] = &c
	out := c
	return &out, nil
}

func (r *NoteRepo) GetBySessionAndAuthor(_ context.Context, sessionID, authorID string) (*models.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.notes[noteKey{sessionID: sessionID, authorID: authorID}]
	if !ok {
		return nil, utils.ErrNotFound
	}
	c := *n
	return &c, nil
}

func (r *NoteRepo) ListBySession(_ context.Context, sessionID string) ([]models.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Note{}
	for k, n := range r.notes {
		if k.sessionID == sessionID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Len reports how many notes are stored.
func (r *NoteRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.notes)
}
