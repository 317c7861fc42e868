package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yoockh/mockmate/internal/models"
	mongorepo "github.com/yoockh/mockmate/internal/repositories/mongo"
	"github.com/yoockh/mockmate/internal/utils"
)

var _ mongorepo.SessionRepository = (*SessionRepo)(nil)

// SessionRepo guards every check-then-set with one mutex, which gives the
// same single-winner behavior as the conditional update in Mongo.
type SessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{sessions: make(map[string]*models.Session)}
}

func (r *SessionRepo) Create(_ context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[s.ID]; exists {
		return utils.ErrConflict
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.CreatedAt
	}
	r.sessions[s.ID] = cloneSession(s)
	return nil
}

func (r *SessionRepo) GetByID(_ context.Context, id string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return cloneSession(s), nil
}

func (r *SessionRepo) ListByParticipant(_ context.Context, userID string, status models.SessionStatus) ([]models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Session{}
	for _, s := range r.sessions {
		if !s.IsParticipant(userID) {
			continue
		}
		if status != "" && s.Status != status {
			continue
		}
		out = append(out, *cloneSession(s))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *SessionRepo) SwapStatus(_ context.Context, id string, from models.SessionStatus, change models.SessionChange) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok || s.Status != from {
		return nil, nil
	}
	s.Status = change.Status
	s.UpdatedAt = change.UpdatedAt
	if change.StartedAt != nil {
		at := *change.StartedAt
		s.StartedAt = &at
	}
	if change.EndedAt != nil {
		at := *change.EndedAt
		if s.StartedAt != nil && at.Before(*s.StartedAt) {
			at = *s.StartedAt
		}
		s.EndedAt = &at
	}
	return cloneSession(s), nil
}

func (r *SessionRepo) MarkStarted(_ context.Context, id string, at time.Time) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok || s.Status != models.SessionAccepted || s.StartedAt != nil {
		return nil, nil
	}
	s.StartedAt = &at
	s.UpdatedAt = at
	return cloneSession(s), nil
}

func (r *SessionRepo) CountActiveByInterviewers(_ context.Context, interviewerIDs []string) (map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := make(map[string]struct{}, len(interviewerIDs))
	for _, id := range interviewerIDs {
		want[id] = struct{}{}
	}

	out := make(map[string]int64, len(interviewerIDs))
	for _, s := range r.sessions {
		if _, ok := want[s.InterviewerID]; !ok {
			continue
		}
		if s.Status == models.SessionPending || s.Status == models.SessionAccepted {
			out[s.InterviewerID]++
		}
	}
	return out, nil
}

func cloneSession(s *models.Session) *models.Session {
	c := *s
	c.ScheduledAt = cloneTime(s.ScheduledAt)
	c.StartedAt = cloneTime(s.StartedAt)
	c.EndedAt = cloneTime(s.EndedAt)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
