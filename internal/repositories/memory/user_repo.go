// Package memory provides mutex-guarded implementations of the repository
// interfaces for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yoockh/mockmate/internal/geo"
	"github.com/yoockh/mockmate/internal/models"
	mongorepo "github.com/yoockh/mockmate/internal/repositories/mongo"
	"github.com/yoockh/mockmate/internal/utils"
)

var _ mongorepo.UserRepository = (*UserRepo)(nil)

type UserRepo struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[string]*models.User)}
}

func (r *UserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[u.ID]; exists {
		return utils.ErrConflict
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}
	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepo) GetByIDs(_ context.Context, ids []string) (map[string]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*models.User, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = cloneUser(u)
		}
	}
	return out, nil
}

func (r *UserRepo) Replace(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.users[u.ID]
	if !ok || cur.Role != u.Role {
		return utils.ErrNotFound
	}
	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r *UserRepo) FindInterviewersNear(_ context.Context, subject string, origin models.Point, maxMeters float64) ([]models.InterviewerMatch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type hit struct {
		u *models.User
		d float64
	}
	var hits []hit
	for _, u := range r.users {
		if !u.Covers(subject) {
			continue
		}
		d := geo.DistanceMeters(origin.Lat(), origin.Lng(), u.Location.Lat(), u.Location.Lng())
		if !geo.Within(d, maxMeters) {
			continue
		}
		hits = append(hits, hit{u: u, d: d})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].d != hits[j].d {
			return hits[i].d < hits[j].d
		}
		return hits[i].u.ID < hits[j].u.ID
	})

	out := make([]models.InterviewerMatch, 0, len(hits))
	for _, h := range hits {
		out = append(out, models.InterviewerMatch{
			Interviewer: *cloneUser(h.u),
			DistanceKm:  geo.MetersToKm(h.d),
		})
	}
	return out, nil
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Location.Coordinates = append([]float64(nil), u.Location.Coordinates...)
	if u.Interviewer != nil {
		p := *u.Interviewer
		p.Domains = append([]string(nil), u.Interviewer.Domains...)
		c.Interviewer = &p
	}
	if u.Interviewee != nil {
		p := *u.Interviewee
		c.Interviewee = &p
	}
	return &c
}
