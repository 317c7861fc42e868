package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/yoockh/mockmate/internal/cache"
	"github.com/yoockh/mockmate/internal/geo"
	"github.com/yoockh/mockmate/internal/models"
	mongorepo "github.com/yoockh/mockmate/internal/repositories/mongo"
	"github.com/yoockh/mockmate/internal/utils"
)

type MatchQuery struct {
	Subject  string
	Lat      *float64
	Lng      *float64
	RadiusKm float64 // 0 means the configured default
}

type MatchService interface {
	FindInterviewers(ctx context.Context, q MatchQuery) ([]models.InterviewerMatch, error)
}

type MatchOptions struct {
	DefaultRadiusKm float64
	MaxRadiusKm     float64       // 0 = unbounded
	WorkloadTTL     time.Duration // cache lifetime of active session counts
}

type matchService struct {
	users    mongorepo.UserRepository
	sessions mongorepo.SessionRepository
	cache    cache.Cache
	opts     MatchOptions
}

func NewMatchService(users mongorepo.UserRepository, sessions mongorepo.SessionRepository, c cache.Cache, opts MatchOptions) MatchService {
	if opts.DefaultRadiusKm <= 0 {
		opts.DefaultRadiusKm = models.DefaultAvailabilityRadiusKm
	}
	if opts.WorkloadTTL <= 0 {
		opts.WorkloadTTL = 30 * time.Second
	}
	return &matchService{users: users, sessions: sessions, cache: c, opts: opts}
}

func (s *matchService) FindInterviewers(ctx context.Context, q MatchQuery) ([]models.InterviewerMatch, error) {
	const op = "MatchService.FindInterviewers"

	subject := strings.TrimSpace(q.Subject)
	if subject == "" || q.Lat == nil || q.Lng == nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "subject, lat, and lng are required", nil)
	}
	if !geo.ValidLat(*q.Lat) || !geo.ValidLng(*q.Lng) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "lat must be in [-90, 90] and lng in [-180, 180]", nil)
	}

	radius := q.RadiusKm
	if radius == 0 {
		radius = s.opts.DefaultRadiusKm
	}
	if radius < 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "radius must be positive", nil)
	}
	if s.opts.MaxRadiusKm > 0 && radius > s.opts.MaxRadiusKm {
		return nil, utils.E(utils.CodeInvalidArgument, op, "radius exceeds the allowed maximum", nil)
	}

	matches, err := s.users.FindInterviewersNear(ctx, subject, models.NewPoint(*q.Lat, *q.Lng), geo.KmToMeters(radius))
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to query interviewers", err)
	}
	if len(matches) == 0 {
		return []models.InterviewerMatch{}, nil
	}

	ids := make([]string, len(matches))
	for i := range matches {
		ids[i] = matches[i].Interviewer.ID
	}
	counts, err := s.workload(ctx, ids)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count active sessions", err)
	}
	for i := range matches {
		matches[i].ActiveSessionCount = counts[matches[i].Interviewer.ID]
	}
	return matches, nil
}

// workload returns active session counts, serving cached values where
// present. Cache failures fall through to the store.
func (s *matchService) workload(ctx context.Context, ids []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(ids))
	missing := ids
	if s.cache != nil {
		missing = missing[:0:0]
		for _, id := range ids {
			var n int64
			if hit, err := s.cache.GetJSON(ctx, cache.WorkloadKey(id), &n); err == nil && hit {
				counts[id] = n
				continue
			}
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return counts, nil
	}

	fresh, err := s.sessions.CountActiveByInterviewers(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, id := range missing {
		counts[id] = fresh[id]
		if s.cache != nil {
			_ = s.cache.SetJSON(ctx, cache.WorkloadKey(id), fresh[id], s.opts.WorkloadTTL)
		}
	}
	return counts, nil
}
