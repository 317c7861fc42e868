package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yoockh/mockmate/internal/cache"
	"github.com/yoockh/mockmate/internal/models"
	mongorepo "github.com/yoockh/mockmate/internal/repositories/mongo"
	"github.com/yoockh/mockmate/internal/utils"
)

type DirectoryService interface {
	Register(ctx context.Context, actor models.Actor, in RegisterInput) (*models.User, error)
	Get(ctx context.Context, userID string) (*models.User, error)
	// GetMany always reads the store; callers use it for guards.
	GetMany(ctx context.Context, ids []string) (map[string]*models.User, error)
	Update(ctx context.Context, actor models.Actor, patch ProfilePatch) (*models.User, error)
}

// LatLng is a client supplied coordinate. Both fields are required; a
// missing one is never read as zero.
type LatLng struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

func NewLatLng(lat, lng float64) *LatLng {
	return &LatLng{Lat: &lat, Lng: &lng}
}

func (l *LatLng) point() (models.Point, error) {
	if l == nil || l.Lat == nil || l.Lng == nil {
		return models.Point{}, errors.New("location.lat and location.lng are required")
	}
	return models.NewPoint(*l.Lat, *l.Lng), nil
}

type RegisterInput struct {
	FullName string
	Email    string
	Location *LatLng

	// Only the variant matching the caller's role is read.
	Interviewer models.InterviewerProfile
	Interviewee models.IntervieweeProfile
}

// ProfilePatch carries a partial update; nil fields are left untouched and
// fields belonging to the other role are ignored.
type ProfilePatch struct {
	FullName *string
	Location *LatLng

	YearsOfExperience    *int
	Domains              *[]string
	AvailabilityRadiusKm *float64

	CurrentStatus *models.CurrentStatus
	YearOfStudy   *int
	Domain        *string
}

type directoryService struct {
	users mongorepo.UserRepository
	cache cache.Cache
	ttl   time.Duration
}

// NewDirectoryService caches single-user reads for ttl when c is non-nil.
func NewDirectoryService(users mongorepo.UserRepository, c cache.Cache, ttl time.Duration) DirectoryService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &directoryService{users: users, cache: c, ttl: ttl}
}

func (s *directoryService) Register(ctx context.Context, actor models.Actor, in RegisterInput) (*models.User, error) {
	const op = "DirectoryService.Register"

	if actor.UserID == "" {
		return nil, utils.E(utils.CodeUnauthorized, op, "unauthorized", nil)
	}

	if actor.Role != models.RoleInterviewer && actor.Role != models.RoleInterviewee {
		return nil, utils.E(utils.CodeForbidden, op, "role must be interviewer or interviewee", nil)
	}
	loc, err := in.Location.point()
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, err.Error(), nil)
	}

	var u *models.User
	switch actor.Role {
	case models.RoleInterviewer:
		u = models.NewInterviewer(actor.UserID, in.FullName, in.Email, loc, in.Interviewer)
	default:
		u = models.NewInterviewee(actor.UserID, in.FullName, in.Email, loc, in.Interviewee)
	}

	u.Normalize()
	if err := u.Validate(); err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, err.Error(), nil)
	}

	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, utils.ErrConflict) {
			return nil, utils.E(utils.CodeConflict, op, "user already exists", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to create user", err)
	}
	s.invalidate(ctx, u.ID)
	return u, nil
}

func (s *directoryService) Get(ctx context.Context, userID string) (*models.User, error) {
	const op = "DirectoryService.Get"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	if s.cache != nil {
		var cached models.User
		if hit, err := s.cache.GetJSON(ctx, cache.UserKey(userID), &cached); err == nil && hit {
			return &cached, nil
		}
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "user not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get user", err)
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, cache.UserKey(userID), u, s.ttl)
	}
	return u, nil
}

func (s *directoryService) GetMany(ctx context.Context, ids []string) (map[string]*models.User, error) {
	const op = "DirectoryService.GetMany"

	out, err := s.users.GetByIDs(ctx, dedupe(ids))
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load users", err)
	}
	return out, nil
}

func (s *directoryService) Update(ctx context.Context, actor models.Actor, patch ProfilePatch) (*models.User, error) {
	const op = "DirectoryService.Update"

	if actor.UserID == "" {
		return nil, utils.E(utils.CodeUnauthorized, op, "unauthorized", nil)
	}

	u, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "profile not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get profile", err)
	}

	if patch.Location != nil {
		loc, err := patch.Location.point()
		if err != nil {
			return nil, utils.E(utils.CodeInvalidArgument, op, err.Error(), nil)
		}
		u.Location = loc
	}
	applyPatch(u, patch)
	u.Normalize()
	if err := u.Validate(); err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, err.Error(), nil)
	}

	u.UpdatedAt = time.Now().UTC()
	if err := s.users.Replace(ctx, u); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "profile not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to update profile", err)
	}
	s.invalidate(ctx, u.ID)
	return u, nil
}

func applyPatch(u *models.User, p ProfilePatch) {
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	switch u.Role {
	case models.RoleInterviewer:
		iv := u.Interviewer
		if iv == nil {
			iv = &models.InterviewerProfile{}
			u.Interviewer = iv
		}
		if p.YearsOfExperience != nil {
			iv.YearsOfExperience = *p.YearsOfExperience
		}
		if p.Domains != nil {
			iv.Domains = append([]string(nil), (*p.Domains)...)
		}
		if p.AvailabilityRadiusKm != nil {
			iv.AvailabilityRadiusKm = *p.AvailabilityRadiusKm
		}
	case models.RoleInterviewee:
		ie := u.Interviewee
		if ie == nil {
			ie = &models.IntervieweeProfile{}
			u.Interviewee = ie
		}
		if p.CurrentStatus != nil && *p.CurrentStatus != ie.CurrentStatus {
			ie.CurrentStatus = *p.CurrentStatus
			// switching status drops the field of the previous status
			ie.YearOfStudy = 0
			ie.Domain = ""
		}
		if p.YearOfStudy != nil {
			ie.YearOfStudy = *p.YearOfStudy
		}
		if p.Domain != nil {
			ie.Domain = *p.Domain
		}
	}
}

func (s *directoryService) invalidate(ctx context.Context, userID string) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, cache.UserKey(userID))
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
