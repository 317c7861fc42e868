package services_test

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/mockmate/internal/models"
	"github.com/yoockh/mockmate/internal/repositories/memory"
	"github.com/yoockh/mockmate/internal/services"
	"github.com/yoockh/mockmate/internal/utils"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.SessionEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev models.SessionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []models.SessionEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.SessionEventType, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

// mapCache is an in-process cache.Cache.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]byte{}} }

func (c *mapCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *mapCache) SetJSON(_ context.Context, key string, val any, _ time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *mapCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *mapCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

type testEnv struct {
	userRepo    *memory.UserRepo
	sessionRepo *memory.SessionRepo
	noteRepo    *memory.NoteRepo
	pub         *recordingPublisher

	directory services.DirectoryService
	sessions  services.SessionService
	notes     services.NoteService
	match     services.MatchService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	e := &testEnv{
		userRepo:    memory.NewUserRepo(),
		sessionRepo: memory.NewSessionRepo(),
		noteRepo:    memory.NewNoteRepo(),
		pub:         &recordingPublisher{},
	}
	e.directory = services.NewDirectoryService(e.userRepo, nil, 0)
	e.sessions = services.NewSessionService(e.sessionRepo, e.directory, e.pub, log)
	e.notes = services.NewNoteService(e.noteRepo, e.sessions, e.directory, 0)
	e.match = services.NewMatchService(e.userRepo, e.sessionRepo, nil, services.MatchOptions{})
	return e
}

func (e *testEnv) interviewer(t *testing.T, id string, lat, lng float64, domains ...string) models.Actor {
	t.Helper()
	actor := models.Actor{UserID: id, Role: models.RoleInterviewer}
	_, err := e.directory.Register(context.Background(), actor, services.RegisterInput{
		FullName:    "Interviewer " + id,
		Email:       id + "@example.com",
		Location:    services.NewLatLng(lat, lng),
		Interviewer: models.InterviewerProfile{YearsOfExperience: 5, Domains: domains},
	})
	if err != nil {
		t.Fatalf("register interviewer %s: %v", id, err)
	}
	return actor
}

func (e *testEnv) interviewee(t *testing.T, id string) models.Actor {
	t.Helper()
	actor := models.Actor{UserID: id, Role: models.RoleInterviewee}
	_, err := e.directory.Register(context.Background(), actor, services.RegisterInput{
		FullName:    "Seeker " + id,
		Email:       id + "@example.com",
		Location:    services.NewLatLng(0, 0),
		Interviewee: models.IntervieweeProfile{CurrentStatus: models.StatusStudent, YearOfStudy: 3},
	})
	if err != nil {
		t.Fatalf("register interviewee %s: %v", id, err)
	}
	return actor
}

// pendingSession registers a fresh pair and returns a pending session.
func (e *testEnv) pendingSession(t *testing.T) (seeker, expert models.Actor, view *models.SessionView) {
	t.Helper()
	seeker = e.interviewee(t, "seeker")
	expert = e.interviewer(t, "expert", 0, 0.01, "Data Science")
	view, err := e.sessions.Create(context.Background(), seeker, services.CreateSessionInput{
		InterviewerID: expert.UserID,
		Subject:       "Data Science",
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return seeker, expert, view
}

func wantCode(t *testing.T, err error, code utils.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if !utils.IsCode(err, code) {
		t.Fatalf("expected %s, got %v", code, err)
	}
}
