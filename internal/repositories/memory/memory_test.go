package memory

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yoockh/mockmate/internal/geo"
	"github.com/yoockh/mockmate/internal/models"
	"github.com/yoockh/mockmate/internal/utils"
)

func interviewerAt(id string, lat, lng float64, domains ...string) *models.User {
	return models.NewInterviewer(id, id, id+"@example.com", models.NewPoint(lat, lng), models.InterviewerProfile{
		YearsOfExperience:    3,
		Domains:              domains,
		AvailabilityRadiusKm: 5,
	})
}

func TestFindInterviewersNearOrdersAndFilters(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepo()

	for _, u := range []*models.User{
		interviewerAt("far", 0, 0.08, "Data Science"),
		interviewerAt("near-b", 0, 0.01, "Data Science"),
		interviewerAt("near-a", 0, -0.01, "Data Science"), // same distance as near-b
		interviewerAt("out", 0, 0.2, "Data Science"),
		interviewerAt("other-subject", 0, 0.001, "Go"),
	} {
		if err := r.Create(ctx, u); err != nil {
			t.Fatalf("create %s: %v", u.ID, err)
		}
	}
	student := models.NewInterviewee("s", "s", "s@example.com", models.NewPoint(0, 0), models.IntervieweeProfile{CurrentStatus: models.StatusStudent, YearOfStudy: 1})
	if err := r.Create(ctx, student); err != nil {
		t.Fatalf("create student: %v", err)
	}

	got, err := r.FindInterviewersNear(ctx, "Data Science", models.NewPoint(0, 0), geo.KmToMeters(10))
	if err != nil {
		t.Fatalf("FindInterviewersNear: %v", err)
	}

	want := []string{"near-a", "near-b", "far"}
	if len(got) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].Interviewer.ID != id {
			t.Fatalf("result %d: want %s, got %s", i, id, got[i].Interviewer.ID)
		}
	}
	if got[2].DistanceKm < 8.8 || got[2].DistanceKm > 9.0 {
		t.Fatalf("unexpected distance %v", got[2].DistanceKm)
	}
}

func TestFindInterviewersNearBoundary(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepo()

	radius := geo.KmToMeters(10)
	deg := func(m float64) float64 { return m / geo.EarthRadiusMeters * 180 / math.Pi }

	_ = r.Create(ctx, interviewerAt("edge", 0, deg(radius), "Data Science"))
	_ = r.Create(ctx, interviewerAt("past", 0, deg(radius+1), "Data Science"))

	got, err := r.FindInterviewersNear(ctx, "Data Science", models.NewPoint(0, 0), radius)
	if err != nil {
		t.Fatalf("FindInterviewersNear: %v", err)
	}
	if len(got) != 1 || got[0].Interviewer.ID != "edge" {
		t.Fatalf("expected only the edge interviewer, got %+v", got)
	}
}

func TestUserRepoReplaceKeepsRole(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepo()
	u := interviewerAt("i", 0, 0, "Go")
	_ = r.Create(ctx, u)

	if err := r.Create(ctx, u); !errors.Is(err, utils.ErrConflict) {
		t.Fatalf("expected conflict on duplicate create, got %v", err)
	}

	swapped := models.NewInterviewee("i", "i", "", models.NewPoint(0, 0), models.IntervieweeProfile{CurrentStatus: models.StatusStudent, YearOfStudy: 1})
	if err := r.Replace(ctx, swapped); !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("expected role change to be refused, got %v", err)
	}
}

func TestSwapStatusSingleWinner(t *testing.T) {
	ctx := context.Background()
	r := NewSessionRepo()
	_ = r.Create(ctx, &models.Session{ID: "s1", IntervieweeID: "a", InterviewerID: "b", Status: models.SessionPending})

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		to := models.SessionAccepted
		if i%2 == 1 {
			to = models.SessionRejected
		}
		go func(to models.SessionStatus) {
			defer wg.Done()
			s, err := r.SwapStatus(ctx, "s1", models.SessionPending, models.SessionChange{Status: to, UpdatedAt: time.Now()})
			if err != nil {
				t.Errorf("SwapStatus: %v", err)
			}
			if s != nil {
				atomic.AddInt32(&wins, 1)
			}
		}(to)
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
}

func TestMarkStartedOnce(t *testing.T) {
	ctx := context.Background()
	r := NewSessionRepo()
	_ = r.Create(ctx, &models.Session{ID: "s1", IntervieweeID: "a", InterviewerID: "b", Status: models.SessionAccepted})

	first := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	s, err := r.MarkStarted(ctx, "s1", first)
	if err != nil || s == nil {
		t.Fatalf("first MarkStarted: s=%v err=%v", s, err)
	}

	s, err = r.MarkStarted(ctx, "s1", first.Add(time.Hour))
	if err != nil || s != nil {
		t.Fatalf("second MarkStarted must not match: s=%v err=%v", s, err)
	}

	got, _ := r.GetByID(ctx, "s1")
	if !got.StartedAt.Equal(first) {
		t.Fatalf("started_at changed: %v", got.StartedAt)
	}
}

func TestCountActiveByInterviewers(t *testing.T) {
	ctx := context.Background()
	r := NewSessionRepo()
	statuses := []models.SessionStatus{models.SessionPending, models.SessionPending, models.SessionCompleted, models.SessionAccepted, models.SessionRejected}
	for i, st := range statuses {
		_ = r.Create(ctx, &models.Session{ID: string(rune('a' + i)), IntervieweeID: "x", InterviewerID: "i1", Status: st})
	}
	_ = r.Create(ctx, &models.Session{ID: "z", IntervieweeID: "x", InterviewerID: "i2", Status: models.SessionPending})

	got, err := r.CountActiveByInterviewers(ctx, []string{"i1"})
	if err != nil {
		t.Fatalf("CountActiveByInterviewers: %v", err)
	}
	if got["i1"] != 3 || got["i2"] != 0 {
		t.Fatalf("unexpected counts %v", got)
	}
}

func TestListByParticipantNewestFirst(t *testing.T) {
	ctx := context.Background()
	r := NewSessionRepo()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_ = r.Create(ctx, &models.Session{ID: "old", IntervieweeID: "a", InterviewerID: "b", Status: models.SessionPending, CreatedAt: base})
	_ = r.Create(ctx, &models.Session{ID: "new", IntervieweeID: "a", InterviewerID: "c", Status: models.SessionAccepted, CreatedAt: base.Add(time.Hour)})
	_ = r.Create(ctx, &models.Session{ID: "other", IntervieweeID: "x", InterviewerID: "y", Status: models.SessionPending, CreatedAt: base})

	got, _ := r.ListByParticipant(ctx, "a", "")
	if len(got) != 2 || got[0].ID != "new" || got[1].ID != "old" {
		t.Fatalf("unexpected list %+v", got)
	}

	got, _ = r.ListByParticipant(ctx, "a", models.SessionPending)
	if len(got) != 1 || got[0].ID != "old" {
		t.Fatalf("status filter not applied: %+v", got)
	}
}

func TestNoteUpsertConcurrentFirstSave(t *testing.T) {
	ctx := context.Background()
	r := NewNoteRepo()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.Upsert(ctx, &models.Note{ID: string(rune('A' + i)), SessionID: "s", AuthorID: "a", Content: "draft"})
			if err != nil {
				t.Errorf("Upsert: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if r.Len() != 1 {
		t.Fatalf("expected one note, got %d", r.Len())
	}
}
