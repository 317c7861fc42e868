package services_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/yoockh/mockmate/internal/cache"
	"github.com/yoockh/mockmate/internal/models"
	"github.com/yoockh/mockmate/internal/services"
	"github.com/yoockh/mockmate/internal/utils"
)

func f64(v float64) *float64 { return &v }

func seedSession(t *testing.T, e *testEnv, id, interviewerID string, status models.SessionStatus) {
	t.Helper()
	now := time.Now().UTC()
	err := e.sessionRepo.Create(context.Background(), &models.Session{
		ID:            id,
		IntervieweeID: "seed-seeker",
		InterviewerID: interviewerID,
		Subject:       "Data Science",
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func TestFindInterviewersWithinRadius(t *testing.T) {
	e := newTestEnv(t)
	e.interviewer(t, "A", 0, 0.05, "Data Science")
	e.interviewer(t, "B", 0, 0.2, "Data Science")
	e.interviewer(t, "C", 0, 0.01, "Backend")

	seedSession(t, e, "s1", "A", models.SessionPending)
	seedSession(t, e, "s2", "A", models.SessionAccepted)
	seedSession(t, e, "s3", "A", models.SessionCompleted)
	seedSession(t, e, "s4", "A", models.SessionRejected)

	got, err := e.match.FindInterviewers(context.Background(), services.MatchQuery{
		Subject:  "Data Science",
		Lat:      f64(0),
		Lng:      f64(0),
		RadiusKm: 10,
	})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected only A, got %d results", len(got))
	}
	m := got[0]
	if m.Interviewer.ID != "A" {
		t.Fatalf("expected A, got %s", m.Interviewer.ID)
	}
	if math.Abs(m.DistanceKm-5.56) > 0.05 {
		t.Fatalf("distance for A = %.3f km, want ~5.56", m.DistanceKm)
	}
	if m.ActiveSessionCount != 2 {
		t.Fatalf("active count = %d, want 2 (pending + accepted)", m.ActiveSessionCount)
	}
}

func TestFindInterviewersOrdering(t *testing.T) {
	e := newTestEnv(t)
	e.interviewer(t, "far", 0, 0.04, "Go")
	e.interviewer(t, "near-b", 0, 0.01, "Go")
	e.interviewer(t, "near-a", 0, 0.01, "Go")

	got, err := e.match.FindInterviewers(context.Background(), services.MatchQuery{Subject: "Go", Lat: f64(0), Lng: f64(0)})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	want := []string{"near-a", "near-b", "far"}
	if len(got) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].Interviewer.ID != id {
			t.Fatalf("position %d: got %s, want %s", i, got[i].Interviewer.ID, id)
		}
		if got[i].ActiveSessionCount != 0 {
			t.Fatalf("%s should have no sessions", id)
		}
	}
}

func TestFindInterviewersDefaultRadius(t *testing.T) {
	e := newTestEnv(t)
	// 0.036 deg of longitude at the equator is ~4 km, 0.054 is ~6 km
	e.interviewer(t, "inside", 0, 0.036, "Go")
	e.interviewer(t, "outside", 0, 0.054, "Go")

	got, err := e.match.FindInterviewers(context.Background(), services.MatchQuery{Subject: "Go", Lat: f64(0), Lng: f64(0)})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 1 || got[0].Interviewer.ID != "inside" {
		t.Fatalf("default 5 km radius not applied: %+v", got)
	}
}

func TestFindInterviewersLargeRadiusWithoutCap(t *testing.T) {
	e := newTestEnv(t)
	// ~1110 km north of the origin
	e.interviewer(t, "distant", 10, 0, "Go")

	got, err := e.match.FindInterviewers(context.Background(), services.MatchQuery{Subject: "Go", Lat: f64(0), Lng: f64(0), RadiusKm: 1500})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 1 || got[0].Interviewer.ID != "distant" {
		t.Fatalf("expected the distant interviewer, got %+v", got)
	}
}

func TestFindInterviewersEmpty(t *testing.T) {
	e := newTestEnv(t)
	e.interviewer(t, "A", 10, 10, "Go")

	got, err := e.match.FindInterviewers(context.Background(), services.MatchQuery{Subject: "Go", Lat: f64(0), Lng: f64(0), RadiusKm: 1})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected an empty non-nil slice, got %#v", got)
	}
}

func TestFindInterviewersValidation(t *testing.T) {
	e := newTestEnv(t)
	svc := services.NewMatchService(e.userRepo, e.sessionRepo, nil, services.MatchOptions{MaxRadiusKm: 50})

	cases := []struct {
		name string
		q    services.MatchQuery
	}{
		{"missing subject", services.MatchQuery{Lat: f64(0), Lng: f64(0)}},
		{"blank subject", services.MatchQuery{Subject: "  ", Lat: f64(0), Lng: f64(0)}},
		{"missing lat", services.MatchQuery{Subject: "Go", Lng: f64(0)}},
		{"missing lng", services.MatchQuery{Subject: "Go", Lat: f64(0)}},
		{"lat out of range", services.MatchQuery{Subject: "Go", Lat: f64(91), Lng: f64(0)}},
		{"lng out of range", services.MatchQuery{Subject: "Go", Lat: f64(0), Lng: f64(-181)}},
		{"negative radius", services.MatchQuery{Subject: "Go", Lat: f64(0), Lng: f64(0), RadiusKm: -1}},
		{"nan radius", services.MatchQuery{Subject: "Go", Lat: f64(0), Lng: f64(0), RadiusKm: math.NaN()}},
		{"radius above max", services.MatchQuery{Subject: "Go", Lat: f64(0), Lng: f64(0), RadiusKm: 51}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.FindInterviewers(context.Background(), tc.q)
			wantCode(t, err, utils.CodeInvalidArgument)
		})
	}
}

func TestFindInterviewersWorkloadCache(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	c := newMapCache()
	svc := services.NewMatchService(e.userRepo, e.sessionRepo, c, services.MatchOptions{})

	e.interviewer(t, "cached", 0, 0.01, "Go")
	e.interviewer(t, "fresh", 0, 0.02, "Go")
	seedSession(t, e, "s1", "fresh", models.SessionPending)

	if err := c.SetJSON(ctx, cache.WorkloadKey("cached"), int64(7), time.Minute); err != nil {
		t.Fatal(err)
	}

	got, err := svc.FindInterviewers(ctx, services.MatchQuery{Subject: "Go", Lat: f64(0), Lng: f64(0)})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].ActiveSessionCount != 7 {
		t.Fatalf("cached count ignored: %d", got[0].ActiveSessionCount)
	}
	if got[1].ActiveSessionCount != 1 {
		t.Fatalf("fresh count = %d, want 1", got[1].ActiveSessionCount)
	}
	if !c.has(cache.WorkloadKey("fresh")) {
		t.Fatalf("fresh count was not cached")
	}
}
