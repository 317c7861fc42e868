package models

import "testing"

func TestSessionStatus(t *testing.T) {
	for _, s := range []SessionStatus{SessionRejected, SessionCompleted, SessionCancelled} {
		if !s.Terminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
	for _, s := range []SessionStatus{SessionPending, SessionAccepted} {
		if s.Terminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
	if SessionStatus("started").Valid() {
		t.Fatalf("started is not a status")
	}
}

func TestIsParticipant(t *testing.T) {
	s := &Session{IntervieweeID: "a", InterviewerID: "b"}
	if !s.IsParticipant("a") || !s.IsParticipant("b") {
		t.Fatalf("bound users must be participants")
	}
	if s.IsParticipant("c") || s.IsParticipant("") {
		t.Fatalf("unexpected participant")
	}
}

func TestProfileOf(t *testing.T) {
	if ProfileOf(nil) != nil {
		t.Fatalf("nil user projects to nil")
	}

	p := ProfileOf(validInterviewer())
	if p.YearsOfExperience == nil || *p.YearsOfExperience != 7 || len(p.Domains) != 1 {
		t.Fatalf("interviewer projection missing fields: %+v", p)
	}

	p = ProfileOf(validStudent())
	if p.YearsOfExperience != nil || p.Domains != nil {
		t.Fatalf("interviewee projection leaked interviewer fields: %+v", p)
	}
}
