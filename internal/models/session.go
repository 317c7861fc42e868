package models

import "time"

type SessionStatus string

const (
	SessionPending   SessionStatus = "pending"
	SessionAccepted  SessionStatus = "accepted"
	SessionRejected  SessionStatus = "rejected"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// ActiveStatuses count toward an interviewer's workload.
var ActiveStatuses = []SessionStatus{SessionPending, SessionAccepted}

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionPending, SessionAccepted, SessionRejected, SessionCompleted, SessionCancelled:
		return true
	}
	return false
}

func (s SessionStatus) Terminal() bool {
	return s == SessionRejected || s == SessionCompleted || s == SessionCancelled
}

// Session is one interview engagement between an interviewee and an
// interviewer. Starting is tracked by StartedAt while the status stays
// accepted.
type Session struct {
	ID            string `bson:"_id" json:"id"` // uuid v4
	IntervieweeID string `bson:"interviewee_id" json:"interviewee_id"`
	InterviewerID string `bson:"interviewer_id" json:"interviewer_id"`
	Subject       string `bson:"subject" json:"subject"`

	Status           SessionStatus `bson:"status" json:"status"`
	RecordingEnabled bool          `bson:"recording_enabled" json:"recording_enabled"`

	ScheduledAt *time.Time `bson:"scheduled_at,omitempty" json:"scheduled_at,omitempty"`
	StartedAt   *time.Time `bson:"started_at,omitempty" json:"started_at,omitempty"`
	EndedAt     *time.Time `bson:"ended_at,omitempty" json:"ended_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func (s *Session) IsParticipant(userID string) bool {
	return userID != "" && (s.IntervieweeID == userID || s.InterviewerID == userID)
}

// SessionChange is the set of fields written together with a status swap.
type SessionChange struct {
	Status    SessionStatus
	StartedAt *time.Time
	EndedAt   *time.Time
	UpdatedAt time.Time
}

// ParticipantProfile is the display projection of a user attached to
// sessions and notes.
type ParticipantProfile struct {
	ID                string   `json:"id"`
	Role              UserRole `json:"role"`
	FullName          string   `json:"full_name"`
	Email             string   `json:"email"`
	YearsOfExperience *int     `json:"years_of_experience,omitempty"`
	Domains           []string `json:"domains,omitempty"`
}

func ProfileOf(u *User) *ParticipantProfile {
	if u == nil {
		return nil
	}
	p := &ParticipantProfile{ID: u.ID, Role: u.Role, FullName: u.FullName, Email: u.Email}
	if u.Interviewer != nil {
		years := u.Interviewer.YearsOfExperience
		p.YearsOfExperience = &years
		p.Domains = append([]string(nil), u.Interviewer.Domains...)
	}
	return p
}

type SessionView struct {
	Session
	Interviewee *ParticipantProfile `json:"interviewee,omitempty"`
	Interviewer *ParticipantProfile `json:"interviewer,omitempty"`
}

// InterviewerMatch is one Match Engine result.
type InterviewerMatch struct {
	Interviewer        User    `json:"interviewer"`
	DistanceKm         float64 `json:"distance_km"`
	ActiveSessionCount int64   `json:"active_session_count"`
}
