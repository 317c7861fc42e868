package models

import "time"

type SessionEventType string

const (
	EventSessionCreated   SessionEventType = "session.created"
	EventSessionAccepted  SessionEventType = "session.accepted"
	EventSessionRejected  SessionEventType = "session.rejected"
	EventSessionStarted   SessionEventType = "session.started"
	EventSessionCompleted SessionEventType = "session.completed"
)

// SessionEvent is published after a lifecycle write commits.
type SessionEvent struct {
	Type          SessionEventType `json:"type"`
	SessionID     string           `json:"session_id"`
	IntervieweeID string           `json:"interviewee_id"`
	InterviewerID string           `json:"interviewer_id"`
	Status        SessionStatus    `json:"status"`
	ActorID       string           `json:"actor_id"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

func EventFor(typ SessionEventType, s *Session, actorID string, at time.Time) SessionEvent {
	return SessionEvent{
		Type:          typ,
		SessionID:     s.ID,
		IntervieweeID: s.IntervieweeID,
		InterviewerID: s.InterviewerID,
		Status:        s.Status,
		ActorID:       actorID,
		OccurredAt:    at,
	}
}
