package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/mockmate/internal/events"
	"github.com/yoockh/mockmate/internal/models"
	mongorepo "github.com/yoockh/mockmate/internal/repositories/mongo"
	"github.com/yoockh/mockmate/internal/utils"
)

type CreateSessionInput struct {
	InterviewerID    string
	Subject          string
	ScheduledAt      *time.Time
	RecordingEnabled bool
}

// SessionService owns the session state machine:
//
//	pending  -> accepted | rejected   (bound interviewer)
//	accepted -> accepted (start)      (either participant, sets started_at once)
//	accepted -> completed             (either participant)
//
// Every read and write is limited to the two bound participants. Guard
// order is existence (404), participation (403), actor (403), status.
type SessionService interface {
	Create(ctx context.Context, actor models.Actor, in CreateSessionInput) (*models.SessionView, error)
	List(ctx context.Context, actor models.Actor, status string) ([]models.SessionView, error)
	Get(ctx context.Context, actor models.Actor, sessionID string) (*models.SessionView, error)
	Accept(ctx context.Context, actor models.Actor, sessionID string) (*models.SessionView, error)
	Reject(ctx context.Context, actor models.Actor, sessionID string) (*models.SessionView, error)
	Start(ctx context.Context, actor models.Actor, sessionID string) (*models.SessionView, error)
	End(ctx context.Context, actor models.Actor, sessionID string) (*models.SessionView, error)
	Authorize(ctx context.Context, userID, sessionID string) (*models.Session, error)
}

type sessionService struct {
	sessions  mongorepo.SessionRepository
	directory DirectoryService
	events    events.Publisher
	log       *logrus.Logger
	now       func() time.Time
}

func NewSessionService(sessions mongorepo.SessionRepository, directory DirectoryService, pub events.Publisher, log *logrus.Logger) SessionService {
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = logrus.New()
	}
	return &sessionService{
		sessions:  sessions,
		directory: directory,
		events:    pub,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *sessionService) Create(ctx context.Context, actor models.Actor, in CreateSessionInput) (*models.SessionView, error) {
	const op = "SessionService.Create"

	if actor.Role != models.RoleInterviewee {
		return nil, utils.E(utils.CodeForbidden, op, "only interviewees can create sessions", nil)
	}
	interviewerID := strings.TrimSpace(in.InterviewerID)
	subject := strings.TrimSpace(in.Subject)
	if interviewerID == "" || subject == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "interviewer_id and subject are required", nil)
	}
	if interviewerID == actor.UserID {
		return nil, utils.E(utils.CodeInvalidArgument, op, "invalid interviewer", nil)
	}

	users, err := s.directory.GetMany(ctx, []string{actor.UserID, interviewerID})
	if err != nil {
		return nil, err
	}
	me := users[actor.UserID]
	if me == nil || me.Role != models.RoleInterviewee {
		return nil, utils.E(utils.CodeForbidden, op, "caller is not a registered interviewee", nil)
	}
	interviewer := users[interviewerID]
	if interviewer == nil || interviewer.Role != models.RoleInterviewer {
		return nil, utils.E(utils.CodeInvalidArgument, op, "invalid interviewer", nil)
	}
	if !interviewer.Covers(subject) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "interviewer does not cover this subject", nil)
	}

	now := s.now()
	sess := &models.Session{
		ID:               uuid.NewString(),
		IntervieweeID:    actor.UserID,
		InterviewerID:    interviewerID,
		Subject:          subject,
		Status:           models.SessionPending,
		RecordingEnabled: in.RecordingEnabled,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if in.ScheduledAt != nil {
		at := in.ScheduledAt.UTC()
		sess.ScheduledAt = &at
	}

	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create session", err)
	}
	s.publish(ctx, models.EventFor(models.EventSessionCreated, sess, actor.UserID, now))

	return viewOf(sess, users), nil
}

func (s *sessionService) List(ctx context.Context, actor models.Actor, status string) ([]models.SessionView, error) {
	const op = "SessionService.List"

	if actor.UserID == "" {
		return nil, utils.E(utils.CodeUnauthorized, op, "unauthorized", nil)
	}
	st := models.SessionStatus(strings.ToLower(strings.TrimSpace(status)))
	if st != "" && !st.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown status filter", nil)
	}

	rows, err := s.sessions.ListByParticipant(ctx, actor.UserID, st)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list sessions", err)
	}

	ids := make([]string, 0, len(rows)*2)
	for _, r := range rows {
		ids = append(ids, r.IntervieweeID, r.InterviewerID)
	}
	users, err := s.directory.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.SessionView, 0, len(rows))
	for i := range rows {
		out = append(out, *viewOf(&rows[i], users))
	}
	return out, nil
}

func (s *sessionService) Get(ctx context.Context, actor models.Actor, sessionID string) (*models.SessionView, error) {
	const op = "SessionService.Get"

	sess, err := s.load(ctx, op, actor.UserID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, sess)
}

func (s *sessionService) Authorize(ctx context.Context, userID, sessionID string) (*models.Session, error) {
	return s.load(ctx, "SessionService.Authorize", userID, sessionID)
}

func (s *sessionService) Accept(ctx context.Context, actor models.Actor, sessionID string) (*models.SessionView, error) {
	return s.decide(ctx, "SessionService.Accept", actor, sessionID, models.SessionAccepted, models.EventSessionAccepted)
}

func (s *sessionService) Reject(ctx context.Context, actor models.Actor, sessionID string) (*models.SessionView, error) {
	return s.decide(ctx, "SessionService.Reject", actor, sessionID, models.SessionRejected, models.EventSessionRejected)
}

// decide moves a pending session to accepted or rejected on behalf of its
// interviewer.
func (s *sessionService) decide(ctx context.Context, op string, actor models.Actor, sessionID string, to models.SessionStatus, typ models.SessionEventType) (*models.SessionView, error) {
	sess, err := s.load(ctx, op, actor.UserID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.InterviewerID != actor.UserID {
		return nil, utils.E(utils.CodeForbidden, op, "only the interviewer can respond to a session", nil)
	}
	if sess.Status != models.SessionPending {
		return nil, notInState(op, "session is not pending")
	}

	now := s.now()
	updated, err := s.sessions.SwapStatus(ctx, sess.ID, models.SessionPending, models.SessionChange{Status: to, UpdatedAt: now})
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update session", err)
	}
	if updated == nil {
		return nil, notInState(op, "session is not pending")
	}

	s.publish(ctx, models.EventFor(typ, updated, actor.UserID, now))
	return s.view(ctx, updated)
}

func (s *sessionService) Start(ctx context.Context, actor models.Actor, sessionID string) (*models.SessionView, error) {
	const op = "SessionService.Start"

	sess, err := s.load(ctx, op, actor.UserID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != models.SessionAccepted {
		return nil, notInState(op, "session must be accepted before starting")
	}
	if sess.StartedAt != nil {
		return s.view(ctx, sess)
	}

	now := s.now()
	updated, err := s.sessions.MarkStarted(ctx, sess.ID, now)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to start session", err)
	}
	if updated == nil {
		// Lost to a concurrent start (no-op) or end (conflict).
		cur, err := s.sessions.GetByID(ctx, sess.ID)
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to reload session", err)
		}
		if cur.Status == models.SessionAccepted && cur.StartedAt != nil {
			return s.view(ctx, cur)
		}
		return nil, notInState(op, "session must be accepted before starting")
	}

	s.publish(ctx, models.EventFor(models.EventSessionStarted, updated, actor.UserID, now))
	return s.view(ctx, updated)
}

func (s *sessionService) End(ctx context.Context, actor models.Actor, sessionID string) (*models.SessionView, error) {
	const op = "SessionService.End"

	sess, err := s.load(ctx, op, actor.UserID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != models.SessionAccepted {
		return nil, notInState(op, "session must be accepted before ending")
	}

	now := s.now()
	endedAt := now
	if sess.StartedAt != nil && endedAt.Before(*sess.StartedAt) {
		endedAt = *sess.StartedAt
	}
	updated, err := s.sessions.SwapStatus(ctx, sess.ID, models.SessionAccepted, models.SessionChange{
		Status:    models.SessionCompleted,
		EndedAt:   &endedAt,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to end session", err)
	}
	if updated == nil {
		return nil, notInState(op, "session must be accepted before ending")
	}

	s.publish(ctx, models.EventFor(models.EventSessionCompleted, updated, actor.UserID, now))
	return s.view(ctx, updated)
}

// load resolves a session the caller is bound to.
func (s *sessionService) load(ctx context.Context, op, userID, sessionID string) (*models.Session, error) {
	if userID == "" {
		return nil, utils.E(utils.CodeUnauthorized, op, "unauthorized", nil)
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}

	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get session", err)
	}
	if !sess.IsParticipant(userID) {
		return nil, utils.E(utils.CodeForbidden, op, "access denied", nil)
	}
	return sess, nil
}

func (s *sessionService) view(ctx context.Context, sess *models.Session) (*models.SessionView, error) {
	users, err := s.directory.GetMany(ctx, []string{sess.IntervieweeID, sess.InterviewerID})
	if err != nil {
		return nil, err
	}
	return viewOf(sess, users), nil
}

func (s *sessionService) publish(ctx context.Context, ev models.SessionEvent) {
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"session_id": ev.SessionID,
			"event":      ev.Type,
		}).Warn("session event publish failed")
	}
}

func viewOf(sess *models.Session, users map[string]*models.User) *models.SessionView {
	return &models.SessionView{
		Session:     *sess,
		Interviewee: models.ProfileOf(users[sess.IntervieweeID]),
		Interviewer: models.ProfileOf(users[sess.InterviewerID]),
	}
}

func notInState(op, msg string) error {
	return utils.E(utils.CodeFailedPrecondition, op, msg, nil)
}
