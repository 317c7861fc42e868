package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/mockmate/internal/models"
	"github.com/yoockh/mockmate/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SessionRepository interface {
	Create(ctx context.Context, s *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	// ListByParticipant returns sessions bound to userID, newest first.
	// An empty status means any status.
	ListByParticipant(ctx context.Context, userID string, status models.SessionStatus) ([]models.Session, error)
	// SwapStatus applies change only if the session is currently in from.
	// ended_at is stored as max(change.EndedAt, started_at). It returns
	// (nil, nil) when the guard did not match.
	SwapStatus(ctx context.Context, id string, from models.SessionStatus, change models.SessionChange) (*models.Session, error)
	// MarkStarted sets started_at on an accepted session that has not
	// started yet. It returns (nil, nil) when the guard did not match.
	MarkStarted(ctx context.Context, id string, at time.Time) (*models.Session, error)
	CountActiveByInterviewers(ctx context.Context, interviewerIDs []string) (map[string]int64, error)
}

type sessionRepo struct {
	col *mongo.Collection
}

func NewSessionRepo(db *mongo.Database) SessionRepository {
	return &sessionRepo{col: db.Collection("sessions")}
}

func (r *sessionRepo) Create(ctx context.Context, s *models.Session) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.CreatedAt
	}
	_, err := r.col.InsertOne(ctx, s)
	if mongo.IsDuplicateKeyError(err) {
		return utils.ErrConflict
	}
	return err
}

func (r *sessionRepo) GetByID(ctx context.Context, id string) (*models.Session, error) {
	var s models.Session
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) ListByParticipant(ctx context.Context, userID string, status models.SessionStatus) ([]models.Session, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"interviewee_id": userID},
		bson.M{"interviewer_id": userID},
	}}
	if status != "" {
		filter["status"] = status
	}

	cur, err := r.col.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Session{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sessionRepo) SwapStatus(ctx context.Context, id string, from models.SessionStatus, change models.SessionChange) (*models.Session, error) {
	set := bson.D{
		{Key: "status", Value: change.Status},
		{Key: "updated_at", Value: change.UpdatedAt.UTC()},
	}
	if change.StartedAt != nil {
		set = append(set, bson.E{Key: "started_at", Value: change.StartedAt.UTC()})
	}
	if change.EndedAt != nil {
		// $max ignores a missing started_at
		set = append(set, bson.E{Key: "ended_at", Value: bson.D{
			{Key: "$max", Value: bson.A{change.EndedAt.UTC(), "$started_at"}},
		}})
	}

	var s models.Session
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": from},
		mongo.Pipeline{{{Key: "$set", Value: set}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) MarkStarted(ctx context.Context, id string, at time.Time) (*models.Session, error) {
	return r.findOneAndSet(ctx,
		bson.M{"_id": id, "status": models.SessionAccepted, "started_at": nil},
		bson.M{"started_at": at.UTC(), "updated_at": at.UTC()},
	)
}

func (r *sessionRepo) findOneAndSet(ctx context.Context, filter, set bson.M) (*models.Session, error) {
	var s models.Session
	err := r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) CountActiveByInterviewers(ctx context.Context, interviewerIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(interviewerIDs))
	if len(interviewerIDs) == 0 {
		return out, nil
	}

	cur, err := r.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"interviewer_id": bson.M{"$in": interviewerIDs},
			"status":         bson.M{"$in": models.ActiveStatuses},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$interviewer_id",
			"count": bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row.Count
	}
	return out, nil
}
