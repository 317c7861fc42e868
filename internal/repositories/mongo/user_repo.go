package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/mockmate/internal/geo"
	"github.com/yoockh/mockmate/internal/models"
	"github.com/yoockh/mockmate/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository is the directory store.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
	Replace(ctx context.Context, u *models.User) error
	// FindInterviewersNear returns interviewers advertising subject within
	// maxMeters of origin, nearest first, ties by id. ActiveSessionCount is
	// left zero.
	FindInterviewersNear(ctx context.Context, subject string, origin models.Point, maxMeters float64) ([]models.InterviewerMatch, error)
}

type userRepo struct {
	col *mongo.Collection
}

func NewUserRepo(db *mongo.Database) UserRepository {
	return &userRepo{col: db.Collection("users")}
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}
	_, err := r.col.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return utils.ErrConflict
	}
	return err
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	out := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.User
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}

// Replace overwrites the record; the role filter keeps role immutable.
func (r *userRepo) Replace(ctx context.Context, u *models.User) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": u.ID, "role": u.Role}, u)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

type nearDoc struct {
	models.User `bson:",inline"`
	DistanceM   float64 `bson:"distance_m"`
}

func (r *userRepo) FindInterviewersNear(ctx context.Context, subject string, origin models.Point, maxMeters float64) ([]models.InterviewerMatch, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.D{
			{Key: "near", Value: bson.D{
				{Key: "type", Value: "Point"},
				{Key: "coordinates", Value: bson.A{origin.Lng(), origin.Lat()}},
			}},
			{Key: "key", Value: "location"},
			{Key: "distanceField", Value: "distance_m"},
			{Key: "maxDistance", Value: maxMeters + geo.BoundaryToleranceMeters},
			{Key: "spherical", Value: true},
			{Key: "query", Value: bson.D{
				{Key: "role", Value: models.RoleInterviewer},
				{Key: "interviewer.domains", Value: subject},
			}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "distance_m", Value: 1}, {Key: "_id", Value: 1}}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []nearDoc
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make([]models.InterviewerMatch, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.InterviewerMatch{
			Interviewer: row.User,
			DistanceKm:  geo.MetersToKm(row.DistanceM),
		})
	}
	return out, nil
}
