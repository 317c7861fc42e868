package config

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// users: $geoNear needs exactly one 2dsphere index on the collection
	users := db.Collection("users")
	_, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "location", Value: "2dsphere"}},
			Options: options.Index().SetName("geo_location"),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}, {Key: "interviewer.domains", Value: 1}},
			Options: options.Index().SetName("by_role_domain"),
		},
	})
	if err != nil {
		return err
	}

	sessions := db.Collection("sessions")
	_, err = sessions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "interviewee_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("by_interviewee_status"),
		},
		{
			Keys:    bson.D{{Key: "interviewer_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("by_interviewer_status"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("by_created"),
		},
	})
	return err
}
