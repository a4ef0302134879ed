package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IndexModels lists the indexes per collection.
func IndexModels() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName("username_unique")},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_unique")},
			{Keys: bson.D{{Key: "gender", Value: 1}, {Key: "birthdate", Value: 1}}, Options: options.Index().SetName("gender_birthdate")},
		},
		MoviesCollection: {
			{Keys: bson.D{{Key: "averageRating", Value: -1}, {Key: "_id", Value: 1}}, Options: options.Index().SetName("rating_desc")},
			{Keys: bson.D{{Key: "genres", Value: 1}}, Options: options.Index().SetName("genres")},
			{Keys: bson.D{{Key: "director", Value: 1}}, Options: options.Index().SetName("director")},
			{Keys: bson.D{{Key: "actors", Value: 1}}, Options: options.Index().SetName("actors")},
		},
		InteractionsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "movieId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("user_movie_unique")},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "rating", Value: -1}}, Options: options.Index().SetName("user_rating")},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "updatedAt", Value: -1}}, Options: options.Index().SetName("user_updated")},
			{Keys: bson.D{{Key: "movieId", Value: 1}}, Options: options.Index().SetName("movie")},
		},
	}
}

// EnsureIndexes creates any missing index. Existing indexes with the same
// definition are left alone by the server.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for coll, models := range IndexModels() {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("%s: %w", coll, err)
		}
	}
	return nil
}
