package repository

import (
	"context"
	"errors"
	"time"

	"panoram/internal/database"
	"panoram/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InteractionRepository defines persistence operations for user/movie interactions.
type InteractionRepository interface {
	Upsert(ctx context.Context, userID primitive.ObjectID, movieID int64, patch models.InteractionPatch) (bool, error)
	Get(ctx context.Context, userID primitive.ObjectID, movieID int64) (*models.Interaction, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Interaction, error)
	MoviesByFlag(ctx context.Context, userID primitive.ObjectID, flag models.InteractionFlag) ([]models.Movie, error)
	WatchedMovieIDs(ctx context.Context, userID primitive.ObjectID) ([]int64, error)
	RatedMovieIDs(ctx context.Context, userID primitive.ObjectID, minRating int) ([]int64, error)
	CountEndorsements(ctx context.Context, userIDs []primitive.ObjectID, minRating int, exclude []int64, limit int) ([]models.MovieCount, error)
}

type interactionRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewInteractionRepository returns a new InteractionRepository implementation.
func NewInteractionRepository(db *mongo.Database) InteractionRepository {
	return &interactionRepository{
		coll: db.Collection(database.InteractionsCollection),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Upsert sets only the fields present in patch and reports whether the
// interaction was created.
func (r *interactionRepository) Upsert(ctx context.Context, userID primitive.ObjectID, movieID int64, patch models.InteractionPatch) (created bool, err error) {
	ctx, done := track(ctx, "Upsert", database.InteractionsCollection)
	defer func() { done(err) }()

	set := bson.M{
		"userId":    userID,
		"movieId":   movieID,
		"updatedAt": r.now(),
	}
	if patch.Rating != nil {
		set["rating"] = *patch.Rating
	}
	if patch.HasWatched != nil {
		set["hasWatched"] = *patch.HasWatched
	}
	if patch.IsFavorite != nil {
		set["isFavorite"] = *patch.IsFavorite
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"userId": userID, "movieId": movieID},
		bson.M{"$set": set},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return res.UpsertedCount > 0, nil
}

// Get returns (nil, nil) when the user never interacted with the movie.
func (r *interactionRepository) Get(ctx context.Context, userID primitive.ObjectID, movieID int64) (interaction *models.Interaction, err error) {
	ctx, done := track(ctx, "Get", database.InteractionsCollection)
	defer func() { done(err) }()

	var in models.Interaction
	if err := r.coll.FindOne(ctx, bson.M{"userId": userID, "movieId": movieID}).Decode(&in); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &in, nil
}

func (r *interactionRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) (list []models.Interaction, err error) {
	ctx, done := track(ctx, "ListByUser", database.InteractionsCollection)
	defer func() { done(err) }()

	cur, err := r.coll.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(bson.D{{Key: "movieId", Value: 1}}))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	list, err = decodeAll[models.Interaction](ctx, cur)
	return list, wrapErr(err)
}

// MoviesByFlag joins the user's flagged interactions to the catalog, most
// recently updated first.
func (r *interactionRepository) MoviesByFlag(ctx context.Context, userID primitive.ObjectID, flag models.InteractionFlag) (movies []models.Movie, err error) {
	ctx, done := track(ctx, "MoviesByFlag", database.InteractionsCollection)
	defer func() { done(err) }()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID, string(flag): true}}},
		{{Key: "$sort", Value: bson.D{{Key: "updatedAt", Value: -1}, {Key: "movieId", Value: 1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         database.MoviesCollection,
			"localField":   "movieId",
			"foreignField": "_id",
			"as":           "movie",
		}}},
		{{Key: "$unwind", Value: "$movie"}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$movie"}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	movies, err = decodeAll[models.Movie](ctx, cur)
	return movies, wrapErr(err)
}

func (r *interactionRepository) WatchedMovieIDs(ctx context.Context, userID primitive.ObjectID) ([]int64, error) {
	return r.movieIDs(ctx, "WatchedMovieIDs", bson.M{"userId": userID, "hasWatched": true})
}

func (r *interactionRepository) RatedMovieIDs(ctx context.Context, userID primitive.ObjectID, minRating int) ([]int64, error) {
	return r.movieIDs(ctx, "RatedMovieIDs", bson.M{"userId": userID, "rating": bson.M{"$gte": minRating}})
}

func (r *interactionRepository) movieIDs(ctx context.Context, op string, filter bson.M) (ids []int64, err error) {
	ctx, done := track(ctx, op, database.InteractionsCollection)
	defer func() { done(err) }()

	opts := options.Find().
		SetProjection(bson.M{"movieId": 1, "_id": 0}).
		SetSort(bson.D{{Key: "movieId", Value: 1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	type movieRef struct {
		MovieID int64 `bson:"movieId"`
	}
	refs, err := decodeAll[movieRef](ctx, cur)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	ids = make([]int64, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.MovieID)
	}
	return ids, nil
}

// CountEndorsements groups the given users' ratings of at least minRating
// by movie, counting distinct users, highest count first. Ties order by
// movie id.
func (r *interactionRepository) CountEndorsements(ctx context.Context, userIDs []primitive.ObjectID, minRating int, exclude []int64, limit int) (counts []models.MovieCount, err error) {
	if len(userIDs) == 0 {
		return []models.MovieCount{}, nil
	}
	ctx, done := track(ctx, "CountEndorsements", database.InteractionsCollection)
	defer func() { done(err) }()

	match := bson.M{
		"userId": bson.M{"$in": userIDs},
		"rating": bson.M{"$gte": minRating},
	}
	if len(exclude) > 0 {
		match["movieId"] = bson.M{"$nin": exclude}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": "$movieId", "users": bson.M{"$addToSet": "$userId"}}}},
		{{Key: "$project", Value: bson.M{"count": bson.M{"$size": "$users"}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	counts, err = decodeAll[models.MovieCount](ctx, cur)
	return counts, wrapErr(err)
}
