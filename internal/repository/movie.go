package repository

import (
	"context"
	"errors"

	"panoram/internal/database"
	"panoram/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MovieQuery filters catalog lookups. Empty slices and a zero rating
// disable their clause; set clauses combine with AND.
type MovieQuery struct {
	Genres     []string
	Directors  []string
	Actors     []string
	MinRating  float64
	ExcludeIDs []int64
	Limit      int
}

func (q MovieQuery) filter() bson.M {
	f := bson.M{}
	if len(q.Genres) > 0 {
		f["genres"] = bson.M{"$in": q.Genres}
	}
	if len(q.Directors) > 0 {
		f["director"] = bson.M{"$in": q.Directors}
	}
	if len(q.Actors) > 0 {
		f["actors"] = bson.M{"$in": q.Actors}
	}
	if q.MinRating > 0 {
		f["averageRating"] = bson.M{"$gte": q.MinRating}
	}
	if len(q.ExcludeIDs) > 0 {
		f["_id"] = bson.M{"$nin": q.ExcludeIDs}
	}
	return f
}

// MovieRepository defines persistence operations for the catalog.
type MovieRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Movie, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.Movie, error)
	TopRated(ctx context.Context, limit int) ([]models.Movie, error)
	Search(ctx context.Context, query string, limit int) ([]models.Movie, error)
	Find(ctx context.Context, q MovieQuery) ([]models.Movie, error)
	TopGenres(ctx context.Context, movieIDs []int64, n int) ([]string, error)
	ListUnenriched(ctx context.Context) ([]models.Movie, error)
	SetCredits(ctx context.Context, id int64, director string, actors []string) error
	UpsertMany(ctx context.Context, movies []models.Movie) (int, error)
}

type movieRepository struct {
	coll *mongo.Collection
}

// NewMovieRepository returns a new MovieRepository implementation.
func NewMovieRepository(db *mongo.Database) MovieRepository {
	return &movieRepository{coll: db.Collection(database.MoviesCollection)}
}

func (r *movieRepository) GetByID(ctx context.Context, id int64) (movie *models.Movie, err error) {
	ctx, done := track(ctx, "GetByID", database.MoviesCollection)
	defer func() { done(err) }()

	var m models.Movie
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewNotFoundError("Movie", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &m, nil
}

// GetByIDs returns the movies that exist among ids, in no particular order.
func (r *movieRepository) GetByIDs(ctx context.Context, ids []int64) (movies []models.Movie, err error) {
	if len(ids) == 0 {
		return []models.Movie{}, nil
	}
	ctx, done := track(ctx, "GetByIDs", database.MoviesCollection)
	defer func() { done(err) }()

	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	movies, err = decodeAll[models.Movie](ctx, cur)
	return movies, wrapErr(err)
}

func (r *movieRepository) TopRated(ctx context.Context, limit int) ([]models.Movie, error) {
	return r.find(ctx, "TopRated", bson.M{}, limit)
}

func (r *movieRepository) Search(ctx context.Context, query string, limit int) ([]models.Movie, error) {
	return r.find(ctx, "Search", bson.M{"title": substringRegex(query)}, limit)
}

func (r *movieRepository) Find(ctx context.Context, q MovieQuery) ([]models.Movie, error) {
	return r.find(ctx, "Find", q.filter(), q.Limit)
}

// find runs a rating-ordered query; ties fall back to ascending id.
func (r *movieRepository) find(ctx context.Context, op string, filter bson.M, limit int) (movies []models.Movie, err error) {
	ctx, done := track(ctx, op, database.MoviesCollection)
	defer func() { done(err) }()

	opts := options.Find().SetSort(sortByRating())
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	movies, err = decodeAll[models.Movie](ctx, cur)
	return movies, wrapErr(err)
}

// TopGenres tallies genres across movieIDs, one count per genre per movie,
// and returns the n most frequent. Ties order by genre name.
func (r *movieRepository) TopGenres(ctx context.Context, movieIDs []int64, n int) (genres []string, err error) {
	if len(movieIDs) == 0 || n <= 0 {
		return []string{}, nil
	}
	ctx, done := track(ctx, "TopGenres", database.MoviesCollection)
	defer func() { done(err) }()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": bson.M{"$in": movieIDs}}}},
		{{Key: "$project", Value: bson.M{"genres": bson.M{"$setUnion": bson.A{bson.M{"$ifNull": bson.A{"$genres", bson.A{}}}}}}}},
		{{Key: "$unwind", Value: "$genres"}},
		{{Key: "$group", Value: bson.M{"_id": "$genres", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: n}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	counts, err := decodeAll[models.GenreCount](ctx, cur)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	genres = make([]string, 0, len(counts))
	for _, c := range counts {
		genres = append(genres, c.Genre)
	}
	return genres, nil
}

// ListUnenriched returns movies whose cast was never written.
func (r *movieRepository) ListUnenriched(ctx context.Context) (movies []models.Movie, err error) {
	ctx, done := track(ctx, "ListUnenriched", database.MoviesCollection)
	defer func() { done(err) }()

	filter := bson.M{"$or": bson.A{
		bson.M{"actors": bson.M{"$exists": false}},
		bson.M{"actors": bson.M{"$size": 0}},
		bson.M{"actors": nil},
	}}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	movies, err = decodeAll[models.Movie](ctx, cur)
	return movies, wrapErr(err)
}

func (r *movieRepository) SetCredits(ctx context.Context, id int64, director string, actors []string) (err error) {
	ctx, done := track(ctx, "SetCredits", database.MoviesCollection)
	defer func() { done(err) }()

	if actors == nil {
		actors = []string{}
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"director": director, "actors": actors}},
	)
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("Movie", id)
	}
	return nil
}

// UpsertMany writes catalog entries keyed by id. Credits already stored are
// kept when the incoming entry has none.
func (r *movieRepository) UpsertMany(ctx context.Context, movies []models.Movie) (n int, err error) {
	if len(movies) == 0 {
		return 0, nil
	}
	ctx, done := track(ctx, "UpsertMany", database.MoviesCollection)
	defer func() { done(err) }()

	writes := make([]mongo.WriteModel, 0, len(movies))
	for _, m := range movies {
		set := bson.M{
			"title":         m.Title,
			"releaseYear":   m.ReleaseYear,
			"genres":        nonNil(m.Genres),
			"averageRating": m.AverageRating,
			"posterUrl":     m.PosterURL,
			"synopsis":      m.Synopsis,
		}
		if m.Director != "" {
			set["director"] = m.Director
		}
		if len(m.Actors) > 0 {
			set["actors"] = m.Actors
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": m.ID}).
			SetUpdate(bson.M{"$set": set}).
			SetUpsert(true))
	}

	res, err := r.coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return int(res.UpsertedCount + res.ModifiedCount), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
