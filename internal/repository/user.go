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

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Search(ctx context.Context, query string, limit int) ([]models.UserSummary, error)
	GetProfile(ctx context.Context, id primitive.ObjectID) (*models.Profile, error)
	AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error
	RemoveFriend(ctx context.Context, userID, friendID primitive.ObjectID) error
	FindPeerIDs(ctx context.Context, gender string, bornFrom, bornTo time.Time, exclude primitive.ObjectID) ([]primitive.ObjectID, error)
}

type userRepository struct {
	coll *mongo.Collection
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{coll: db.Collection(database.UsersCollection)}
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (user *models.User, err error) {
	ctx, done := track(ctx, "GetByID", database.UsersCollection)
	defer func() { done(err) }()

	var u models.User
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewNotFoundError("User", id.Hex())
		}
		return nil, models.NewInternalError(err)
	}
	return &u, nil
}

// GetByEmail returns (nil, nil) when no user has the address.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (user *models.User, err error) {
	ctx, done := track(ctx, "GetByEmail", database.UsersCollection)
	defer func() { done(err) }()

	var u models.User
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &u, nil
}

func (r *userRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (exists bool, err error) {
	ctx, done := track(ctx, "ExistsByUsernameOrEmail", database.UsersCollection)
	defer func() { done(err) }()

	filter := bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}}
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) (err error) {
	ctx, done := track(ctx, "Create", database.UsersCollection)
	defer func() { done(err) }()

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Friends == nil {
		user.Friends = []primitive.ObjectID{}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if isDuplicateKeyError(err) {
			return models.NewConflictError("Username or email already in use")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Search(ctx context.Context, query string, limit int) (users []models.UserSummary, err error) {
	ctx, done := track(ctx, "Search", database.UsersCollection)
	defer func() { done(err) }()

	opts := options.Find().
		SetProjection(bson.M{"_id": 1, "username": 1}).
		SetSort(bson.D{{Key: "username", Value: 1}}).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, bson.M{"username": substringRegex(query)}, opts)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	users, err = decodeAll[models.UserSummary](ctx, cur)
	return users, wrapErr(err)
}

func (r *userRepository) GetProfile(ctx context.Context, id primitive.ObjectID) (profile *models.Profile, err error) {
	ctx, done := track(ctx, "GetProfile", database.UsersCollection)
	defer func() { done(err) }()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": id}}},
		{{Key: "$lookup", Value: bson.M{
			"from": database.UsersCollection,
			"let":  bson.M{"ids": bson.M{"$ifNull": bson.A{"$friends", bson.A{}}}},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$in": bson.A{"$_id", "$$ids"}}}},
				bson.M{"$project": bson.M{"username": 1, "email": 1}},
				bson.M{"$sort": bson.D{{Key: "username", Value: 1}}},
			},
			"as": "friendDetails",
		}}},
		{{Key: "$project", Value: bson.M{"hashedPassword": 0, "friends": 0}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	type profileDoc struct {
		models.User   `bson:",inline"`
		FriendDetails []models.FriendDetail `bson:"friendDetails"`
	}
	docs, err := decodeAll[profileDoc](ctx, cur)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(docs) == 0 {
		return nil, models.NewNotFoundError("User", id.Hex())
	}
	return models.NewProfile(&docs[0].User, docs[0].FriendDetails), nil
}

// AddFriend adds friendID to one side of the relation only.
func (r *userRepository) AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) (err error) {
	ctx, done := track(ctx, "AddFriend", database.UsersCollection)
	defer func() { done(err) }()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"friends": friendID}},
	)
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("User", userID.Hex())
	}
	return nil
}

// RemoveFriend removes friendID from one side of the relation only.
func (r *userRepository) RemoveFriend(ctx context.Context, userID, friendID primitive.ObjectID) (err error) {
	ctx, done := track(ctx, "RemoveFriend", database.UsersCollection)
	defer func() { done(err) }()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"friends": friendID}},
	)
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("User", userID.Hex())
	}
	return nil
}

// FindPeerIDs lists users of the given gender born within [bornFrom, bornTo].
func (r *userRepository) FindPeerIDs(ctx context.Context, gender string, bornFrom, bornTo time.Time, exclude primitive.ObjectID) (ids []primitive.ObjectID, err error) {
	ctx, done := track(ctx, "FindPeerIDs", database.UsersCollection)
	defer func() { done(err) }()

	filter := bson.M{
		"_id":       bson.M{"$ne": exclude},
		"gender":    gender,
		"birthdate": bson.M{"$gte": bornFrom, "$lte": bornTo},
	}
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	type idDoc struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	docs, err := decodeAll[idDoc](ctx, cur)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	ids = make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}
