package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"microblog/internal/apperr"
	"microblog/internal/models"
)

// MongoUserRepository implements UserRepository for MongoDB.
type MongoUserRepository struct {
	collection *mongo.Collection
	opts       Options
}

// NewMongoUserRepository creates a MongoUserRepository over the "users"
// collection.
func NewMongoUserRepository(db *mongo.Database, opts Options) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users"), opts: opts.orDefaults()}
}

// sortNewestFirst orders by creation time descending; _id breaks
// same-millisecond ties so page windows stay disjoint.
func sortNewestFirst() bson.D {
	return bson.D{{Key: "timeCreatedInMillis", Value: -1}, {Key: "_id", Value: -1}}
}

func (r *MongoUserRepository) Insert(ctx context.Context, user *models.User) (*models.User, error) {
	saved := *user
	if saved.ID == "" {
		saved.ID = newDocID()
	}
	err := withRetry(ctx, r.opts, "users.insert", func(ctx context.Context) error {
		if _, err := r.collection.InsertOne(ctx, saved); err != nil {
			return apperr.Store(err, "insert user %s", saved.Username)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := withRetry(ctx, r.opts, "users.getById", func(ctx context.Context) error {
		err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
		if err == mongo.ErrNoDocuments {
			return apperr.NotFound("user not found with id: %s", id)
		}
		if err != nil {
			return apperr.Store(err, "get user by id %s", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *MongoUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := withRetry(ctx, r.opts, "users.getByUsername", func(ctx context.Context) error {
		err := r.collection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
		if err == mongo.ErrNoDocuments {
			return apperr.NotFound("user not found with username: %s", username)
		}
		if err != nil {
			return apperr.Store(err, "get user by username %s", username)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *MongoUserRepository) Save(ctx context.Context, user *models.User) error {
	return withRetry(ctx, r.opts, "users.save", func(ctx context.Context) error {
		res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
		if err != nil {
			return apperr.Store(err, "save user %s", user.ID)
		}
		if res.MatchedCount == 0 {
			return apperr.NotFound("user not found with id: %s", user.ID)
		}
		return nil
	})
}

func (r *MongoUserRepository) FindAll(ctx context.Context, q PageQuery) (*models.Page[models.User], error) {
	return r.findPage(ctx, "users.findAll", bson.M{}, q)
}

func (r *MongoUserRepository) FindByIDIn(ctx context.Context, ids []string, q PageQuery) (*models.Page[models.User], error) {
	if len(ids) == 0 {
		return models.EmptyPage[models.User](q.Page, q.PageSize), nil
	}
	return r.findPage(ctx, "users.findByIdIn", bson.M{"_id": bson.M{"$in": ids}}, q)
}

func (r *MongoUserRepository) findPage(ctx context.Context, op string, filter bson.M, q PageQuery) (*models.Page[models.User], error) {
	page := models.EmptyPage[models.User](q.Page, q.PageSize)
	err := withRetry(ctx, r.opts, op, func(ctx context.Context) error {
		total, err := r.collection.CountDocuments(ctx, filter)
		if err != nil {
			return apperr.Store(err, "%s count", op)
		}
		findOptions := options.Find().
			SetSkip(int64(q.Offset())).
			SetLimit(int64(q.PageSize)).
			SetSort(sortNewestFirst())
		cursor, err := r.collection.Find(ctx, filter, findOptions)
		if err != nil {
			return apperr.Store(err, "%s find", op)
		}
		defer cursor.Close(ctx)
		var users []models.User
		if err = cursor.All(ctx, &users); err != nil {
			return apperr.Store(err, "%s decode", op)
		}
		if users == nil {
			users = []models.User{}
		}
		page.Content = users
		page.TotalElements = total
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (r *MongoUserRepository) DeleteAll(ctx context.Context) error {
	return withRetry(ctx, r.opts, "users.deleteAll", func(ctx context.Context) error {
		if _, err := r.collection.DeleteMany(ctx, bson.D{}); err != nil {
			return apperr.Store(err, "delete all users")
		}
		return nil
	})
}
