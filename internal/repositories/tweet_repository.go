package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"microblog/internal/apperr"
	"microblog/internal/models"
)

// MongoTweetRepository implements TweetRepository for MongoDB.
type MongoTweetRepository struct {
	collection *mongo.Collection
	opts       Options
}

// NewMongoTweetRepository creates a MongoTweetRepository over the "tweets"
// collection.
func NewMongoTweetRepository(db *mongo.Database, opts Options) *MongoTweetRepository {
	return &MongoTweetRepository{collection: db.Collection("tweets"), opts: opts.orDefaults()}
}

func (r *MongoTweetRepository) Insert(ctx context.Context, tweet *models.Tweet) (*models.Tweet, error) {
	saved := *tweet
	if saved.ID == "" {
		saved.ID = newDocID()
	}
	err := withRetry(ctx, r.opts, "tweets.insert", func(ctx context.Context) error {
		if _, err := r.collection.InsertOne(ctx, saved); err != nil {
			return apperr.Store(err, "insert tweet for user %s", saved.UserID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *MongoTweetRepository) GetByID(ctx context.Context, id string) (*models.Tweet, error) {
	var tweet models.Tweet
	err := withRetry(ctx, r.opts, "tweets.getById", func(ctx context.Context) error {
		err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tweet)
		if err == mongo.ErrNoDocuments {
			return apperr.NotFound("tweet not found with id: %s", id)
		}
		if err != nil {
			return apperr.Store(err, "get tweet by id %s", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tweet, nil
}

func (r *MongoTweetRepository) FindByUserID(ctx context.Context, userID string, q PageQuery) (*models.Page[models.Tweet], error) {
	return r.findPage(ctx, "tweets.findByUserId", bson.M{"userId": userID}, q)
}

func (r *MongoTweetRepository) FindByUserIDIn(ctx context.Context, userIDs []string, q PageQuery) (*models.Page[models.Tweet], error) {
	if len(userIDs) == 0 {
		return models.EmptyPage[models.Tweet](q.Page, q.PageSize), nil
	}
	return r.findPage(ctx, "tweets.findByUserIdIn", bson.M{"userId": bson.M{"$in": userIDs}}, q)
}

func (r *MongoTweetRepository) findPage(ctx context.Context, op string, filter bson.M, q PageQuery) (*models.Page[models.Tweet], error) {
	page := models.EmptyPage[models.Tweet](q.Page, q.PageSize)
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
		var tweets []models.Tweet
		if err = cursor.All(ctx, &tweets); err != nil {
			return apperr.Store(err, "%s decode", op)
		}
		if tweets == nil {
			tweets = []models.Tweet{}
		}
		page.Content = tweets
		page.TotalElements = total
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (r *MongoTweetRepository) DeleteAll(ctx context.Context) error {
	return withRetry(ctx, r.opts, "tweets.deleteAll", func(ctx context.Context) error {
		if _, err := r.collection.DeleteMany(ctx, bson.D{}); err != nil {
			return apperr.Store(err, "delete all tweets")
		}
		return nil
	})
}
