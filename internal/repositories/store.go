package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"microblog/internal/models"
)

// PageQuery is a zero-based page window. Callers validate it before the
// store is touched; repositories assume it is well-formed.
type PageQuery struct {
	Page     int
	PageSize int
}

// Offset returns the number of documents to skip.
func (q PageQuery) Offset() int { return q.Page * q.PageSize }

// Options carries the per-operation hardening knobs shared by all store
// backends.
type Options struct {
	// Timeout bounds each individual store operation attempt.
	Timeout time.Duration
	// RetryAttempts is the total number of attempts for transient failures.
	RetryAttempts int
	// RetryBaseDelay is the first backoff delay; it doubles per attempt.
	RetryBaseDelay time.Duration
}

// DefaultOptions are used when a zero Options is supplied.
var DefaultOptions = Options{
	Timeout:        5 * time.Second,
	RetryAttempts:  3,
	RetryBaseDelay: 100 * time.Millisecond,
}

func (o Options) orDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultOptions.Timeout
	}
	if o.RetryAttempts <= 0 {
		o.RetryAttempts = DefaultOptions.RetryAttempts
	}
	if o.RetryBaseDelay <= 0 {
		o.RetryBaseDelay = DefaultOptions.RetryBaseDelay
	}
	return o
}

// UserRepository defines the interface for user document operations.
// All finds sort by timeCreatedInMillis descending with an insertion-order
// tie-break, so pagination is over a total order.
type UserRepository interface {
	// Insert persists a new user and returns it with its store-assigned ID.
	Insert(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// Save replaces the whole user document. This put is the atomicity
	// boundary for edge-set updates: either the full update lands or none
	// of it does.
	Save(ctx context.Context, user *models.User) error
	FindAll(ctx context.Context, q PageQuery) (*models.Page[models.User], error)
	FindByIDIn(ctx context.Context, ids []string, q PageQuery) (*models.Page[models.User], error)
	DeleteAll(ctx context.Context) error
}

// TweetRepository defines the interface for tweet document operations.
type TweetRepository interface {
	Insert(ctx context.Context, tweet *models.Tweet) (*models.Tweet, error)
	GetByID(ctx context.Context, id string) (*models.Tweet, error)
	FindByUserID(ctx context.Context, userID string, q PageQuery) (*models.Page[models.Tweet], error)
	FindByUserIDIn(ctx context.Context, userIDs []string, q PageQuery) (*models.Page[models.Tweet], error)
	DeleteAll(ctx context.Context) error
}

// newDocID assigns an opaque document ID. ObjectID hex strings are
// time-prefixed, so lexicographic order tracks insertion order and serves
// as the pagination tie-break in the Mongo and Postgres backends.
func newDocID() string {
	return primitive.NewObjectID().Hex()
}
