package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"microblog/internal/apperr"
	"microblog/internal/models"
)

// Relational backend behind the same repository interfaces, selected with
// STORE_DRIVER=postgres. Edge sets are stored as JSON columns so a user
// row remains the single atomic unit of an edge update.

type userRow struct {
	ID                  string `gorm:"primaryKey;size:24"`
	FirstName           string `gorm:"column:first_name"`
	LastName            string `gorm:"column:last_name"`
	Username            string `gorm:"uniqueIndex"`
	Password            string
	FollowingIDs        []string `gorm:"column:following_ids;serializer:json"`
	FollowerIDs         []string `gorm:"column:follower_ids;serializer:json"`
	TimeCreatedInMillis int64    `gorm:"index"`
}

func (userRow) TableName() string { return "users" }

type tweetRow struct {
	ID                  string `gorm:"primaryKey;size:24"`
	UserID              string `gorm:"column:user_id;index"`
	Text                string `gorm:"column:tweet"`
	TimeCreatedInMillis int64  `gorm:"index"`
}

func (tweetRow) TableName() string { return "tweets" }

// AutoMigrate creates or updates the relational schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&userRow{}, &tweetRow{})
}

func toUserRow(u *models.User) userRow {
	return userRow{
		ID:                  u.ID,
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		Username:            u.Username,
		Password:            u.Password,
		FollowingIDs:        u.FollowingIDs,
		FollowerIDs:         u.FollowerIDs,
		TimeCreatedInMillis: u.TimeCreatedInMillis,
	}
}

func (r userRow) toModel() models.User {
	following, followers := r.FollowingIDs, r.FollowerIDs
	if following == nil {
		following = []string{}
	}
	if followers == nil {
		followers = []string{}
	}
	return models.User{
		ID:                  r.ID,
		FirstName:           r.FirstName,
		LastName:            r.LastName,
		Username:            r.Username,
		Password:            r.Password,
		FollowingIDs:        following,
		FollowerIDs:         followers,
		TimeCreatedInMillis: r.TimeCreatedInMillis,
	}
}

// GormUserRepository implements UserRepository for PostgreSQL.
type GormUserRepository struct {
	db   *gorm.DB
	opts Options
}

// NewGormUserRepository creates a GormUserRepository.
func NewGormUserRepository(db *gorm.DB, opts Options) *GormUserRepository {
	return &GormUserRepository{db: db, opts: opts.orDefaults()}
}

// newestFirst matches the Mongo backend's sort contract: creation time
// descending, document ID descending as the tie-break.
const newestFirst = "time_created_in_millis DESC, id DESC"

func (r *GormUserRepository) Insert(ctx context.Context, user *models.User) (*models.User, error) {
	saved := *user
	if saved.ID == "" {
		saved.ID = newDocID()
	}
	err := withRetry(ctx, r.opts, "users.insert", func(ctx context.Context) error {
		row := toUserRow(&saved)
		if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
			return apperr.Store(err, "insert user %s", saved.Username)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *GormUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var row userRow
	err := withRetry(ctx, r.opts, "users.getById", func(ctx context.Context) error {
		err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
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
	user := row.toModel()
	return &user, nil
}

func (r *GormUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var row userRow
	err := withRetry(ctx, r.opts, "users.getByUsername", func(ctx context.Context) error {
		err := r.db.WithContext(ctx).First(&row, "username = ?", username).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
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
	user := row.toModel()
	return &user, nil
}

func (r *GormUserRepository) Save(ctx context.Context, user *models.User) error {
	return withRetry(ctx, r.opts, "users.save", func(ctx context.Context) error {
		row := toUserRow(user)
		res := r.db.WithContext(ctx).Model(&userRow{ID: user.ID}).Select("*").Updates(row)
		if res.Error != nil {
			return apperr.Store(res.Error, "save user %s", user.ID)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("user not found with id: %s", user.ID)
		}
		return nil
	})
}

func (r *GormUserRepository) FindAll(ctx context.Context, q PageQuery) (*models.Page[models.User], error) {
	return r.findPage(ctx, "users.findAll", nil, nil, q)
}

func (r *GormUserRepository) FindByIDIn(ctx context.Context, ids []string, q PageQuery) (*models.Page[models.User], error) {
	if len(ids) == 0 {
		return models.EmptyPage[models.User](q.Page, q.PageSize), nil
	}
	return r.findPage(ctx, "users.findByIdIn", "id IN ?", ids, q)
}

func (r *GormUserRepository) findPage(ctx context.Context, op string, cond any, args any, q PageQuery) (*models.Page[models.User], error) {
	page := models.EmptyPage[models.User](q.Page, q.PageSize)
	err := withRetry(ctx, r.opts, op, func(ctx context.Context) error {
		query := r.db.WithContext(ctx).Model(&userRow{})
		if cond != nil {
			query = query.Where(cond, args)
		}
		var total int64
		if err := query.Count(&total).Error; err != nil {
			return apperr.Store(err, "%s count", op)
		}
		var rows []userRow
		err := query.Order(newestFirst).Offset(q.Offset()).Limit(q.PageSize).Find(&rows).Error
		if err != nil {
			return apperr.Store(err, "%s find", op)
		}
		content := make([]models.User, 0, len(rows))
		for _, row := range rows {
			content = append(content, row.toModel())
		}
		page.Content = content
		page.TotalElements = total
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (r *GormUserRepository) DeleteAll(ctx context.Context) error {
	return withRetry(ctx, r.opts, "users.deleteAll", func(ctx context.Context) error {
		if err := r.db.WithContext(ctx).Where("1 = 1").Delete(&userRow{}).Error; err != nil {
			return apperr.Store(err, "delete all users")
		}
		return nil
	})
}

// GormTweetRepository implements TweetRepository for PostgreSQL.
type GormTweetRepository struct {
	db   *gorm.DB
	opts Options
}

// NewGormTweetRepository creates a GormTweetRepository.
func NewGormTweetRepository(db *gorm.DB, opts Options) *GormTweetRepository {
	return &GormTweetRepository{db: db, opts: opts.orDefaults()}
}

func (r *GormTweetRepository) Insert(ctx context.Context, tweet *models.Tweet) (*models.Tweet, error) {
	saved := *tweet
	if saved.ID == "" {
		saved.ID = newDocID()
	}
	err := withRetry(ctx, r.opts, "tweets.insert", func(ctx context.Context) error {
		row := tweetRow{ID: saved.ID, UserID: saved.UserID, Text: saved.Text, TimeCreatedInMillis: saved.TimeCreatedInMillis}
		if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
			return apperr.Store(err, "insert tweet for user %s", saved.UserID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *GormTweetRepository) GetByID(ctx context.Context, id string) (*models.Tweet, error) {
	var row tweetRow
	err := withRetry(ctx, r.opts, "tweets.getById", func(ctx context.Context) error {
		err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
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
	return &models.Tweet{ID: row.ID, UserID: row.UserID, Text: row.Text, TimeCreatedInMillis: row.TimeCreatedInMillis}, nil
}

func (r *GormTweetRepository) FindByUserID(ctx context.Context, userID string, q PageQuery) (*models.Page[models.Tweet], error) {
	return r.findPage(ctx, "tweets.findByUserId", "user_id = ?", userID, q)
}

func (r *GormTweetRepository) FindByUserIDIn(ctx context.Context, userIDs []string, q PageQuery) (*models.Page[models.Tweet], error) {
	if len(userIDs) == 0 {
		return models.EmptyPage[models.Tweet](q.Page, q.PageSize), nil
	}
	return r.findPage(ctx, "tweets.findByUserIdIn", "user_id IN ?", userIDs, q)
}

func (r *GormTweetRepository) findPage(ctx context.Context, op string, cond any, args any, q PageQuery) (*models.Page[models.Tweet], error) {
	page := models.EmptyPage[models.Tweet](q.Page, q.PageSize)
	err := withRetry(ctx, r.opts, op, func(ctx context.Context) error {
		query := r.db.WithContext(ctx).Model(&tweetRow{})
		if cond != nil {
			query = query.Where(cond, args)
		}
		var total int64
		if err := query.Count(&total).Error; err != nil {
			return apperr.Store(err, "%s count", op)
		}
		var rows []tweetRow
		err := query.Order(newestFirst).Offset(q.Offset()).Limit(q.PageSize).Find(&rows).Error
		if err != nil {
			return apperr.Store(err, "%s find", op)
		}
		content := make([]models.Tweet, 0, len(rows))
		for _, row := range rows {
			content = append(content, models.Tweet{ID: row.ID, UserID: row.UserID, Text: row.Text, TimeCreatedInMillis: row.TimeCreatedInMillis})
		}
		page.Content = content
		page.TotalElements = total
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (r *GormTweetRepository) DeleteAll(ctx context.Context) error {
	return withRetry(ctx, r.opts, "tweets.deleteAll", func(ctx context.Context) error {
		if err := r.db.WithContext(ctx).Where("1 = 1").Delete(&tweetRow{}).Error; err != nil {
			return apperr.Store(err, "delete all tweets")
		}
		return nil
	})
}
