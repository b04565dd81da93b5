// Package service implements the timeline/feed query operations. All
// operations are read-only, paginated and sorted newest first; the feed is
// fanned out on read from the caller's followingIds, never precomputed.
package service

import (
	"context"
	"log/slog"

	"microblog/internal/apperr"
	"microblog/internal/models"
	"microblog/internal/repositories"
)

const maxPageSize = 100

// UserService answers user, tweet and feed queries.
type UserService struct {
	users  repositories.UserRepository
	tweets repositories.TweetRepository
	log    *slog.Logger
}

// NewUserService builds a UserService with explicit dependencies.
func NewUserService(users repositories.UserRepository, tweets repositories.TweetRepository, log *slog.Logger) *UserService {
	return &UserService{users: users, tweets: tweets, log: log}
}

func validatePage(page, pageSize int) error {
	if page < 0 {
		return apperr.Validation("page must not be negative, got %d", page)
	}
	if pageSize < 1 {
		return apperr.Validation("pageSize must be positive, got %d", pageSize)
	}
	if pageSize > maxPageSize {
		return apperr.Validation("pageSize must not exceed %d, got %d", maxPageSize, pageSize)
	}
	return nil
}

// GetUserByUsername resolves a username to its user, failing with NotFound
// when no such username exists.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.users.GetByUsername(ctx, username)
}

// GetUsers returns all users, newest first.
func (s *UserService) GetUsers(ctx context.Context, page, pageSize int) (*models.Page[models.User], error) {
	if err := validatePage(page, pageSize); err != nil {
		return nil, err
	}
	return s.users.FindAll(ctx, repositories.PageQuery{Page: page, PageSize: pageSize})
}

// GetFeed returns tweets authored by the accounts the user follows. Cost
// scales with the followed accounts' tweet volume at query time.
func (s *UserService) GetFeed(ctx context.Context, username string, page, pageSize int) (*models.Page[models.Tweet], error) {
	if err := validatePage(page, pageSize); err != nil {
		return nil, err
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.tweets.FindByUserIDIn(ctx, user.FollowingIDs, repositories.PageQuery{Page: page, PageSize: pageSize})
}

// GetTweets returns tweets authored by the user only.
func (s *UserService) GetTweets(ctx context.Context, username string, page, pageSize int) (*models.Page[models.Tweet], error) {
	if err := validatePage(page, pageSize); err != nil {
		return nil, err
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.tweets.FindByUserID(ctx, user.ID, repositories.PageQuery{Page: page, PageSize: pageSize})
}

// GetFollowers returns the users following the given user.
func (s *UserService) GetFollowers(ctx context.Context, username string, page, pageSize int) (*models.Page[models.User], error) {
	if err := validatePage(page, pageSize); err != nil {
		return nil, err
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.users.FindByIDIn(ctx, user.FollowerIDs, repositories.PageQuery{Page: page, PageSize: pageSize})
}

// GetFollowings returns the users the given user follows.
func (s *UserService) GetFollowings(ctx context.Context, username string, page, pageSize int) (*models.Page[models.User], error) {
	if err := validatePage(page, pageSize); err != nil {
		return nil, err
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.users.FindByIDIn(ctx, user.FollowingIDs, repositories.PageQuery{Page: page, PageSize: pageSize})
}

// Authenticate resolves credentials to a user. An unknown username and a
// wrong password both come back as the same Unauthorized so callers cannot
// enumerate accounts. Store failures pass through unchanged.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.Unauthorized("invalid credentials")
		}
		return nil, err
	}
	if user.Password != password {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	return user, nil
}

// Login authenticates and returns the user's feed page.
func (s *UserService) Login(ctx context.Context, username, password string, page, pageSize int) (*models.Page[models.Tweet], error) {
	if err := validatePage(page, pageSize); err != nil {
		return nil, err
	}
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return s.tweets.FindByUserIDIn(ctx, user.FollowingIDs, repositories.PageQuery{Page: page, PageSize: pageSize})
}
