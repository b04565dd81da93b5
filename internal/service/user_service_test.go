package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microblog/internal/apperr"
	"microblog/internal/models"
	"microblog/internal/repositories"
	"microblog/internal/seeder"
)

func seededService(t *testing.T, users, tweetsPerUser int) *UserService {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	userRepo := repositories.NewMemoryUserRepository()
	tweetRepo := repositories.NewMemoryTweetRepository()
	s := seeder.New(userRepo, tweetRepo, seeder.Config{NumberOfUsers: users, TweetsPerUser: tweetsPerUser}, log)
	require.NoError(t, s.Run(context.Background()))
	return NewUserService(userRepo, tweetRepo, log)
}

func TestGetUserByUsername(t *testing.T) {
	svc := seededService(t, 3, 1)

	user, err := svc.GetUserByUsername(context.Background(), "username1")
	require.NoError(t, err)
	assert.Equal(t, "first1", user.FirstName)
	assert.Equal(t, "last1", user.LastName)

	_, err = svc.GetUserByUsername(context.Background(), "nonexistent")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestGetUsersPagination(t *testing.T) {
	svc := seededService(t, 5, 1)
	ctx := context.Background()

	first, err := svc.GetUsers(ctx, 0, 2)
	require.NoError(t, err)
	second, err := svc.GetUsers(ctx, 1, 2)
	require.NoError(t, err)

	assert.EqualValues(t, 5, first.TotalElements)
	require.Len(t, first.Content, 2)
	require.Len(t, second.Content, 2)

	// Disjoint, contiguous windows of one descending ordering.
	seen := make(map[string]bool)
	var last int64 = 1<<63 - 1
	for _, page := range []*models.Page[models.User]{first, second} {
		for _, u := range page.Content {
			assert.False(t, seen[u.ID], "pages must be disjoint")
			seen[u.ID] = true
			assert.LessOrEqual(t, u.TimeCreatedInMillis, last)
			last = u.TimeCreatedInMillis
		}
	}
}

func TestGetFeedContainsOnlyFollowedAuthors(t *testing.T) {
	svc := seededService(t, 3, 2)
	ctx := context.Background()

	me, err := svc.GetUserByUsername(ctx, "username0")
	require.NoError(t, err)

	feed, err := svc.GetFeed(ctx, "username0", 0, 10)
	require.NoError(t, err)

	// 3-user complete graph, 2 tweets each: the feed holds exactly the 4
	// tweets authored by the two followed accounts.
	assert.EqualValues(t, 4, feed.TotalElements)
	require.Len(t, feed.Content, 4)
	for _, tweet := range feed.Content {
		assert.NotEqual(t, me.ID, tweet.UserID, "own tweets never appear in the feed")
		assert.True(t, me.Follows(tweet.UserID))
	}

	// Newest first.
	for i := 1; i < len(feed.Content); i++ {
		assert.GreaterOrEqual(t, feed.Content[i-1].TimeCreatedInMillis, feed.Content[i].TimeCreatedInMillis)
	}
}

func TestGetTweetsReturnsOwnTweetsOnly(t *testing.T) {
	svc := seededService(t, 3, 2)
	ctx := context.Background()

	me, err := svc.GetUserByUsername(ctx, "username2")
	require.NoError(t, err)

	tweets, err := svc.GetTweets(ctx, "username2", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, tweets.TotalElements)
	for _, tweet := range tweets.Content {
		assert.Equal(t, me.ID, tweet.UserID)
	}
}

func TestGetFollowersAndFollowings(t *testing.T) {
	svc := seededService(t, 4, 1)
	ctx := context.Background()

	followers, err := svc.GetFollowers(ctx, "username0", 0, 10)
	require.NoError(t, err)
	followings, err := svc.GetFollowings(ctx, "username0", 0, 10)
	require.NoError(t, err)

	assert.EqualValues(t, 3, followers.TotalElements)
	assert.EqualValues(t, 3, followings.TotalElements)
	for _, u := range followings.Content {
		assert.NotEqual(t, "username0", u.Username)
	}

	_, err = svc.GetFollowers(ctx, "ghost", 0, 10)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestPaginationValidation(t *testing.T) {
	svc := seededService(t, 2, 1)
	ctx := context.Background()

	_, err := svc.GetUsers(ctx, -1, 10)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.GetUsers(ctx, 0, 0)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.GetFeed(ctx, "username0", 0, -5)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.GetUsers(ctx, 0, 101)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestLoginMasksNotFoundAndWrongPassword(t *testing.T) {
	svc := seededService(t, 2, 1)
	ctx := context.Background()

	_, errWrongUser := svc.Login(ctx, "ghost", "password0", 0, 10)
	_, errWrongPass := svc.Login(ctx, "username0", "wrongpass", 0, 10)

	// Both failure modes collapse into the same kind so accounts cannot
	// be enumerated through the login path.
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(errWrongUser))
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(errWrongPass))
	assert.Equal(t, errWrongUser.Error(), errWrongPass.Error())
}

func TestLoginReturnsFeed(t *testing.T) {
	svc := seededService(t, 3, 2)

	feed, err := svc.Login(context.Background(), "username0", "password0", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 4, feed.TotalElements)
}

func TestAuthenticateReturnsPrincipal(t *testing.T) {
	svc := seededService(t, 2, 1)

	user, err := svc.Authenticate(context.Background(), "username1", "password1")
	require.NoError(t, err)
	assert.Equal(t, "username1", user.Username)
}
