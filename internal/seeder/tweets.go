package seeder

import (
	"context"
	"fmt"
	"time"

	"microblog/internal/models"
)

// seedTweets creates the configured number of tweets for one user, each
// carrying its sequence marker in the text. Ordering between tweets minted
// in the same millisecond is left to the store's insertion-order tie-break.
func (s *Seeder) seedTweets(ctx context.Context, user *models.User) error {
	s.log.Debug("adding tweets by user", "username", user.Username)
	for j := 0; j < s.cfg.TweetsPerUser; j++ {
		tweet := &models.Tweet{
			UserID:              user.ID,
			Text:                fmt.Sprintf("tweet number is %d by twitterUser %s", j, user.Username),
			TimeCreatedInMillis: time.Now().UnixMilli(),
		}
		if _, err := s.tweets.Insert(ctx, tweet); err != nil {
			return fmt.Errorf("seed tweet %d for %s: %w", j, user.Username, err)
		}
	}
	return nil
}
