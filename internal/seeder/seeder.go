// Package seeder wipes and repopulates the store at process start: a batch
// of users, a complete follow graph over the batch, and a fixed number of
// tweets per user.
package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"microblog/internal/metrics"
	"microblog/internal/models"
	"microblog/internal/repositories"
)

// Config controls the bootstrap volume.
type Config struct {
	NumberOfUsers int
	TweetsPerUser int
}

// Seeder coordinates graph building and tweet seeding across the batch.
type Seeder struct {
	users  repositories.UserRepository
	tweets repositories.TweetRepository
	cfg    Config
	log    *slog.Logger
}

// New builds a Seeder with explicit dependencies.
func New(users repositories.UserRepository, tweets repositories.TweetRepository, cfg Config, log *slog.Logger) *Seeder {
	return &Seeder{users: users, tweets: tweets, cfg: cfg, log: log}
}

// Run wipes both collections and repopulates them. It blocks until every
// user's unit of work has finished and returns the first error; a failed
// run must be treated as fatal by the caller so the service never serves
// traffic against a half-seeded store.
func (s *Seeder) Run(ctx context.Context) error {
	start := time.Now()
	metrics.SeedRuns.Inc()
	err := s.run(ctx)
	metrics.ObserveSeedDuration(start)
	if err != nil {
		metrics.SeedErrors.Inc()
		return err
	}
	s.log.Info("all users and their tweets are populated",
		"users", s.cfg.NumberOfUsers,
		"tweetsPerUser", s.cfg.TweetsPerUser,
		"elapsed", time.Since(start).String())
	return nil
}

func (s *Seeder) run(ctx context.Context) error {
	if err := s.users.DeleteAll(ctx); err != nil {
		return fmt.Errorf("wipe users: %w", err)
	}
	if err := s.tweets.DeleteAll(ctx); err != nil {
		return fmt.Errorf("wipe tweets: %w", err)
	}

	// Users are created synchronously so every store-assigned ID is known
	// before any edge-building task starts.
	s.log.Debug("adding users", "count", s.cfg.NumberOfUsers)
	created := make([]*models.User, 0, s.cfg.NumberOfUsers)
	for i := 0; i < s.cfg.NumberOfUsers; i++ {
		user := &models.User{
			FirstName:           fmt.Sprintf("first%d", i),
			LastName:            fmt.Sprintf("last%d", i),
			Username:            fmt.Sprintf("username%d", i),
			Password:            fmt.Sprintf("password%d", i),
			FollowingIDs:        []string{},
			FollowerIDs:         []string{},
			TimeCreatedInMillis: time.Now().UnixMilli(),
		}
		saved, err := s.users.Insert(ctx, user)
		if err != nil {
			return fmt.Errorf("create user %d: %w", i, err)
		}
		created = append(created, saved)
	}

	// Per user, edge building and tweet seeding run concurrently and are
	// joined before the user's unit of work counts as done. Units for
	// different users run in parallel; the outer Wait is the completion
	// barrier for the whole bootstrap, and the first error cancels the
	// group's context.
	g, gctx := errgroup.WithContext(ctx)
	for _, user := range created {
		user := user
		g.Go(func() error {
			unit, uctx := errgroup.WithContext(gctx)
			unit.Go(func() error {
				_, err := s.buildEdges(uctx, user, created)
				return err
			})
			unit.Go(func() error {
				return s.seedTweets(uctx, user)
			})
			return unit.Wait()
		})
	}
	return g.Wait()
}
