package seeder

import (
	"context"
	"fmt"

	"microblog/internal/models"
)

// buildEdges sets the user's following and follower sets to every other
// user in the batch (a complete graph — the fixture topology, not a general
// edge-selection policy) and persists the updated document. The store's
// whole-document put keeps the update atomic: the edge sets land together
// or not at all.
func (s *Seeder) buildEdges(ctx context.Context, user *models.User, all []*models.User) (*models.User, error) {
	s.log.Debug("updating user with followers and followings", "username", user.Username)
	updated := *user
	updated.FollowingIDs = make([]string, 0, len(all)-1)
	updated.FollowerIDs = make([]string, 0, len(all)-1)
	for _, other := range all {
		if other.ID == user.ID {
			continue
		}
		updated.FollowingIDs = append(updated.FollowingIDs, other.ID)
		updated.FollowerIDs = append(updated.FollowerIDs, other.ID)
	}
	if err := s.users.Save(ctx, &updated); err != nil {
		return nil, fmt.Errorf("save edges for %s: %w", user.Username, err)
	}
	return &updated, nil
}
