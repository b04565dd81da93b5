package repositories

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"microblog/internal/apperr"
	"microblog/internal/models"
)

// In-process backend used by tests and STORE_DRIVER=memory. Documents are
// stored by value; callers always get copies. An insertion sequence per
// document is the pagination tie-break.

// MemoryUserRepository implements UserRepository in process memory.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
	seq   map[string]int64
	next  int64
}

// NewMemoryUserRepository initializes an empty in-memory user store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[string]models.User),
		seq:   make(map[string]int64),
	}
}

func (m *MemoryUserRepository) Insert(_ context.Context, user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := cloneUser(*user)
	if saved.ID == "" {
		saved.ID = uuid.NewString()
	}
	m.next++
	m.seq[saved.ID] = m.next
	m.users[saved.ID] = saved
	out := cloneUser(saved)
	return &out, nil
}

func (m *MemoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found with id: %s", id)
	}
	out := cloneUser(user)
	return &out, nil
}

func (m *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if user.Username == username {
			out := cloneUser(user)
			return &out, nil
		}
	}
	return nil, apperr.NotFound("user not found with username: %s", username)
}

func (m *MemoryUserRepository) Save(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return apperr.NotFound("user not found with id: %s", user.ID)
	}
	m.users[user.ID] = cloneUser(*user)
	return nil
}

func (m *MemoryUserRepository) FindAll(_ context.Context, q PageQuery) (*models.Page[models.User], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make([]models.User, 0, len(m.users))
	for _, user := range m.users {
		all = append(all, cloneUser(user))
	}
	return m.page(all, q), nil
}

func (m *MemoryUserRepository) FindByIDIn(_ context.Context, ids []string, q PageQuery) (*models.Page[models.User], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	matched := make([]models.User, 0, len(ids))
	for _, user := range m.users {
		if wanted[user.ID] {
			matched = append(matched, cloneUser(user))
		}
	}
	return m.page(matched, q), nil
}

func (m *MemoryUserRepository) page(users []models.User, q PageQuery) *models.Page[models.User] {
	sort.Slice(users, func(i, j int) bool {
		if users[i].TimeCreatedInMillis != users[j].TimeCreatedInMillis {
			return users[i].TimeCreatedInMillis > users[j].TimeCreatedInMillis
		}
		return m.seq[users[i].ID] > m.seq[users[j].ID]
	})
	page := models.EmptyPage[models.User](q.Page, q.PageSize)
	page.TotalElements = int64(len(users))
	page.Content = window(users, q)
	return page
}

func (m *MemoryUserRepository) DeleteAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = make(map[string]models.User)
	m.seq = make(map[string]int64)
	return nil
}

// MemoryTweetRepository implements TweetRepository in process memory.
type MemoryTweetRepository struct {
	mu     sync.RWMutex
	tweets map[string]models.Tweet
	seq    map[string]int64
	next   int64
}

// NewMemoryTweetRepository initializes an empty in-memory tweet store.
func NewMemoryTweetRepository() *MemoryTweetRepository {
	return &MemoryTweetRepository{
		tweets: make(map[string]models.Tweet),
		seq:    make(map[string]int64),
	}
}

func (m *MemoryTweetRepository) Insert(_ context.Context, tweet *models.Tweet) (*models.Tweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := *tweet
	if saved.ID == "" {
		saved.ID = uuid.NewString()
	}
	m.next++
	m.seq[saved.ID] = m.next
	m.tweets[saved.ID] = saved
	out := saved
	return &out, nil
}

func (m *MemoryTweetRepository) GetByID(_ context.Context, id string) (*models.Tweet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tweet, ok := m.tweets[id]
	if !ok {
		return nil, apperr.NotFound("tweet not found with id: %s", id)
	}
	out := tweet
	return &out, nil
}

func (m *MemoryTweetRepository) FindByUserID(_ context.Context, userID string, q PageQuery) (*models.Page[models.Tweet], error) {
	return m.findMatching(func(t models.Tweet) bool { return t.UserID == userID }, q)
}

func (m *MemoryTweetRepository) FindByUserIDIn(_ context.Context, userIDs []string, q PageQuery) (*models.Page[models.Tweet], error) {
	wanted := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}
	return m.findMatching(func(t models.Tweet) bool { return wanted[t.UserID] }, q)
}

func (m *MemoryTweetRepository) findMatching(match func(models.Tweet) bool, q PageQuery) (*models.Page[models.Tweet], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	matched := make([]models.Tweet, 0)
	for _, tweet := range m.tweets {
		if match(tweet) {
			matched = append(matched, tweet)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].TimeCreatedInMillis != matched[j].TimeCreatedInMillis {
			return matched[i].TimeCreatedInMillis > matched[j].TimeCreatedInMillis
		}
		return m.seq[matched[i].ID] > m.seq[matched[j].ID]
	})
	page := models.EmptyPage[models.Tweet](q.Page, q.PageSize)
	page.TotalElements = int64(len(matched))
	page.Content = window(matched, q)
	return page, nil
}

func (m *MemoryTweetRepository) DeleteAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tweets = make(map[string]models.Tweet)
	m.seq = make(map[string]int64)
	return nil
}

func cloneUser(u models.User) models.User {
	u.FollowingIDs = append([]string{}, u.FollowingIDs...)
	u.FollowerIDs = append([]string{}, u.FollowerIDs...)
	return u
}

// window slices the q page out of a sorted result set.
func window[T any](sorted []T, q PageQuery) []T {
	start := q.Offset()
	if start >= len(sorted) {
		return []T{}
	}
	end := start + q.PageSize
	if end > len(sorted) {
		end = len(sorted)
	}
	return append([]T{}, sorted[start:end]...)
}
