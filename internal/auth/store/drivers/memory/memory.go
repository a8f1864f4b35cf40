// Package memory implements the identity store in process memory. It exists
// for tests and local development; semantics match the mongo driver.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/cartside/cartside/internal/auth/domain"
	"github.com/cartside/cartside/internal/auth/store"
)

type Store struct {
	users *usersRepo
}

func NewStore() *Store {
	return &Store{
		users: &usersRepo{
			byID:    make(map[string]domain.User),
			byEmail: make(map[string]string),
		},
	}
}

func (s *Store) Users() store.Users              { return s.users }
func (s *Store) Ping(ctx context.Context) error  { return nil }
func (s *Store) Close(ctx context.Context) error { return nil }

type usersRepo struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string // lowercased email -> id
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return u, nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(u.Email)
	if _, exists := r.byEmail[key]; exists {
		return store.ErrAlreadyExists
	}

	r.byID[u.ID] = u
	r.byEmail[key] = u.ID
	return nil
}

func (r *usersRepo) ListUsers(ctx context.Context, limit int) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})

	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}
