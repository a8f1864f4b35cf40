package store

import (
	"context"
	"errors"

	"github.com/cartside/cartside/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface for durable identity state.
// Concrete drivers (mongo for deployments, memory for tests) implement it.
// Session/token state lives in the cache store, not here.
type Store interface {
	Users() Users

	// Ping verifies the backing connection is still alive.
	Ping(ctx context.Context) error

	// Close releases any underlying resources.
	Close(ctx context.Context) error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during the password sign-in flows.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// ListUsers returns all users, newest first. Admin surface only.
	ListUsers(ctx context.Context, limit int) ([]domain.User, error)
}
