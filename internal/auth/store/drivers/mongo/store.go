// Package mongo implements the identity store on MongoDB.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/cartside/cartside/internal/auth/store"
)

const usersCollection = "users"

type Store struct {
	client *mongo.Client
	db     *mongo.Database
	users  *usersRepo
}

// NewStore connects to MongoDB, verifies the connection and prepares the
// collections this service uses, including the unique email index.
func NewStore(ctx context.Context, uri, database string) (*Store, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo: uri is empty")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: failed to connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: failed to ping server: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client: client,
		db:     db,
		users:  &usersRepo{coll: db.Collection(usersCollection)},
	}

	if err := s.users.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return s, nil
}

func (s *Store) Users() store.Users { return s.users }

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo: ping failed: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("mongo: failed to disconnect: %w", err)
	}
	return nil
}
