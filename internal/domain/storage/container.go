package storage

import (
	"context"
	"errors"

	"gamehub/internal/domain/comments"
	"gamehub/internal/domain/events"
	"gamehub/internal/domain/posts"
	"gamehub/internal/domain/pushtokens"
	"gamehub/internal/domain/reviews"
	"gamehub/internal/domain/users"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Container struct {
	pool       *pgxpool.Pool
	Users      users.Store
	Reviews    reviews.Store
	Events     events.Store
	Posts      posts.Store
	Comments   comments.Store
	PushTokens pushtokens.Store
}

func NewContainer(db *pgxpool.Pool) *Container {
	return &Container{
		pool:       db,
		Users:      users.NewRepository(db),
		Reviews:    reviews.NewRepository(db),
		Events:     events.NewRepository(db),
		Posts:      posts.NewRepository(db),
		Comments:   comments.NewRepository(db),
		PushTokens: pushtokens.NewRepository(db),
	}
}

// Ping checks the database behind the container. Containers assembled by hand
// (tests) have no pool and report an error.
func (c *Container) Ping(ctx context.Context) error {
	if c.pool == nil {
		return errors.New("storage container has no database pool")
	}
	return c.pool.Ping(ctx)
}
