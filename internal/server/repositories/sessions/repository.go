// Package sessions declares the persistent store for server-side sessions.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/postgate/internal/server/models"
)

// Repository stores session rows keyed by their opaque id.
type Repository interface {
	// Create stores a session with key and an expiry of now+ttl.
	Create(ctx context.Context, id, key string, ttl time.Duration) (*models.Session, error)

	// Find returns common.ErrorNotFound when the id is unknown.
	Find(ctx context.Context, id string) (*models.Session, error)

	// Delete removes a session. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes every session past its expiry and reports how many went.
	DeleteExpired(ctx context.Context) (int64, error)
}
