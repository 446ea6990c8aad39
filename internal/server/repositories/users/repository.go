package users

import (
	"context"

	"github.com/dmitrijs2005/postgate/internal/server/models"
)

// Repository is the credential store as seen by this service: it resolves
// user ids and usernames, and lets operators add accounts.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
