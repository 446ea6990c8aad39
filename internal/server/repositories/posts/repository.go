package posts

import (
	"context"

	"github.com/dmitrijs2005/postgate/internal/server/models"
)

// Repository is the document store for posts, addressed by id.
//
// UpdateOwned and DeleteOwned apply only when both id and owner match, so the
// ownership check and the mutation happen in one statement. When nothing
// matched they return common.ErrorNotFound and leave it to the caller to find
// out whether the post is gone or belongs to someone else.
type Repository interface {
	List(ctx context.Context) ([]*models.Post, error)
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	UpdateOwned(ctx context.Context, id, owner string, patch Patch) error
	DeleteOwned(ctx context.Context, id, owner string) error
}

// Patch lists the fields an update may change. Nil fields are kept.
// Username hands the post to another owner.
type Patch struct {
	Title    *string
	Body     *string
	Username *string
}
