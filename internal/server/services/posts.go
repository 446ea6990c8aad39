// Package services contains server-side business logic. PostService runs the
// gate for the posts collection: look the post up, decide, then apply the
// effect with an owner-conditional statement.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/postgate/internal/common"
	"github.com/dmitrijs2005/postgate/internal/logging"
	"github.com/dmitrijs2005/postgate/internal/server/authz"
	"github.com/dmitrijs2005/postgate/internal/server/config"
	"github.com/dmitrijs2005/postgate/internal/server/models"
	"github.com/dmitrijs2005/postgate/internal/server/repositories/posts"
	"github.com/dmitrijs2005/postgate/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// StorageError wraps a failure of the post store. Op names the operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// PostInput is the client-supplied part of a post. Nil fields are absent.
// Username is honoured only when the service trusts the client with the
// owner: on create it names the owner, on update it hands the post over.
type PostInput struct {
	Title    *string
	Body     *string
	Username *string
}

type PostService struct {
	db               *sql.DB
	repomanager      repomanager.RepositoryManager
	trustClientOwner bool
	logger           logging.Logger
}

func NewPostService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *PostService {
	return &PostService{
		db:               db,
		repomanager:      m,
		trustClientOwner: cfg.TrustClientOwner,
		logger:           logger.With("module", "posts"),
	}
}

// List returns every post, newest first. Anyone may list.
func (s *PostService) List(ctx context.Context) ([]*models.Post, error) {
	items, err := s.repomanager.Posts(s.db).List(ctx)
	if err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}
	return items, nil
}

// Create stores a new post owned by p. Title and body are required.
func (s *PostService) Create(ctx context.Context, p models.Principal, in PostInput) (*models.Post, error) {
	if err := authz.Decide(p, authz.ActionCreate, nil).Err(); err != nil {
		return nil, err
	}

	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", common.ErrorValidation)
	}
	if in.Body == nil || strings.TrimSpace(*in.Body) == "" {
		return nil, fmt.Errorf("%w: body is required", common.ErrorValidation)
	}

	owner := p.Username
	if s.trustClientOwner && in.Username != nil && *in.Username != "" {
		owner = *in.Username
	}

	post := &models.Post{
		ID:       uuid.NewString(),
		Title:    *in.Title,
		Body:     *in.Body,
		Username: owner,
	}

	created, err := s.repomanager.Posts(s.db).Create(ctx, post)
	if err != nil {
		return nil, &StorageError{Op: "create", Err: err}
	}

	s.logger.Info(ctx, "post created", "post_id", created.ID, "username", created.Username)
	return created, nil
}

// Update applies in to the post and returns the post as it was before the
// change. The owner changes only when the client is trusted with it.
func (s *PostService) Update(ctx context.Context, p models.Principal, id string, in PostInput) (*models.Post, error) {
	repo := s.repomanager.Posts(s.db)

	post, err := s.authorize(ctx, repo, p, authz.ActionUpdate, id)
	if err != nil {
		return nil, err
	}

	patch := posts.Patch{Title: in.Title, Body: in.Body}
	if s.trustClientOwner && in.Username != nil && *in.Username != "" {
		patch.Username = in.Username
	}

	err = repo.UpdateOwned(ctx, id, p.Username, patch)
	if err != nil {
		return nil, s.explainMiss(ctx, repo, "update", id, err)
	}

	s.logger.Info(ctx, "post updated", "post_id", id, "username", p.Username)
	return post, nil
}

// Delete removes the post if p owns it.
func (s *PostService) Delete(ctx context.Context, p models.Principal, id string) error {
	repo := s.repomanager.Posts(s.db)

	if _, err := s.authorize(ctx, repo, p, authz.ActionDelete, id); err != nil {
		return err
	}

	if err := repo.DeleteOwned(ctx, id, p.Username); err != nil {
		return s.explainMiss(ctx, repo, "delete", id, err)
	}

	s.logger.Info(ctx, "post deleted", "post_id", id, "username", p.Username)
	return nil
}

// authorize runs the decision for an id-addressed action. Anonymous callers
// are turned away before the post store is touched.
func (s *PostService) authorize(ctx context.Context, repo posts.Repository, p models.Principal, a authz.Action, id string) (*models.Post, error) {
	if !p.IsAuthenticated() {
		return nil, authz.Decide(p, a, nil).Err()
	}

	post, err := repo.GetByID(ctx, id)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, &StorageError{Op: "lookup", Err: err}
	}

	if err := authz.Decide(p, a, post).Err(); err != nil {
		return nil, err
	}
	return post, nil
}

// explainMiss turns a failed owner-conditional write into the right outcome.
// A miss means the post vanished or changed hands after the lookup.
func (s *PostService) explainMiss(ctx context.Context, repo posts.Repository, op, id string, err error) error {
	if !errors.Is(err, common.ErrorNotFound) {
		return &StorageError{Op: op, Err: err}
	}

	_, lookupErr := repo.GetByID(ctx, id)
	switch {
	case lookupErr == nil:
		s.logger.Debug(ctx, "post changed owner before write", "post_id", id)
		return common.ErrorForbidden
	case errors.Is(lookupErr, common.ErrorNotFound):
		return common.ErrorNotFound
	default:
		return &StorageError{Op: "lookup", Err: lookupErr}
	}
}
