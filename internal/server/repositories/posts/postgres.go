// Package posts provides the PostgreSQL-backed post store.
package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/postgate/internal/common"
	"github.com/dmitrijs2005/postgate/internal/dbx"
	"github.com/dmitrijs2005/postgate/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns every post, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.Post, error) {
	query := `SELECT id, title, body, username, date FROM posts ORDER BY date DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select posts: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Post, 0)
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Body, &p.Username, &p.Date); err != nil {
			return nil, err
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Create inserts post with its pre-assigned id; the creation date comes from the database.
func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	query :=
		`INSERT INTO posts (id, title, body, username)
		 VALUES ($1, $2, $3, $4)
		 RETURNING date
		 `

	if err := r.db.QueryRowContext(ctx, query, post.ID, post.Title, post.Body, post.Username).Scan(&post.Date); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return post, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	query :=
		`SELECT id, title, body, username, date FROM posts
		 WHERE id = $1
		 `

	p := &models.Post{}
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Title, &p.Body, &p.Username, &p.Date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) UpdateOwned(ctx context.Context, id, owner string, patch Patch) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}

	query :=
		`UPDATE posts
		 SET title = COALESCE($3, title), body = COALESCE($4, body), username = COALESCE($5, username)
		 WHERE id = $1 AND username = $2
		 `

	res, err := r.db.ExecContext(ctx, query, id, owner, nullable(patch.Title), nullable(patch.Body), nullable(patch.Username))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return singleRow(res)
}

func (r *PostgresRepository) DeleteOwned(ctx context.Context, id, owner string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}

	query := `DELETE FROM posts WHERE id = $1 AND username = $2`

	res, err := r.db.ExecContext(ctx, query, id, owner)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return singleRow(res)
}

func singleRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
