package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/postgate/internal/dbx"
	"github.com/dmitrijs2005/postgate/internal/server/repositories/posts"
	"github.com/dmitrijs2005/postgate/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/postgate/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Posts(db dbx.DBTX) posts.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}
