package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/postgate/internal/common"
	"github.com/dmitrijs2005/postgate/internal/dbx"
	"github.com/dmitrijs2005/postgate/internal/server/models"
	"github.com/dmitrijs2005/postgate/internal/server/repositories/posts"
	"github.com/dmitrijs2005/postgate/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/postgate/internal/server/repositories/users"
)

type fakePostsRepo struct {
	mu    sync.Mutex
	items map[string]*models.Post

	listErr   error
	createErr error
	getErr    error
	writeErr  error

	// beforeWrite runs between lookup and conditional write.
	beforeWrite func()
}

func newFakePosts(ps ...*models.Post) *fakePostsRepo {
	f := &fakePostsRepo{items: map[string]*models.Post{}}
	for _, p := range ps {
		f.items[p.ID] = p
	}
	return f
}

func (f *fakePostsRepo) List(context.Context) ([]*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*models.Post, 0, len(f.items))
	for _, p := range f.items {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (f *fakePostsRepo) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	p.Date = time.Now()
	cp := *p
	f.items[p.ID] = &cp
	return p, nil
}

func (f *fakePostsRepo) GetByID(_ context.Context, id string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePostsRepo) hook() {
	if f.beforeWrite != nil {
		f.beforeWrite()
	}
}

func (f *fakePostsRepo) UpdateOwned(_ context.Context, id, owner string, patch posts.Patch) error {
	f.hook()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	p, ok := f.items[id]
	if !ok || p.Username != owner {
		return common.ErrorNotFound
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Body != nil {
		p.Body = *patch.Body
	}
	if patch.Username != nil {
		p.Username = *patch.Username
	}
	return nil
}

func (f *fakePostsRepo) DeleteOwned(_ context.Context, id, owner string) error {
	f.hook()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	p, ok := f.items[id]
	if !ok || p.Username != owner {
		return common.ErrorNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakePostsRepo) get(id string) *models.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[id]
}

type fakeUsersRepo struct {
	byName    map[string]*models.User
	createErr error
	getErr    error
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byName[u.Username]; ok {
		return nil, common.ErrorAlreadyExists
	}
	u.ID = "u-" + u.Username
	f.byName[u.Username] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range f.byName {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type fakeRepoManager struct {
	posts *fakePostsRepo
	users *fakeUsersRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *fakeRepoManager) Posts(dbx.DBTX) posts.Repository              { return m.posts }
func (m *fakeRepoManager) Sessions(dbx.DBTX) sessions.Repository        { return nil }
