package httpapi

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/postgate/internal/common"
	"github.com/dmitrijs2005/postgate/internal/dbx"
	"github.com/dmitrijs2005/postgate/internal/logging"
	"github.com/dmitrijs2005/postgate/internal/server/auth"
	"github.com/dmitrijs2005/postgate/internal/server/config"
	"github.com/dmitrijs2005/postgate/internal/server/credentials"
	"github.com/dmitrijs2005/postgate/internal/server/models"
	"github.com/dmitrijs2005/postgate/internal/server/repositories/posts"
	sessionrepo "github.com/dmitrijs2005/postgate/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/postgate/internal/server/repositories/users"
	"github.com/dmitrijs2005/postgate/internal/server/services"
	"github.com/dmitrijs2005/postgate/internal/server/sessions"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

type memPosts struct {
	mu    sync.Mutex
	items map[string]*models.Post
	err   error
}

func (m *memPosts) List(context.Context) ([]*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*models.Post, 0, len(m.items))
	for _, p := range m.items {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *memPosts) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p.Date = time.Now().UTC()
	cp := *p
	m.items[p.ID] = &cp
	return p, nil
}

func (m *memPosts) GetByID(_ context.Context, id string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPosts) UpdateOwned(_ context.Context, id, owner string, patch posts.Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
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

func (m *memPosts) DeleteOwned(_ context.Context, id, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok || p.Username != owner {
		return common.ErrorNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memPosts) get(id string) *models.Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id]
}

type memUsers struct {
	byID map[string]*models.User
}

func (m *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	m.byID[u.ID] = u
	return u, nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (m *memUsers) GetByUsername(_ context.Context, name string) (*models.User, error) {
	for _, u := range m.byID {
		if u.Username == name {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

type memManager struct {
	posts *memPosts
	users *memUsers
}

func (m *memManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memManager) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *memManager) Posts(dbx.DBTX) posts.Repository              { return m.posts }
func (m *memManager) Sessions(dbx.DBTX) sessionrepo.Repository     { return nil }

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

type harness struct {
	server   *Server
	posts    *memPosts
	codec    *auth.Codec
	sessions *sessions.Manager
	cfg      *config.Config
	db       *pinger
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.StaticDir = ""
	cfg.SecretKey = testSecret

	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)

	us := &memUsers{byID: map[string]*models.User{
		"u-alice": {ID: "u-alice", Username: "alice", PasswordHash: hash},
		"u-bob":   {ID: "u-bob", Username: "bob", PasswordHash: hash},
	}}
	ps := &memPosts{items: map[string]*models.Post{}}
	rm := &memManager{posts: ps, users: us}

	log := logging.Nop{}
	codec := auth.NewCodec(cfg.SecretKey, cfg.TokenValidityDuration)
	mgr := sessions.NewManager(sessions.NewMemoryStore(), sessions.NewSerializer(us), cfg.SessionTTL, log)
	ext := credentials.NewExtractor(mgr, codec, cfg.SessionCookieName, cfg.AuthCookieName, log)
	db := &pinger{}

	srv := NewServer(&Dependencies{
		Config:    cfg,
		Logger:    log,
		Posts:     services.NewPostService(nil, rm, cfg, log),
		Accounts:  services.NewUserService(nil, rm, mgr, codec, log),
		Extractor: ext,
		DB:        db,
	})

	return &harness{server: srv, posts: ps, codec: codec, sessions: mgr, cfg: cfg, db: db}
}

func (h *harness) token(t *testing.T, username string) string {
	t.Helper()
	tok, err := h.codec.Issue("u-"+username, username)
	require.NoError(t, err)
	return tok
}

func (h *harness) seed(id, owner string) *models.Post {
	p := &models.Post{ID: id, Title: "T", Body: "B", Username: owner, Date: time.Now().UTC()}
	h.posts.items[id] = p
	return p
}

var errStorage = errors.New("pq: relation \"posts\" does not exist")
