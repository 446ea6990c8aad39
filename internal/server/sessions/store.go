package sessions

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/postgate/internal/common"
	"github.com/dmitrijs2005/postgate/internal/server/models"
	sessionrepo "github.com/dmitrijs2005/postgate/internal/server/repositories/sessions"
)

const sessionIDBytes = 32

// Store keeps session records. Get returns common.ErrorNotFound for unknown
// ids and for expired sessions, which it also removes.
type Store interface {
	Create(ctx context.Context, key string, ttl time.Duration) (*models.Session, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	// Cleanup drops every expired session and returns how many were removed.
	Cleanup(ctx context.Context) (int64, error)
}

var newSessionID = func() (string, error) {
	return common.MakeRandHexString(sessionIDBytes)
}

// MemoryStore keeps sessions in process memory. Sessions do not survive a
// restart and are not shared between instances.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]models.Session{}, now: time.Now}
}

func (s *MemoryStore) Create(_ context.Context, key string, ttl time.Duration) (*models.Session, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, err
	}

	now := s.now()
	sess := models.Session{ID: id, Key: key, ExpiresAt: now.Add(ttl), CreatedAt: now}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	return &sess, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, common.ErrorNotFound
	}
	if sess.Expired(s.now()) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, common.ErrorNotFound
	}
	return &sess, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Cleanup(_ context.Context) (int64, error) {
	now := s.now()
	var n int64

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

// PostgresStore keeps sessions in the sessions table.
type PostgresStore struct {
	repo sessionrepo.Repository
	now  func() time.Time
}

func NewPostgresStore(repo sessionrepo.Repository) *PostgresStore {
	return &PostgresStore{repo: repo, now: time.Now}
}

func (s *PostgresStore) Create(ctx context.Context, key string, ttl time.Duration) (*models.Session, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, id, key, ttl)
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*models.Session, error) {
	sess, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Expired(s.now()) {
		if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, common.ErrorNotFound
	}
	return sess, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *PostgresStore) Cleanup(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx)
}
