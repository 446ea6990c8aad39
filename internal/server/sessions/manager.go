package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/postgate/internal/common"
	"github.com/dmitrijs2005/postgate/internal/logging"
	"github.com/dmitrijs2005/postgate/internal/server/models"
)

// Manager ties a Store to a Serializer.
type Manager struct {
	store      Store
	serializer *Serializer
	ttl        time.Duration
	logger     logging.Logger
}

func NewManager(store Store, serializer *Serializer, ttl time.Duration, logger logging.Logger) *Manager {
	return &Manager{
		store:      store,
		serializer: serializer,
		ttl:        ttl,
		logger:     logger.With("module", "sessions"),
	}
}

// TTL is the lifetime given to new sessions.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Establish opens a session for an authenticated principal and returns it.
func (m *Manager) Establish(ctx context.Context, p models.Principal) (*models.Session, error) {
	if !p.IsAuthenticated() || p.ID == "" {
		return nil, common.ErrorUnauthorized
	}
	sess, err := m.store.Create(ctx, m.serializer.Serialize(p), m.ttl)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// Resolve returns the principal behind session id. Unknown or expired
// sessions and sessions whose user is gone yield common.ErrorNotFound.
func (m *Manager) Resolve(ctx context.Context, id string) (models.Principal, error) {
	if id == "" {
		return models.Anonymous(), common.ErrorNotFound
	}

	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return models.Anonymous(), err
	}

	p, err := m.serializer.Deserialize(ctx, sess.Key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			m.logger.Debug(ctx, "session refers to unknown user, dropping")
			if derr := m.store.Delete(ctx, id); derr != nil {
				m.logger.Warn(ctx, "failed to drop orphaned session", "error", derr)
			}
		}
		return models.Anonymous(), err
	}
	return p, nil
}

// Destroy ends a session. Unknown ids are ignored.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return m.store.Delete(ctx, id)
}

// RunCleanup removes expired sessions every interval until ctx is done.
func (m *Manager) RunCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.store.Cleanup(ctx)
			if err != nil {
				m.logger.Error(ctx, "session cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				m.logger.Debug(ctx, "expired sessions removed", "count", n)
			}
		}
	}
}
