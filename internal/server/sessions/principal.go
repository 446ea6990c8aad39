// Package sessions is the stateful half of credential verification: it turns
// a principal into a compact session key and back, and keeps the session
// records that map opaque cookie ids to those keys.
package sessions

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/postgate/internal/common"
	"github.com/dmitrijs2005/postgate/internal/server/models"
	"github.com/dmitrijs2005/postgate/internal/server/repositories/users"
)

// Serializer converts principals to session keys and back. The key is the
// user id only; the username is always reloaded from the credential store.
type Serializer struct {
	users users.Repository
}

func NewSerializer(users users.Repository) *Serializer {
	return &Serializer{users: users}
}

// Serialize returns the key stored in a session for p.
func (s *Serializer) Serialize(p models.Principal) string {
	return p.ID
}

// Deserialize rebuilds a session principal from key. An unknown user yields
// common.ErrorNotFound.
func (s *Serializer) Deserialize(ctx context.Context, key string) (models.Principal, error) {
	if key == "" {
		return models.Anonymous(), common.ErrorNotFound
	}

	u, err := s.users.GetByID(ctx, key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return models.Anonymous(), common.ErrorNotFound
		}
		return models.Anonymous(), fmt.Errorf("load user: %w", err)
	}

	return models.Principal{ID: u.ID, Username: u.Username, Kind: models.KindSession}, nil
}
