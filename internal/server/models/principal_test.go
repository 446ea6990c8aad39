package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrincipal_Anonymous(t *testing.T) {
	p := Anonymous()
	assert.False(t, p.IsAuthenticated())
	assert.Equal(t, "anonymous", p.Kind.String())
}

func TestPrincipal_Kinds(t *testing.T) {
	assert.True(t, Principal{ID: "1", Username: "alice", Kind: KindSession}.IsAuthenticated())
	assert.True(t, Principal{ID: "1", Username: "alice", Kind: KindToken}.IsAuthenticated())
	assert.Equal(t, "session", KindSession.String())
	assert.Equal(t, "token", KindToken.String())
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	assert.False(t, (&Session{ExpiresAt: now.Add(time.Minute)}).Expired(now))
	assert.True(t, (&Session{ExpiresAt: now}).Expired(now))
	assert.True(t, (&Session{ExpiresAt: now.Add(-time.Minute)}).Expired(now))
	assert.False(t, (&Session{}).Expired(now))
}
