package sessions

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/postgate/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func stores(c *clock) map[string]Store {
	mem := NewMemoryStore()
	mem.now = c.now

	pg := NewPostgresStore(newFakeSessionRepo(c.now))
	pg.now = c.now

	return map[string]Store{"memory": mem, "postgres": pg}
}

func TestStore_CreateGetDelete(t *testing.T) {
	for name, st := range stores(newClock()) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			sess, err := st.Create(ctx, "u-1", time.Hour)
			require.NoError(t, err)
			assert.Len(t, sess.ID, sessionIDBytes*2)
			assert.Equal(t, "u-1", sess.Key)

			got, err := st.Get(ctx, sess.ID)
			require.NoError(t, err)
			assert.Equal(t, "u-1", got.Key)

			require.NoError(t, st.Delete(ctx, sess.ID))
			_, err = st.Get(ctx, sess.ID)
			assert.ErrorIs(t, err, common.ErrorNotFound)

			assert.NoError(t, st.Delete(ctx, "never-existed"))
		})
	}
}

func TestStore_ExpiredIsNotFound(t *testing.T) {
	c := newClock()
	for name, st := range stores(c) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			sess, err := st.Create(ctx, "u-1", time.Minute)
			require.NoError(t, err)

			c.advance(2 * time.Minute)
			_, err = st.Get(ctx, sess.ID)
			assert.ErrorIs(t, err, common.ErrorNotFound)
		})
	}
}

func TestStore_Cleanup(t *testing.T) {
	c := newClock()
	for name, st := range stores(c) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := st.Create(ctx, "short", time.Minute)
			require.NoError(t, err)
			long, err := st.Create(ctx, "long", 24*time.Hour)
			require.NoError(t, err)

			c.advance(time.Hour)
			n, err := st.Cleanup(ctx)
			require.NoError(t, err)
			assert.EqualValues(t, 1, n)

			_, err = st.Get(ctx, long.ID)
			assert.NoError(t, err)
		})
	}
}

func TestStore_IDGeneratorError(t *testing.T) {
	orig := newSessionID
	newSessionID = func() (string, error) { return "", fmt.Errorf("entropy exhausted") }
	defer func() { newSessionID = orig }()

	for name, st := range stores(newClock()) {
		t.Run(name, func(t *testing.T) {
			_, err := st.Create(context.Background(), "u-1", time.Hour)
			assert.Error(t, err)
		})
	}
}

func TestPostgresStore_DropsExpiredRow(t *testing.T) {
	c := newClock()
	repo := newFakeSessionRepo(c.now)
	st := NewPostgresStore(repo)
	st.now = c.now

	sess, err := st.Create(context.Background(), "u-1", time.Minute)
	require.NoError(t, err)

	c.advance(time.Hour)
	_, err = st.Get(context.Background(), sess.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Contains(t, repo.deleted, sess.ID)
}
