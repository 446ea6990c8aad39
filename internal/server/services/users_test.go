package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/postgate/internal/common"
	"github.com/dmitrijs2005/postgate/internal/logging"
	"github.com/dmitrijs2005/postgate/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeSessions struct {
	established []models.Principal
	destroyed   []string
	err         error
}

func (f *fakeSessions) Establish(_ context.Context, p models.Principal) (*models.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.established = append(f.established, p)
	return &models.Session{ID: "sid-1", Key: p.ID}, nil
}

func (f *fakeSessions) Destroy(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.destroyed = append(f.destroyed, id)
	return nil
}

type fakeIssuer struct{ err error }

func (f fakeIssuer) Issue(userID, username string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "tok-" + username, nil
}

func init() {
	bcryptCost = bcrypt.MinCost
}

func newUserService(t *testing.T) (*UserService, *fakeUsersRepo, *fakeSessions) {
	t.Helper()
	ur := &fakeUsersRepo{byName: map[string]*models.User{}}
	fs := &fakeSessions{}
	s := NewUserService(nil, &fakeRepoManager{users: ur}, fs, fakeIssuer{}, logging.Nop{})
	return s, ur, fs
}

func TestRegisterAndLogin(t *testing.T) {
	s, _, fs := newUserService(t)
	ctx := context.Background()

	u, err := s.Register(ctx, " alice ", "pw")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, []byte("pw"), u.PasswordHash)

	res, err := s.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok-alice", res.Token)
	assert.Equal(t, "sid-1", res.Session.ID)
	assert.Equal(t, models.Principal{ID: u.ID, Username: "alice", Kind: models.KindSession}, res.Principal)
	assert.Len(t, fs.established, 1)
}

func TestRegister_Errors(t *testing.T) {
	s, ur, _ := newUserService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "", "pw")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = s.Register(ctx, "alice", "pw")
	require.NoError(t, err)
	_, err = s.Register(ctx, "alice", "pw2")
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	ur.createErr = errors.New("db down")
	_, err = s.Register(ctx, "bob", "pw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestLogin_Failures(t *testing.T) {
	s, ur, fs := newUserService(t)
	ctx := context.Background()
	_, err := s.Register(ctx, "alice", "pw")
	require.NoError(t, err)

	_, err = s.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = s.Login(ctx, "nobody", "pw")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = s.Login(ctx, "", "")
	assert.ErrorIs(t, err, common.ErrorValidation)

	ur.getErr = errors.New("db down")
	_, err = s.Login(ctx, "alice", "pw")
	assert.ErrorIs(t, err, common.ErrorInternal)
	ur.getErr = nil

	fs.err = errors.New("session store down")
	_, err = s.Login(ctx, "alice", "pw")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestLogin_TokenFailure(t *testing.T) {
	ur := &fakeUsersRepo{byName: map[string]*models.User{}}
	s := NewUserService(nil, &fakeRepoManager{users: ur}, &fakeSessions{}, fakeIssuer{err: errors.New("sign")}, logging.Nop{})
	_, err := s.Register(context.Background(), "alice", "pw")
	require.NoError(t, err)

	_, err = s.Login(context.Background(), "alice", "pw")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestLogout(t *testing.T) {
	s, _, fs := newUserService(t)

	require.NoError(t, s.Logout(context.Background(), ""))
	require.NoError(t, s.Logout(context.Background(), "sid-1"))
	assert.Equal(t, []string{"sid-1"}, fs.destroyed)

	fs.err = errors.New("boom")
	assert.Error(t, s.Logout(context.Background(), "sid-1"))
}
