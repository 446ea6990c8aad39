package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/postgate/internal/common"
	"github.com/dmitrijs2005/postgate/internal/logging"
	"github.com/dmitrijs2005/postgate/internal/server/models"
	"github.com/dmitrijs2005/postgate/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// SessionEstablisher opens and ends server-side sessions.
type SessionEstablisher interface {
	Establish(ctx context.Context, p models.Principal) (*models.Session, error)
	Destroy(ctx context.Context, id string) error
}

// TokenIssuer mints signed tokens.
type TokenIssuer interface {
	Issue(userID, username string) (string, error)
}

// LoginResult is what a successful login hands back to the transport.
type LoginResult struct {
	Principal models.Principal
	Token     string
	Session   *models.Session
}

// UserService is the credential collaborator: it adds accounts and turns a
// username/password pair into a session and a signed token.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sessions    SessionEstablisher
	tokens      TokenIssuer
	logger      logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, sessions SessionEstablisher, tokens TokenIssuer, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		sessions:    sessions,
		tokens:      tokens,
		logger:      logger.With("module", "users"),
	}
}

var bcryptCost = bcrypt.DefaultCost

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// compareDummy burns the same time as a real password check, so unknown
// usernames are not distinguishable by latency.
func compareDummy(password []byte) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("postgate"), bcryptCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, password)
}

// Register creates an account with a bcrypt hash of password.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrorValidation)
	}

	pw := []byte(password)
	defer common.WipeByteArray(pw)

	hash, err := bcrypt.GenerateFromPassword(pw, bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.repomanager.Users(s.db).Create(ctx, &models.User{Username: username, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Login checks the password and, on success, opens a session and issues a token.
func (s *UserService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrorValidation)
	}

	pw := []byte(password)
	defer common.WipeByteArray(pw)

	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			compareDummy(pw)
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, pw); err != nil {
		return nil, common.ErrorUnauthorized
	}

	p := models.Principal{ID: user.ID, Username: user.Username, Kind: models.KindSession}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		s.logger.Error(ctx, "token issue failed", "error", err)
		return nil, common.ErrorInternal
	}

	sess, err := s.sessions.Establish(ctx, p)
	if err != nil {
		s.logger.Error(ctx, "session establish failed", "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "user logged in", "username", user.Username)
	return &LoginResult{Principal: p, Token: token, Session: sess}, nil
}

// Logout ends the session with the given id. An empty id is a no-op.
func (s *UserService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}
