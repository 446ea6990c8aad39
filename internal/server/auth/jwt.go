// Package auth implements the signed token codec: issuing and verifying the
// HS256 claims blob that lets a client prove its identity without server state.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/postgate/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the subject id and username next to the registered claims
// (iat, exp, sub). The "id" and "username" keys match the login flow's payload.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"id"`
	Username string `json:"username"`
}

func GenerateToken(userID, username string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID:   userID,
		Username: username,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// VerifyToken checks signature, algorithm, structure and expiry of tokenString
// and returns its claims untouched. Expired tokens yield common.ErrTokenExpired,
// anything else common.ErrInvalidToken; the jwt cause stays wrapped.
func VerifyToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", common.ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	if claims.UserID == "" || claims.Username == "" {
		return nil, fmt.Errorf("%w: missing identity claims", common.ErrInvalidToken)
	}

	return claims, nil
}

// Codec binds the shared secret and token lifetime so callers never handle
// the secret directly.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the given identity.
func (c *Codec) Issue(userID, username string) (string, error) {
	return GenerateToken(userID, username, c.secret, c.ttl)
}

// Verify is VerifyToken with the bound secret.
func (c *Codec) Verify(raw string) (*Claims, error) {
	return VerifyToken(raw, c.secret)
}

// TTL is the lifetime of issued tokens.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}
