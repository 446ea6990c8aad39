package models

import "time"

// Session maps an opaque id held in the client cookie to a serialized
// principal key (the user id).
type Session struct {
	ID        string
	Key       string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
