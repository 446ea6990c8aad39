package models

import "time"

// User is a row owned by the credential store. Only ID and Username ever
// reach a Principal.
type User struct {
	ID           string
	Username     string
	PasswordHash []byte
	CreatedAt    time.Time
}
