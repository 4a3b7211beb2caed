// Package models defines the data models persisted by the API server.
package models

import "time"

// User is the identity record. The token lifecycle core reads it and writes
// exactly two fields: RefreshToken and RefreshTokenExpiry. Both are nil when
// the user has no session.
type User struct {
	ID                 string
	Email              string
	FullName           string
	PasswordHash       string
	ProfileImageURL    string
	Roles              []string
	RefreshToken       *string
	RefreshTokenExpiry *time.Time
	CreatedAt          time.Time
}
