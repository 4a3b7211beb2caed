// Package sessions stores the web front end's per-browser session state.
// The record mirrors what the browser needs between requests: the current
// token pair plus display fields. Two backends exist, in-memory for single
// instances and redis for anything shared.
package sessions

import (
	"context"
	"errors"
)

// ErrNoSession is returned when a session id has no record (never written,
// expired, or cleared).
var ErrNoSession = errors.New("no session")

// Record is the session payload. UserRoles is a comma-joined list, matching
// how the API embeds roles in claims.
type Record struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	UserName     string `json:"userName"`
	UserImage    string `json:"userImage"`
	UserRoles    string `json:"userRoles"`
}

// Store is a keyed session store. Save overwrites the whole record; partial
// updates do not exist, which keeps the token pair and display fields in
// step with each other.
type Store interface {
	Save(ctx context.Context, id string, record *Record) error
	Load(ctx context.Context, id string) (*Record, error)
	Delete(ctx context.Context, id string) error
}
