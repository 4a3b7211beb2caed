// Package services holds the web front end's thin service layer over the
// session store and the API client.
package services

import (
	"context"
	"strings"

	"github.com/recipecorner/recipecorner/internal/tokens"
	"github.com/recipecorner/recipecorner/internal/web/client"
	"github.com/recipecorner/recipecorner/internal/web/sessions"
)

// SessionService keeps the browser session in step with the token state the
// API returned. The front end never verifies tokens; role claims are read
// with an unverified decode purely for UI decisions, the API re-checks them
// on every call.
type SessionService struct {
	store sessions.Store
}

func NewSessionService(store sessions.Store) *SessionService {
	return &SessionService{store: store}
}

// Sync writes the session record for an auth payload, replacing whatever
// was stored before. Roles come from the access token's claims; if the
// token cannot be decoded the payload's role list is used instead.
func (s *SessionService) Sync(ctx context.Context, sessionID string, payload *client.AuthPayload) error {
	roles := payload.Roles
	if claims, err := tokens.Decode(payload.Token.AccessToken); err == nil {
		roles = claims.Roles
	}

	record := &sessions.Record{
		AccessToken:  payload.Token.AccessToken,
		RefreshToken: payload.Token.RefreshToken,
		UserName:     payload.FullName,
		UserImage:    payload.ProfileImageURL,
		UserRoles:    strings.Join(roles, ","),
	}
	return s.store.Save(ctx, sessionID, record)
}

// Read returns the stored session record, or sessions.ErrNoSession.
func (s *SessionService) Read(ctx context.Context, sessionID string) (*sessions.Record, error) {
	return s.store.Load(ctx, sessionID)
}

// Clear removes the session record. Clearing an absent session is a no-op.
func (s *SessionService) Clear(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}

// HasRole reports whether the record carries the role. Display-level only.
func HasRole(record *sessions.Record, role string) bool {
	for _, r := range strings.Split(record.UserRoles, ",") {
		if r == role {
			return true
		}
	}
	return false
}
