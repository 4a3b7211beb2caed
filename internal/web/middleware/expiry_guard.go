// Package middleware holds the web front end's gin middleware, most notably
// the token expiry guard that keeps sessions usable across access-token
// expiry without the browser noticing.
package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/recipecorner/recipecorner/internal/common"
	"github.com/recipecorner/recipecorner/internal/logging"
	"github.com/recipecorner/recipecorner/internal/tokens"
	"github.com/recipecorner/recipecorner/internal/web/client"
	"github.com/recipecorner/recipecorner/internal/web/services"
	"github.com/recipecorner/recipecorner/internal/web/sessions"
)

const (
	// SessionCookie names the browser cookie holding the session id.
	SessionCookie = "rc_session"

	sessionIDContextKey = "sessionID"
	sessionContextKey   = "sessionRecord"
)

// Refresher is the slice of the API client the guard needs.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*client.AuthPayload, error)
}

// ExpiryGuard runs before every request that may call the API. When the
// session's access token expires within threshold, it refreshes the token
// pair and rewrites the session, so the handler downstream always sees the
// freshest state available.
//
// Failure handling is deliberately one-sided:
//   - invalid refresh token: the session stays as it is; the API will
//     reject the stale access token and the user gets sent to login.
//   - API unreachable: proceed with the old token; the request may still
//     succeed if the token has a little life left.
func ExpiryGuard(logger logging.Logger, sessionService *services.SessionService, api Refresher, threshold time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookie)
		if err != nil || sessionID == "" {
			c.Next()
			return
		}
		c.Set(sessionIDContextKey, sessionID)

		ctx := c.Request.Context()
		record, err := sessionService.Read(ctx, sessionID)
		if err != nil {
			c.Next()
			return
		}

		if tokenNeedsRefresh(record.AccessToken, threshold) {
			payload, err := api.Refresh(ctx, record.RefreshToken)
			switch {
			case err == nil:
				if err := sessionService.Sync(ctx, sessionID, payload); err != nil {
					logger.Error(ctx, "rewriting session after refresh", "error", err)
				} else {
					record, _ = sessionService.Read(ctx, sessionID)
				}
			case errors.Is(err, common.ErrInvalidRefreshToken):
				logger.Debug(ctx, "refresh token rejected, session left for re-login")
			default:
				logger.Warn(ctx, "token refresh failed, proceeding with old token", "error", err)
			}
		}

		if record != nil {
			c.Set(sessionContextKey, record)
		}
		c.Next()
	}
}

// tokenNeedsRefresh reports whether the access token expires within
// threshold. Tokens without a readable expiry count as expired.
func tokenNeedsRefresh(accessToken string, threshold time.Duration) bool {
	claims, err := tokens.Decode(accessToken)
	if err != nil || claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.Time.Before(time.Now().Add(threshold))
}

// SessionFrom returns the record the guard attached, if any.
func SessionFrom(c *gin.Context) (*sessions.Record, bool) {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil, false
	}
	record, ok := v.(*sessions.Record)
	return record, ok
}

// SessionIDFrom returns the session id cookie value, if one was present.
func SessionIDFrom(c *gin.Context) (string, bool) {
	v, ok := c.Get(sessionIDContextKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}
