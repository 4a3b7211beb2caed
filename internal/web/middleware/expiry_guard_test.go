package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/recipecorner/recipecorner/internal/common"
	"github.com/recipecorner/recipecorner/internal/logging"
	"github.com/recipecorner/recipecorner/internal/tokens"
	"github.com/recipecorner/recipecorner/internal/web/client"
	"github.com/recipecorner/recipecorner/internal/web/services"
	"github.com/recipecorner/recipecorner/internal/web/sessions"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeRefresher struct {
	out *client.AuthPayload
	err error

	calls         int
	lastCandidate string
}

func (f *fakeRefresher) Refresh(ctx context.Context, refreshToken string) (*client.AuthPayload, error) {
	f.calls++
	f.lastCandidate = refreshToken
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func encodeAccessToken(t *testing.T, expiresIn time.Duration) string {
	t.Helper()
	e, err := tokens.NewEncoder([]byte("0123456789abcdef0123456789abcdef"), "recipecorner", "recipecorner-web", expiresIn)
	if err != nil {
		t.Fatalf("NewEncoder error: %v", err)
	}
	tok, _, err := e.Encode("u1", "a@x.com", "Alice", []string{"User"}, time.Now())
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	return tok
}

type guardFixture struct {
	store   *sessions.MemoryStore
	service *services.SessionService
	api     *fakeRefresher
	router  *gin.Engine

	seen *sessions.Record
}

func newGuardFixture(t *testing.T, api *fakeRefresher) *guardFixture {
	t.Helper()
	f := &guardFixture{
		store: sessions.NewMemoryStore(time.Hour),
		api:   api,
	}
	f.service = services.NewSessionService(f.store)
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	f.router = gin.New()
	f.router.Use(ExpiryGuard(logger, f.service, api, time.Minute))
	f.router.GET("/page", func(c *gin.Context) {
		if record, ok := SessionFrom(c); ok {
			f.seen = record
		}
		c.Status(http.StatusOK)
	})
	return f
}

func (f *guardFixture) seed(t *testing.T, accessToken, refreshToken string) {
	t.Helper()
	record := &sessions.Record{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserName:     "Alice",
		UserRoles:    "User",
	}
	if err := f.store.Save(context.Background(), "sid-1", record); err != nil {
		t.Fatalf("seeding session: %v", err)
	}
}

func (f *guardFixture) request(t *testing.T, withCookie bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/page", nil)
	if withCookie {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "sid-1"})
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestGuard_FreshTokenUntouched(t *testing.T) {
	api := &fakeRefresher{}
	f := newGuardFixture(t, api)
	access := encodeAccessToken(t, 10*time.Minute)
	f.seed(t, access, "ref-1")

	f.request(t, true)

	if api.calls != 0 {
		t.Fatalf("refresh called for a fresh token")
	}
	if f.seen == nil || f.seen.AccessToken != access {
		t.Fatalf("handler did not see the session: %+v", f.seen)
	}
}

func TestGuard_NearExpiryTriggersRefreshAndRewrite(t *testing.T) {
	newAccess := encodeAccessToken(t, 15*time.Minute)
	api := &fakeRefresher{out: &client.AuthPayload{
		Token:    client.TokenTriple{AccessToken: newAccess, RefreshToken: "ref-2"},
		FullName: "Alice",
		Roles:    []string{"User"},
	}}
	f := newGuardFixture(t, api)
	f.seed(t, encodeAccessToken(t, 30*time.Second), "ref-1")

	f.request(t, true)

	if api.calls != 1 || api.lastCandidate != "ref-1" {
		t.Fatalf("refresh not called with stored token: calls=%d candidate=%q", api.calls, api.lastCandidate)
	}
	if f.seen == nil || f.seen.AccessToken != newAccess || f.seen.RefreshToken != "ref-2" {
		t.Fatalf("handler saw stale session: %+v", f.seen)
	}

	stored, err := f.store.Load(context.Background(), "sid-1")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if stored.AccessToken != newAccess || stored.RefreshToken != "ref-2" {
		t.Fatalf("session not rewritten: %+v", stored)
	}
}

func TestGuard_AlreadyExpiredTokenAlsoRefreshes(t *testing.T) {
	newAccess := encodeAccessToken(t, 15*time.Minute)
	api := &fakeRefresher{out: &client.AuthPayload{
		Token: client.TokenTriple{AccessToken: newAccess, RefreshToken: "ref-2"},
	}}
	f := newGuardFixture(t, api)

	expired := func() string {
		e, err := tokens.NewEncoder([]byte("0123456789abcdef0123456789abcdef"), "recipecorner", "recipecorner-web", time.Minute)
		if err != nil {
			t.Fatalf("NewEncoder error: %v", err)
		}
		tok, _, err := e.Encode("u1", "a@x.com", "Alice", nil, time.Now().Add(-time.Hour))
		if err != nil {
			t.Fatalf("Encode error: %v", err)
		}
		return tok
	}()
	f.seed(t, expired, "ref-1")

	f.request(t, true)

	if api.calls != 1 {
		t.Fatalf("refresh not attempted for expired token")
	}
	if f.seen == nil || f.seen.AccessToken != newAccess {
		t.Fatalf("handler saw stale session: %+v", f.seen)
	}
}

func TestGuard_InvalidRefreshTokenLeavesSessionStale(t *testing.T) {
	api := &fakeRefresher{err: common.ErrInvalidRefreshToken}
	f := newGuardFixture(t, api)
	stale := encodeAccessToken(t, 30*time.Second)
	f.seed(t, stale, "ref-1")

	rec := f.request(t, true)

	if rec.Code != http.StatusOK {
		t.Fatalf("request blocked: %d", rec.Code)
	}
	stored, err := f.store.Load(context.Background(), "sid-1")
	if err != nil {
		t.Fatalf("session was cleared: %v", err)
	}
	if stored.AccessToken != stale || stored.RefreshToken != "ref-1" {
		t.Fatalf("stale session was mutated: %+v", stored)
	}
}

func TestGuard_UpstreamFailureProceedsWithOldToken(t *testing.T) {
	api := &fakeRefresher{err: common.ErrUpstreamUnavailable}
	f := newGuardFixture(t, api)
	old := encodeAccessToken(t, 30*time.Second)
	f.seed(t, old, "ref-1")

	rec := f.request(t, true)

	if rec.Code != http.StatusOK {
		t.Fatalf("request blocked: %d", rec.Code)
	}
	if f.seen == nil || f.seen.AccessToken != old {
		t.Fatalf("handler did not proceed with old token: %+v", f.seen)
	}
}

func TestGuard_NoCookieOrNoSessionPassesThrough(t *testing.T) {
	api := &fakeRefresher{}
	f := newGuardFixture(t, api)

	rec := f.request(t, false)
	if rec.Code != http.StatusOK || api.calls != 0 {
		t.Fatalf("anonymous request mishandled: code=%d calls=%d", rec.Code, api.calls)
	}

	// Cookie set but nothing stored.
	rec = f.request(t, true)
	if rec.Code != http.StatusOK || api.calls != 0 || f.seen != nil {
		t.Fatalf("ghost session mishandled: code=%d calls=%d seen=%+v", rec.Code, api.calls, f.seen)
	}
}
