package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/recipecorner/recipecorner/internal/api/models"
	"github.com/recipecorner/recipecorner/internal/api/services"
	"github.com/recipecorner/recipecorner/internal/common"
	"github.com/recipecorner/recipecorner/internal/logging"
	"github.com/recipecorner/recipecorner/internal/tokens"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUsers struct {
	registerOut *services.AuthResult
	registerErr error
	loginOut    *services.AuthResult
	loginErr    error
	refreshOut  *services.AuthResult
	refreshErr  error
	logoutErr   error

	lastRefreshCandidate string
	lastImageName        string
	lastImageSize        int
	lastSecretCode       string
}

func (f *fakeUsers) Register(ctx context.Context, fullName, email, password, secretCode, imageName string, imageData []byte) (*services.AuthResult, error) {
	f.lastSecretCode = secretCode
	f.lastImageName = imageName
	f.lastImageSize = len(imageData)
	return f.registerOut, f.registerErr
}
func (f *fakeUsers) Login(ctx context.Context, email, password string) (*services.AuthResult, error) {
	return f.loginOut, f.loginErr
}
func (f *fakeUsers) Refresh(ctx context.Context, candidate string) (*services.AuthResult, error) {
	f.lastRefreshCandidate = candidate
	return f.refreshOut, f.refreshErr
}
func (f *fakeUsers) Logout(ctx context.Context, refreshToken string) error {
	return f.logoutErr
}

type fakeRecipes struct {
	listOut   []*models.Recipe
	getOut    *models.Recipe
	getErr    error
	createOut *models.Recipe
	createErr error
	updateErr error
	deleteErr error
	ratingOut *models.Rating
	ratingErr error

	lastRating *models.Rating
}

func (f *fakeRecipes) List(ctx context.Context) ([]*models.Recipe, error) { return f.listOut, nil }
func (f *fakeRecipes) Get(ctx context.Context, id int64) (*models.Recipe, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}
func (f *fakeRecipes) Create(ctx context.Context, r *models.Recipe) (*models.Recipe, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}
func (f *fakeRecipes) Update(ctx context.Context, r *models.Recipe) error { return f.updateErr }
func (f *fakeRecipes) Delete(ctx context.Context, id int64) error         { return f.deleteErr }
func (f *fakeRecipes) AddRating(ctx context.Context, r *models.Rating) (*models.Rating, error) {
	f.lastRating = r
	if f.ratingErr != nil {
		return nil, f.ratingErr
	}
	return f.ratingOut, nil
}

func testEncoder(t *testing.T) *tokens.Encoder {
	t.Helper()
	e, err := tokens.NewEncoder([]byte("0123456789abcdef0123456789abcdef"), "recipecorner", "recipecorner-web", 15*time.Minute)
	if err != nil {
		t.Fatalf("NewEncoder error: %v", err)
	}
	return e
}

func newTestRouter(t *testing.T, users *fakeUsers, recipes *fakeRecipes) (*gin.Engine, *tokens.Encoder) {
	t.Helper()
	if users == nil {
		users = &fakeUsers{}
	}
	if recipes == nil {
		recipes = &fakeRecipes{}
	}
	encoder := testEncoder(t)
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewRouter(logger, encoder, users, recipes), encoder
}

func bearerFor(t *testing.T, encoder *tokens.Encoder, roles []string) string {
	t.Helper()
	tok, _, err := encoder.Encode("u1", "a@x.com", "Alice", roles, time.Now())
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	return "Bearer " + tok
}

func sampleAuthResult() *services.AuthResult {
	return &services.AuthResult{
		Token: services.TokenTriple{
			AccessToken:  "acc",
			RefreshToken: "ref",
			ExpiresAt:    time.Now().Add(15 * time.Minute),
		},
		FullName: "Alice",
		Email:    "a@x.com",
		Roles:    []string{"User"},
	}
}

func TestRegister_Multipart(t *testing.T) {
	users := &fakeUsers{registerOut: sampleAuthResult()}
	router, _ := newTestRouter(t, users, nil)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("fullName", "Alice")
	_ = w.WriteField("email", "a@x.com")
	_ = w.WriteField("password", "pw")
	_ = w.WriteField("secretCode", "shh")
	fw, err := w.CreateFormFile("profileImage", "avatar.png")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write([]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("writing part: %v", err)
	}
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if users.lastSecretCode != "shh" || users.lastImageName != "avatar.png" || users.lastImageSize != 4 {
		t.Fatalf("form fields not forwarded: %+v", users)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	tok, ok := body["token"].(map[string]any)
	if !ok || tok["accessToken"] != "acc" || tok["refreshToken"] != "ref" {
		t.Fatalf("unexpected token payload: %v", body)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	router, _ := newTestRouter(t, nil, nil)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("email", "a@x.com")
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRegister_DuplicateEmailIs409(t *testing.T) {
	users := &fakeUsers{registerErr: common.ErrorConflict}
	router, _ := newTestRouter(t, users, nil)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("fullName", "Alice")
	_ = w.WriteField("email", "a@x.com")
	_ = w.WriteField("password", "pw")
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	users := &fakeUsers{loginErr: common.ErrInvalidCredentials}
	router, _ := newTestRouter(t, users, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@x.com","password":"bad"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
}

func TestRefresh_SuccessAndInvalid(t *testing.T) {
	users := &fakeUsers{refreshOut: sampleAuthResult()}
	router, _ := newTestRouter(t, users, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", strings.NewReader(`{"refreshToken":"old-token"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if users.lastRefreshCandidate != "old-token" {
		t.Fatalf("candidate not forwarded: %q", users.lastRefreshCandidate)
	}

	users.refreshErr = common.ErrInvalidRefreshToken
	users.refreshOut = nil
	req = httptest.NewRequest(http.MethodPost, "/api/auth/refresh", strings.NewReader(`{"refreshToken":"stale"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRefresh_UpstreamUnavailable(t *testing.T) {
	users := &fakeUsers{refreshErr: common.ErrUpstreamUnavailable}
	router, _ := newTestRouter(t, users, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", strings.NewReader(`{"refreshToken":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestLogout_NoContent(t *testing.T) {
	router, _ := newTestRouter(t, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", strings.NewReader(`{"refreshToken":"r"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRecipeCreateUpdate_AnyAuthenticatedUser(t *testing.T) {
	recipes := &fakeRecipes{createOut: &models.Recipe{ID: 1, Name: "Pho"}}
	router, encoder := newTestRouter(t, nil, recipes)

	body := `{"name":"Pho","cookingTimeMinutes":45}`

	// No token.
	req := httptest.NewRequest(http.MethodPost, "/api/recipes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d", rec.Code)
	}

	// A plain User can create.
	req = httptest.NewRequest(http.MethodPost, "/api/recipes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerFor(t, encoder, []string{"User"}))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("user role create: status = %d, body %s", rec.Code, rec.Body)
	}

	// And update.
	req = httptest.NewRequest(http.MethodPut, "/api/recipes/1", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerFor(t, encoder, []string{"User"}))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("user role update: status = %d, body %s", rec.Code, rec.Body)
	}
}

func TestRecipeDelete_RequiresAdmin(t *testing.T) {
	router, encoder := newTestRouter(t, nil, &fakeRecipes{})

	// No token.
	req := httptest.NewRequest(http.MethodDelete, "/api/recipes/1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d", rec.Code)
	}

	// User role.
	req = httptest.NewRequest(http.MethodDelete, "/api/recipes/1", nil)
	req.Header.Set("Authorization", bearerFor(t, encoder, []string{"User"}))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("user role: status = %d", rec.Code)
	}

	// Admin role.
	req = httptest.NewRequest(http.MethodDelete, "/api/recipes/1", nil)
	req.Header.Set("Authorization", bearerFor(t, encoder, []string{"Admin"}))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("admin role: status = %d, body %s", rec.Code, rec.Body)
	}
}

func TestRecipeGet_PublicAndNotFound(t *testing.T) {
	recipes := &fakeRecipes{getOut: &models.Recipe{ID: 3, Name: "Ramen", CookingTime: 30 * time.Minute}}
	router, _ := newTestRouter(t, nil, recipes)

	req := httptest.NewRequest(http.MethodGet, "/api/recipes/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got recipeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.Name != "Ramen" || got.CookingTimeMinutes != 30 {
		t.Fatalf("unexpected body: %+v", got)
	}

	recipes.getErr = common.ErrorNotFound
	req = httptest.NewRequest(http.MethodGet, "/api/recipes/99", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/recipes/abc", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAddRating_UserComesFromToken(t *testing.T) {
	recipes := &fakeRecipes{ratingOut: &models.Rating{ID: 1, RecipeID: 3, UserID: "u1", Stars: 5}}
	router, encoder := newTestRouter(t, nil, recipes)

	req := httptest.NewRequest(http.MethodPost, "/api/recipes/3/ratings", strings.NewReader(`{"stars":5,"userId":"spoofed"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerFor(t, encoder, []string{"User"}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if recipes.lastRating.UserID != "u1" {
		t.Fatalf("rating user = %q, want the token subject", recipes.lastRating.UserID)
	}
}

func TestAuthenticated_RejectsExpiredToken(t *testing.T) {
	router, encoder := newTestRouter(t, nil, nil)

	tok, _, err := encoder.Encode("u1", "a@x.com", "A", []string{"Admin"}, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	req := httptest.NewRequest(http.MethodDelete, "/api/recipes/1", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestWriteError_UnknownErrorIs500(t *testing.T) {
	users := &fakeUsers{loginErr: errors.New("weird")}
	router, _ := newTestRouter(t, users, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@x.com","password":"p"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "weird") {
		t.Fatalf("internal detail leaked: %s", rec.Body)
	}
}
