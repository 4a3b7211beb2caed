package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/recipecorner/recipecorner/internal/common"
)

// HTTPClient talks JSON over HTTP to the API server.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path, accessToken string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return common.ErrUpstreamUnavailable
	}
	defer resp.Body.Close()

	if err := statusToError(resp.StatusCode); err != nil {
		return err
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding api response: %w", err)
		}
	}
	return nil
}

// statusToError maps HTTP statuses to sentinel errors. 401 is
// ErrorUnauthorized here; the auth methods refine it to the operation's
// own sentinel.
func statusToError(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case code == http.StatusForbidden:
		return common.ErrorUnauthorized
	case code == http.StatusNotFound:
		return common.ErrorNotFound
	case code == http.StatusBadRequest:
		return common.ErrorInvalidArgument
	case code == http.StatusConflict:
		return common.ErrorConflict
	case code >= 500:
		return common.ErrUpstreamUnavailable
	default:
		return fmt.Errorf("unexpected api status %d", code)
	}
}

func (c *HTTPClient) Register(ctx context.Context, form RegisterForm) (*AuthPayload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := map[string]string{
		"fullName":   form.FullName,
		"email":      form.Email,
		"password":   form.Password,
		"secretCode": form.SecretCode,
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if len(form.ImageData) > 0 {
		fw, err := w.CreateFormFile("profileImage", form.ImageName)
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write(form.ImageData); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/register", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, common.ErrUpstreamUnavailable
	}
	defer resp.Body.Close()

	if err := statusToError(resp.StatusCode); err != nil {
		return nil, err
	}

	var payload AuthPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding api response: %w", err)
	}
	return &payload, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*AuthPayload, error) {
	var payload AuthPayload
	in := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", "", in, &payload); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}
	return &payload, nil
}

func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (*AuthPayload, error) {
	var payload AuthPayload
	in := map[string]string{"refreshToken": refreshToken}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/refresh", "", in, &payload); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, common.ErrInvalidRefreshToken
		}
		return nil, err
	}
	return &payload, nil
}

func (c *HTTPClient) Logout(ctx context.Context, refreshToken string) error {
	in := map[string]string{"refreshToken": refreshToken}
	return c.doJSON(ctx, http.MethodPost, "/api/auth/logout", "", in, nil)
}

func (c *HTTPClient) ListRecipes(ctx context.Context, accessToken string) ([]Recipe, error) {
	var out []Recipe
	if err := c.doJSON(ctx, http.MethodGet, "/api/recipes", accessToken, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetRecipe(ctx context.Context, accessToken string, id int64) (*Recipe, error) {
	var out Recipe
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/recipes/%d", id), accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CreateRecipe(ctx context.Context, accessToken string, recipe *Recipe) (*Recipe, error) {
	var out Recipe
	if err := c.doJSON(ctx, http.MethodPost, "/api/recipes", accessToken, recipe, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateRecipe(ctx context.Context, accessToken string, recipe *Recipe) error {
	return c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/recipes/%d", recipe.ID), accessToken, recipe, nil)
}

func (c *HTTPClient) DeleteRecipe(ctx context.Context, accessToken string, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/recipes/%d", id), accessToken, nil, nil)
}

func (c *HTTPClient) AddRating(ctx context.Context, accessToken string, recipeID int64, stars int, comment string) error {
	in := map[string]any{"stars": stars, "comment": comment}
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/recipes/%d/ratings", recipeID), accessToken, in, nil)
}
