package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/recipecorner/recipecorner/internal/api/services"
	"github.com/recipecorner/recipecorner/internal/common"
	"github.com/recipecorner/recipecorner/internal/logging"
)

// UserAuthenticator is the slice of UserService the auth endpoints need.
type UserAuthenticator interface {
	Register(ctx context.Context, fullName, email, password, secretCode, imageName string, imageData []byte) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	Refresh(ctx context.Context, candidate string) (*services.AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
}

type AuthHandler struct {
	logger logging.Logger
	users  UserAuthenticator
}

func NewAuthHandler(logger logging.Logger, users UserAuthenticator) *AuthHandler {
	return &AuthHandler{logger: logger, users: users}
}

type tokenResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type authResponse struct {
	Token           tokenResponse `json:"token"`
	FullName        string        `json:"fullName"`
	Email           string        `json:"email"`
	ProfileImageURL string        `json:"profileImageUrl"`
	Roles           []string      `json:"roles"`
}

func toAuthResponse(res *services.AuthResult) authResponse {
	return authResponse{
		Token: tokenResponse{
			AccessToken:  res.Token.AccessToken,
			RefreshToken: res.Token.RefreshToken,
			ExpiresAt:    res.Token.ExpiresAt,
		},
		FullName:        res.FullName,
		Email:           res.Email,
		ProfileImageURL: res.ProfileImageURL,
		Roles:           res.Roles,
	}
}

// Register handles POST /api/auth/register. The request is multipart form
// data so it can carry an optional profile image alongside the fields.
func (h *AuthHandler) Register(c *gin.Context) {
	fullName := c.PostForm("fullName")
	email := c.PostForm("email")
	password := c.PostForm("password")
	secretCode := c.PostForm("secretCode")

	if fullName == "" || email == "" || password == "" {
		c.JSON(http.StatusBadRequest, errorBody{Error: "fullName, email and password are required"})
		return
	}

	var imageName string
	var imageData []byte
	if fh, err := c.FormFile("profileImage"); err == nil {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, errorBody{Error: "unreadable profile image"})
			return
		}
		defer f.Close()
		imageData, err = io.ReadAll(f)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorBody{Error: "unreadable profile image"})
			return
		}
		imageName = fh.Filename
	}

	res, err := h.users.Register(c.Request.Context(), fullName, email, password, secretCode, imageName, imageData)
	if err != nil {
		h.logger.Error(c.Request.Context(), "register failed", "email", email, "error", err)
		writeError(c, err)
		return
	}

	h.logger.Info(c.Request.Context(), "user registered", "email", email)
	c.JSON(http.StatusCreated, toAuthResponse(res))
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request payload"})
		return
	}

	res, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAuthResponse(res))
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Refresh handles POST /api/auth/refresh: single-use rotation of the
// submitted refresh token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request payload"})
		return
	}

	res, err := h.users.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if !errors.Is(err, common.ErrInvalidRefreshToken) {
			h.logger.Warn(c.Request.Context(), "refresh failed", "error", err)
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAuthResponse(res))
}

// Logout handles POST /api/auth/logout. Succeeds even when the token is
// already gone.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request payload"})
		return
	}

	if err := h.users.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
