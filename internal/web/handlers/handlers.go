// Package handlers implements the web front end's HTTP surface: auth pages
// proxied to the API plus recipe browsing, all keyed off the session cookie.
package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/recipecorner/recipecorner/internal/common"
	"github.com/recipecorner/recipecorner/internal/logging"
	"github.com/recipecorner/recipecorner/internal/web/client"
	"github.com/recipecorner/recipecorner/internal/web/middleware"
	"github.com/recipecorner/recipecorner/internal/web/services"
	"github.com/recipecorner/recipecorner/internal/web/sessions"
)

const sessionIDBytes = 32

type Handler struct {
	logger   logging.Logger
	api      client.Client
	sessions *services.SessionService
}

func New(logger logging.Logger, api client.Client, sessionService *services.SessionService) *Handler {
	return &Handler{logger: logger, api: api, sessions: sessionService}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, errorBody{Error: "invalid credentials"})
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, sessions.ErrNoSession):
		c.JSON(http.StatusUnauthorized, errorBody{Error: "unauthorized"})
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, common.ErrorInvalidArgument):
		c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, common.ErrorConflict):
		c.JSON(http.StatusConflict, errorBody{Error: "already exists"})
	case errors.Is(err, common.ErrUpstreamUnavailable):
		c.JSON(http.StatusBadGateway, errorBody{Error: "service unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// userView is what the browser gets to see of a session. Tokens stay on
// the server side of the cookie boundary.
type userView struct {
	UserName  string `json:"userName"`
	UserImage string `json:"userImage"`
	UserRoles string `json:"userRoles"`
}

func (h *Handler) startSession(c *gin.Context, payload *client.AuthPayload) error {
	sessionID, err := common.MakeRandURLString(sessionIDBytes)
	if err != nil {
		return err
	}
	if err := h.sessions.Sync(c.Request.Context(), sessionID, payload); err != nil {
		return err
	}
	c.SetCookie(middleware.SessionCookie, sessionID, 0, "/", "", false, true)
	return nil
}

// Register handles POST /register: multipart form forwarded to the API,
// then a fresh session for the new user.
func (h *Handler) Register(c *gin.Context) {
	form := client.RegisterForm{
		FullName:   c.PostForm("fullName"),
		Email:      c.PostForm("email"),
		Password:   c.PostForm("password"),
		SecretCode: c.PostForm("secretCode"),
	}
	if fh, err := c.FormFile("profileImage"); err == nil {
		if f, err := fh.Open(); err == nil {
			form.ImageName, form.ImageData = formImage(fh.Filename, f)
			_ = f.Close()
		}
	}

	payload, err := h.api.Register(c.Request.Context(), form)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.startSession(c, payload); err != nil {
		h.logger.Error(c.Request.Context(), "starting session", "error", err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userView{UserName: payload.FullName, UserImage: payload.ProfileImageURL})
}

// formImage reads the optional profile image part. A part that cannot be
// read fully is skipped so the user registers without an image instead of
// with a truncated one.
func formImage(name string, r io.Reader) (string, []byte) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", nil
	}
	return name, data
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /login.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request payload"})
		return
	}

	payload, err := h.api.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.startSession(c, payload); err != nil {
		h.logger.Error(c.Request.Context(), "starting session", "error", err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userView{UserName: payload.FullName, UserImage: payload.ProfileImageURL})
}

// Logout handles POST /logout: revoke the refresh token at the API, clear
// the session, drop the cookie. The session is cleared even when the API
// call fails; the browser's session ends either way.
func (h *Handler) Logout(c *gin.Context) {
	sessionID, ok := middleware.SessionIDFrom(c)
	if ok {
		if record, ok := middleware.SessionFrom(c); ok {
			if err := h.api.Logout(c.Request.Context(), record.RefreshToken); err != nil {
				h.logger.Warn(c.Request.Context(), "api logout failed", "error", err)
			}
		}
		if err := h.sessions.Clear(c.Request.Context(), sessionID); err != nil {
			h.logger.Error(c.Request.Context(), "clearing session", "error", err)
		}
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

// Session handles GET /session: the browser's view of who is logged in.
func (h *Handler) Session(c *gin.Context) {
	record, ok := middleware.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, userView{UserName: record.UserName, UserImage: record.UserImage, UserRoles: record.UserRoles})
}

func (h *Handler) accessToken(c *gin.Context) string {
	if record, ok := middleware.SessionFrom(c); ok {
		return record.AccessToken
	}
	return ""
}

func recipeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid recipe id"})
		return 0, false
	}
	return id, true
}

// ListRecipes handles GET /recipes.
func (h *Handler) ListRecipes(c *gin.Context) {
	list, err := h.api.ListRecipes(c.Request.Context(), h.accessToken(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetRecipe handles GET /recipes/:id.
func (h *Handler) GetRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	recipe, err := h.api.GetRecipe(c.Request.Context(), h.accessToken(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// CreateRecipe handles POST /recipes.
func (h *Handler) CreateRecipe(c *gin.Context) {
	var recipe client.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request payload"})
		return
	}
	created, err := h.api.CreateRecipe(c.Request.Context(), h.accessToken(c), &recipe)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateRecipe handles PUT /recipes/:id.
func (h *Handler) UpdateRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	var recipe client.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request payload"})
		return
	}
	recipe.ID = id
	if err := h.api.UpdateRecipe(c.Request.Context(), h.accessToken(c), &recipe); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteRecipe handles DELETE /recipes/:id.
func (h *Handler) DeleteRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	if err := h.api.DeleteRecipe(c.Request.Context(), h.accessToken(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type rateRequest struct {
	Stars   int    `json:"stars" binding:"required"`
	Comment string `json:"comment"`
}

// RateRecipe handles POST /recipes/:id/ratings.
func (h *Handler) RateRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request payload"})
		return
	}
	if err := h.api.AddRating(c.Request.Context(), h.accessToken(c), id, req.Stars, req.Comment); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}
