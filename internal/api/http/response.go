// Package http exposes the API server's REST surface with gin: auth
// endpoints driving the token lifecycle and recipe CRUD behind bearer auth.
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/recipecorner/recipecorner/internal/common"
)

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps sentinel errors to HTTP statuses. Anything unmatched is a
// 500 with a generic body; internal detail never leaks to clients.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, errorBody{Error: "invalid credentials"})
	case errors.Is(err, common.ErrInvalidRefreshToken):
		c.JSON(http.StatusUnauthorized, errorBody{Error: "invalid refresh token"})
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrorUnauthorized):
		c.JSON(http.StatusUnauthorized, errorBody{Error: "unauthorized"})
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, common.ErrorInvalidArgument):
		c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, common.ErrorConflict):
		c.JSON(http.StatusConflict, errorBody{Error: "already exists"})
	case errors.Is(err, common.ErrUpstreamUnavailable):
		c.JSON(http.StatusServiceUnavailable, errorBody{Error: "service unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}
