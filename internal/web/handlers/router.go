package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/recipecorner/recipecorner/internal/logging"
	"github.com/recipecorner/recipecorner/internal/web/client"
	"github.com/recipecorner/recipecorner/internal/web/middleware"
	"github.com/recipecorner/recipecorner/internal/web/services"
)

// NewRouter assembles the front end's routes. Every route behind the expiry
// guard sees a freshly-refreshed session when one exists.
func NewRouter(logger logging.Logger, api client.Client, sessionService *services.SessionService, refreshThreshold time.Duration) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := New(logger, api, sessionService)

	guarded := router.Group("", middleware.ExpiryGuard(logger, sessionService, api, refreshThreshold))

	guarded.POST("/register", h.Register)
	guarded.POST("/login", h.Login)
	guarded.POST("/logout", h.Logout)
	guarded.GET("/session", h.Session)

	guarded.GET("/recipes", h.ListRecipes)
	guarded.GET("/recipes/:id", h.GetRecipe)
	guarded.POST("/recipes", h.CreateRecipe)
	guarded.PUT("/recipes/:id", h.UpdateRecipe)
	guarded.DELETE("/recipes/:id", h.DeleteRecipe)
	guarded.POST("/recipes/:id/ratings", h.RateRecipe)

	return router
}
