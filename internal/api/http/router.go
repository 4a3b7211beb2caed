package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/recipecorner/recipecorner/internal/api/services"
	"github.com/recipecorner/recipecorner/internal/logging"
	"github.com/recipecorner/recipecorner/internal/tokens"
)

// NewRouter assembles the API routes. Recipe reads are public; create,
// update and ratings need any authenticated user, delete the Admin role.
func NewRouter(logger logging.Logger, encoder *tokens.Encoder, users UserAuthenticator, recipes RecipeManager) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := NewAuthHandler(logger, users)
	recipeHandler := NewRecipeHandler(logger, recipes)

	api := router.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout)

	api.GET("/recipes", recipeHandler.List)
	api.GET("/recipes/:id", recipeHandler.Get)

	authed := api.Group("", Authenticated(encoder))
	authed.POST("/recipes/:id/ratings", recipeHandler.AddRating)
	authed.POST("/recipes", recipeHandler.Create)
	authed.PUT("/recipes/:id", recipeHandler.Update)

	admin := authed.Group("", RequireRole(services.RoleAdmin))
	admin.DELETE("/recipes/:id", recipeHandler.Delete)

	return router
}
