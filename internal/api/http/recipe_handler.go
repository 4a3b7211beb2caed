package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/recipecorner/recipecorner/internal/api/models"
	"github.com/recipecorner/recipecorner/internal/logging"
)

// RecipeManager is the slice of RecipeService the recipe endpoints need.
type RecipeManager interface {
	List(ctx context.Context) ([]*models.Recipe, error)
	Get(ctx context.Context, id int64) (*models.Recipe, error)
	Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error)
	Update(ctx context.Context, recipe *models.Recipe) error
	Delete(ctx context.Context, id int64) error
	AddRating(ctx context.Context, rating *models.Rating) (*models.Rating, error)
}

type RecipeHandler struct {
	logger  logging.Logger
	recipes RecipeManager
}

func NewRecipeHandler(logger logging.Logger, recipes RecipeManager) *RecipeHandler {
	return &RecipeHandler{logger: logger, recipes: recipes}
}

type ingredientDTO struct {
	Name     string `json:"name" binding:"required"`
	Quantity string `json:"quantity"`
}

type instructionDTO struct {
	Order int    `json:"order"`
	Step  string `json:"step" binding:"required"`
	Tip   string `json:"tip"`
}

type ratingDTO struct {
	UserID    string    `json:"userId"`
	Stars     int       `json:"stars"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

type recipeRequest struct {
	Name               string           `json:"name" binding:"required"`
	Description        string           `json:"description"`
	Cuisine            string           `json:"cuisine"`
	MealType           string           `json:"mealType"`
	CookingTimeMinutes int              `json:"cookingTimeMinutes"`
	ImageURL           string           `json:"imageUrl"`
	Ingredients        []ingredientDTO  `json:"ingredients"`
	Instructions       []instructionDTO `json:"instructions"`
}

type recipeResponse struct {
	ID                 int64            `json:"id"`
	Name               string           `json:"name"`
	Description        string           `json:"description"`
	Cuisine            string           `json:"cuisine"`
	MealType           string           `json:"mealType"`
	CookingTimeMinutes int              `json:"cookingTimeMinutes"`
	ImageURL           string           `json:"imageUrl"`
	Ingredients        []ingredientDTO  `json:"ingredients,omitempty"`
	Instructions       []instructionDTO `json:"instructions,omitempty"`
	Ratings            []ratingDTO      `json:"ratings,omitempty"`
}

func (r recipeRequest) toModel(id int64) *models.Recipe {
	recipe := &models.Recipe{
		ID:          id,
		Name:        r.Name,
		Description: r.Description,
		Cuisine:     r.Cuisine,
		MealType:    r.MealType,
		CookingTime: time.Duration(r.CookingTimeMinutes) * time.Minute,
		ImageURL:    r.ImageURL,
	}
	for _, i := range r.Ingredients {
		recipe.Ingredients = append(recipe.Ingredients, models.Ingredient{Name: i.Name, Quantity: i.Quantity})
	}
	for n, i := range r.Instructions {
		order := i.Order
		if order == 0 {
			order = n + 1
		}
		recipe.Instructions = append(recipe.Instructions, models.Instruction{Order: order, Step: i.Step, Tip: i.Tip})
	}
	return recipe
}

func toRecipeResponse(r *models.Recipe) recipeResponse {
	out := recipeResponse{
		ID:                 r.ID,
		Name:               r.Name,
		Description:        r.Description,
		Cuisine:            r.Cuisine,
		MealType:           r.MealType,
		CookingTimeMinutes: int(r.CookingTime / time.Minute),
		ImageURL:           r.ImageURL,
	}
	for _, i := range r.Ingredients {
		out.Ingredients = append(out.Ingredients, ingredientDTO{Name: i.Name, Quantity: i.Quantity})
	}
	for _, i := range r.Instructions {
		out.Instructions = append(out.Instructions, instructionDTO{Order: i.Order, Step: i.Step, Tip: i.Tip})
	}
	for _, rt := range r.Ratings {
		out.Ratings = append(out.Ratings, ratingDTO{UserID: rt.UserID, Stars: rt.Stars, Comment: rt.Comment, CreatedAt: rt.CreatedAt})
	}
	return out
}

func recipeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid recipe id"})
		return 0, false
	}
	return id, true
}

// List handles GET /api/recipes.
func (h *RecipeHandler) List(c *gin.Context) {
	list, err := h.recipes.List(c.Request.Context())
	if err != nil {
		h.logger.Error(c.Request.Context(), "listing recipes failed", "error", err)
		writeError(c, err)
		return
	}
	out := make([]recipeResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toRecipeResponse(r))
	}
	c.JSON(http.StatusOK, out)
}

// Get handles GET /api/recipes/:id.
func (h *RecipeHandler) Get(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	recipe, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecipeResponse(recipe))
}

// Create handles POST /api/recipes. Any authenticated user.
func (h *RecipeHandler) Create(c *gin.Context) {
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request payload"})
		return
	}
	created, err := h.recipes.Create(c.Request.Context(), req.toModel(0))
	if err != nil {
		h.logger.Error(c.Request.Context(), "creating recipe failed", "error", err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRecipeResponse(created))
}

// Update handles PUT /api/recipes/:id. Any authenticated user.
func (h *RecipeHandler) Update(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request payload"})
		return
	}
	if err := h.recipes.Update(c.Request.Context(), req.toModel(id)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete handles DELETE /api/recipes/:id. Admin only.
func (h *RecipeHandler) Delete(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type addRatingRequest struct {
	Stars   int    `json:"stars" binding:"required"`
	Comment string `json:"comment"`
}

// AddRating handles POST /api/recipes/:id/ratings. The rating's user comes
// from the verified token, never from the request body.
func (h *RecipeHandler) AddRating(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	claims := claimsFrom(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return
	}
	var req addRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request payload"})
		return
	}
	rating, err := h.recipes.AddRating(c.Request.Context(), &models.Rating{
		RecipeID: id,
		UserID:   claims.Subject,
		Stars:    req.Stars,
		Comment:  req.Comment,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ratingDTO{UserID: rating.UserID, Stars: rating.Stars, Comment: rating.Comment, CreatedAt: rating.CreatedAt})
}
