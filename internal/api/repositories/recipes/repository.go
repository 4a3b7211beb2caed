// Package recipes persists recipe aggregates: the recipe row plus its
// ingredients, instructions, and ratings.
package recipes

import (
	"context"

	"github.com/recipecorner/recipecorner/internal/api/models"
)

// Repository defines persistence for recipe aggregates. Multi-row writes
// (Create, Update) expect to run inside a transaction; the service layer
// provides one by constructing the repository over a *sql.Tx.
type Repository interface {
	// List returns all recipes without their child collections.
	List(ctx context.Context) ([]*models.Recipe, error)

	// Get returns one recipe with ingredients, instructions, and ratings,
	// or ErrorNotFound.
	Get(ctx context.Context, id int64) (*models.Recipe, error)

	// Create inserts the recipe and its child rows, returning the recipe
	// with generated ids.
	Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error)

	// Update rewrites the recipe row and replaces its child rows.
	Update(ctx context.Context, recipe *models.Recipe) error

	// Delete removes the recipe; child rows cascade.
	Delete(ctx context.Context, id int64) error

	// AddRating appends a rating to a recipe.
	AddRating(ctx context.Context, rating *models.Rating) (*models.Rating, error)
}
