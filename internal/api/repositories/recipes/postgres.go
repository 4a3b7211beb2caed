package recipes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/recipecorner/recipecorner/internal/api/models"
	"github.com/recipecorner/recipecorner/internal/common"
	"github.com/recipecorner/recipecorner/internal/dbx"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Recipe, error) {
	query := `
		SELECT id, name, description, cuisine, meal_type, cooking_time_seconds, image_url
		FROM recipes
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var recipes []*models.Recipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return recipes, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Recipe, error) {
	query := `
		SELECT id, name, description, cuisine, meal_type, cooking_time_seconds, image_url
		FROM recipes
		WHERE id = $1
	`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		return nil, common.ErrorNotFound
	}
	recipe, err := scanRecipe(rows)
	if err != nil {
		return nil, err
	}
	rows.Close()

	if recipe.Ingredients, err = r.ingredients(ctx, id); err != nil {
		return nil, err
	}
	if recipe.Instructions, err = r.instructions(ctx, id); err != nil {
		return nil, err
	}
	if recipe.Ratings, err = r.ratings(ctx, id); err != nil {
		return nil, err
	}
	return recipe, nil
}

func (r *PostgresRepository) Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	query := `
		INSERT INTO recipes (name, description, cuisine, meal_type, cooking_time_seconds, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		recipe.Name, recipe.Description, recipe.Cuisine, recipe.MealType,
		int64(recipe.CookingTime.Seconds()), recipe.ImageURL).
		Scan(&recipe.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := r.insertChildren(ctx, recipe); err != nil {
		return nil, err
	}
	return recipe, nil
}

func (r *PostgresRepository) Update(ctx context.Context, recipe *models.Recipe) error {
	query := `
		UPDATE recipes
		SET name = $2, description = $3, cuisine = $4, meal_type = $5,
		    cooking_time_seconds = $6, image_url = $7
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		recipe.ID, recipe.Name, recipe.Description, recipe.Cuisine, recipe.MealType,
		int64(recipe.CookingTime.Seconds()), recipe.ImageURL)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	// Replace child rows wholesale; ratings are user data and are kept.
	for _, table := range []string{"ingredients", "instructions"} {
		if _, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE recipe_id = $1", table), recipe.ID); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return r.insertChildren(ctx, recipe)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) AddRating(ctx context.Context, rating *models.Rating) (*models.Rating, error) {
	query := `
		INSERT INTO ratings (recipe_id, user_id, stars, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		rating.RecipeID, rating.UserID, rating.Stars, rating.Comment).
		Scan(&rating.ID, &rating.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rating, nil
}

func (r *PostgresRepository) insertChildren(ctx context.Context, recipe *models.Recipe) error {
	for i := range recipe.Ingredients {
		ing := &recipe.Ingredients[i]
		ing.RecipeID = recipe.ID
		err := r.db.QueryRowContext(ctx,
			`INSERT INTO ingredients (recipe_id, name, quantity) VALUES ($1, $2, $3) RETURNING id`,
			ing.RecipeID, ing.Name, ing.Quantity).Scan(&ing.ID)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	for i := range recipe.Instructions {
		ins := &recipe.Instructions[i]
		ins.RecipeID = recipe.ID
		err := r.db.QueryRowContext(ctx,
			`INSERT INTO instructions (recipe_id, step_order, step, tip) VALUES ($1, $2, $3, $4) RETURNING id`,
			ins.RecipeID, ins.Order, ins.Step, ins.Tip).Scan(&ins.ID)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) ingredients(ctx context.Context, recipeID int64) ([]models.Ingredient, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, recipe_id, name, quantity FROM ingredients WHERE recipe_id = $1 ORDER BY id`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Ingredient
	for rows.Next() {
		var ing models.Ingredient
		if err := rows.Scan(&ing.ID, &ing.RecipeID, &ing.Name, &ing.Quantity); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, ing)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) instructions(ctx context.Context, recipeID int64) ([]models.Instruction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, recipe_id, step_order, step, tip FROM instructions WHERE recipe_id = $1 ORDER BY step_order`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Instruction
	for rows.Next() {
		var ins models.Instruction
		if err := rows.Scan(&ins.ID, &ins.RecipeID, &ins.Order, &ins.Step, &ins.Tip); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, ins)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) ratings(ctx context.Context, recipeID int64) ([]models.Rating, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, recipe_id, user_id, stars, comment, created_at FROM ratings WHERE recipe_id = $1 ORDER BY created_at`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Rating
	for rows.Next() {
		var rt models.Rating
		if err := rows.Scan(&rt.ID, &rt.RecipeID, &rt.UserID, &rt.Stars, &rt.Comment, &rt.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner) (*models.Recipe, error) {
	recipe := &models.Recipe{}
	var seconds int64
	err := row.Scan(&recipe.ID, &recipe.Name, &recipe.Description, &recipe.Cuisine,
		&recipe.MealType, &seconds, &recipe.ImageURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	recipe.CookingTime = time.Duration(seconds) * time.Second
	return recipe, nil
}
