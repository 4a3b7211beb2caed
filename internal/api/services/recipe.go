package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/recipecorner/recipecorner/internal/api/models"
	"github.com/recipecorner/recipecorner/internal/api/repositories/repomanager"
	"github.com/recipecorner/recipecorner/internal/common"
	"github.com/recipecorner/recipecorner/internal/dbx"
)

// RecipeService exposes recipe aggregate CRUD. Multi-row writes run inside
// a transaction so a failed child insert never leaves a half-written recipe.
type RecipeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewRecipeService(db *sql.DB, repomanager repomanager.RepositoryManager) *RecipeService {
	return &RecipeService{
		db:          db,
		repomanager: repomanager,
	}
}

func (s *RecipeService) List(ctx context.Context) ([]*models.Recipe, error) {
	repo := s.repomanager.Recipes(s.db)
	list, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing recipes: %w", err)
	}
	return list, nil
}

func (s *RecipeService) Get(ctx context.Context, id int64) (*models.Recipe, error) {
	repo := s.repomanager.Recipes(s.db)
	recipe, err := repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error loading recipe: %w", err)
	}
	return recipe, nil
}

func (s *RecipeService) Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	var created *models.Recipe
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Recipes(tx)
		var err error
		created, err = repo.Create(ctx, recipe)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error creating recipe: %w", err)
	}
	return created, nil
}

func (s *RecipeService) Update(ctx context.Context, recipe *models.Recipe) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Recipes(tx)
		return repo.Update(ctx, recipe)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error updating recipe: %w", err)
	}
	return nil
}

func (s *RecipeService) Delete(ctx context.Context, id int64) error {
	repo := s.repomanager.Recipes(s.db)
	if err := repo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error deleting recipe: %w", err)
	}
	return nil
}

func (s *RecipeService) AddRating(ctx context.Context, rating *models.Rating) (*models.Rating, error) {
	if rating.Stars < 1 || rating.Stars > 5 {
		return nil, fmt.Errorf("%w: stars must be between 1 and 5", common.ErrorInvalidArgument)
	}
	repo := s.repomanager.Recipes(s.db)
	created, err := repo.AddRating(ctx, rating)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error adding rating: %w", err)
	}
	return created, nil
}
