// Package repomanager wires repositories to a database handle and applies
// migrations. Factories take a dbx.DBTX so services can pass either the
// *sql.DB or an open transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/recipecorner/recipecorner/internal/api/repositories/recipes"
	"github.com/recipecorner/recipecorner/internal/api/repositories/users"
	"github.com/recipecorner/recipecorner/internal/dbx"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Recipes(db dbx.DBTX) recipes.Repository
}
