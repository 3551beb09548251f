package repomanager

import (
	"context"
	"database/sql"

	"github.com/workhive/filegate/internal/dbx"
	"github.com/workhive/filegate/internal/repositories/applications"
	"github.com/workhive/filegate/internal/repositories/policies"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Policies(db dbx.DBTX) policies.Repository
	Applications(db dbx.DBTX) applications.Repository
}
