// Package services orchestrates the upload and retrieval flows: minting
// upload grants, committing access policies, and serving object bytes after
// an access decision.
package services

import (
	"context"
	"database/sql"
	"io"

	"github.com/workhive/filegate/internal/access"
	"github.com/workhive/filegate/internal/auth"
	"github.com/workhive/filegate/internal/blobstore"
	"github.com/workhive/filegate/internal/config"
	"github.com/workhive/filegate/internal/logging"
	"github.com/workhive/filegate/internal/objectpath"
	"github.com/workhive/filegate/internal/repositories/repomanager"
)

// AccessDecider is the slice of the access engine this service needs.
type AccessDecider interface {
	CanRead(ctx context.Context, principal auth.Principal, path objectpath.Path) (access.Decision, error)
}

// ObjectDownload carries one authorized object stream back to the transport
// layer. The caller must close Body.
type ObjectDownload struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

// ObjectService implements the grant, commit and fetch operations.
type ObjectService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       blobstore.Store
	engine      AccessDecider
	config      *config.Config
	log         logging.Logger
}

func NewObjectService(db *sql.DB, repomanager repomanager.RepositoryManager, store blobstore.Store,
	engine AccessDecider, config *config.Config, log logging.Logger) *ObjectService {
	return &ObjectService{
		db:          db,
		repomanager: repomanager,
		store:       store,
		engine:      engine,
		config:      config,
		log:         log,
	}
}
