package policies

import (
	"context"

	"github.com/workhive/filegate/internal/models"
)

type Repository interface {
	// Attach creates the policy row for a path or updates its visibility.
	// The owner recorded by the first write wins forever; an attach naming
	// a different owner returns common.ErrOwnershipConflict.
	Attach(ctx context.Context, policy *models.ObjectPolicy) error
	// GetByPath returns the policy for a path, or common.ErrorNotFound.
	GetByPath(ctx context.Context, path string) (*models.ObjectPolicy, error)
}
