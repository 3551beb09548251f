package services

import (
	"context"
	"errors"

	"github.com/workhive/filegate/internal/audit"
	"github.com/workhive/filegate/internal/auth"
	"github.com/workhive/filegate/internal/common"
	"github.com/workhive/filegate/internal/dbx"
	"github.com/workhive/filegate/internal/models"
	"github.com/workhive/filegate/internal/objectpath"
	"github.com/workhive/filegate/internal/obs"
)

// AttachPolicy commits an uploaded object into the ledger: it re-validates
// the path, requires the caller to be the owner the path names, requires the
// bytes to actually be in storage, and then writes the policy row. The first
// write fixes the owner; later writes can only change visibility and only
// when they come from that owner.
func (s *ObjectService) AttachPolicy(ctx context.Context, principal auth.Principal,
	rawPath string, visibility string) (*models.ObjectPolicy, error) {

	path, err := objectpath.Parse(rawPath)
	if err != nil {
		return nil, err
	}

	if path.Owner() != principal.ID {
		obs.RecordOwnershipConflict()
		audit.LogError(ctx, s.log, "policy.attach.denied",
			"path", path.String(), "reason", "path owned by another user")
		return nil, common.ErrOwnershipConflict
	}

	if !models.ValidVisibility(models.Visibility(visibility)) {
		return nil, common.ErrInvalidVisibility
	}

	exists, err := s.store.Exists(ctx, path.Key())
	if err != nil {
		return nil, err
	}
	if !exists {
		// Nothing was uploaded under the granted path; there is nothing
		// to commit.
		return nil, common.ErrObjectNotFound
	}

	policy := &models.ObjectPolicy{
		Path:       path.String(),
		OwnerID:    principal.ID,
		Visibility: models.Visibility(visibility),
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Policies(tx).Attach(ctx, policy)
	})
	if err != nil {
		if errors.Is(err, common.ErrOwnershipConflict) {
			obs.RecordOwnershipConflict()
			audit.LogError(ctx, s.log, "policy.attach.denied",
				"path", path.String(), "reason", "owner fixed by earlier write")
		}
		return nil, err
	}

	audit.LogEvent(ctx, s.log, "policy.attached",
		"path", path.String(), "visibility", visibility)

	return policy, nil
}

// GetPolicy returns the policy for a path to its owner or an admin. Everyone
// else gets the same not-found the read path produces, so probing policies
// reveals nothing about object existence.
func (s *ObjectService) GetPolicy(ctx context.Context, principal auth.Principal,
	rawPath string) (*models.ObjectPolicy, error) {

	path, err := objectpath.Parse(rawPath)
	if err != nil {
		return nil, common.ErrObjectNotFound
	}

	repo := s.repomanager.Policies(s.db)
	policy, err := repo.GetByPath(ctx, path.String())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrObjectNotFound
		}
		return nil, err
	}

	if principal.ID != policy.OwnerID && principal.Role != auth.RoleAdmin {
		return nil, common.ErrObjectNotFound
	}

	return policy, nil
}
