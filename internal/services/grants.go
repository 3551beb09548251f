package services

import (
	"context"
	"time"

	"github.com/workhive/filegate/internal/audit"
	"github.com/workhive/filegate/internal/auth"
	"github.com/workhive/filegate/internal/models"
	"github.com/workhive/filegate/internal/objectpath"
	"github.com/workhive/filegate/internal/obs"
)

// CreateUploadGrant validates an upload intent and exchanges it for a
// presigned PUT URL. The minted path always lives under the caller's own
// prefix; the signature binds the declared content type and exact size, so
// the grant cannot be reused for different bytes.
func (s *ObjectService) CreateUploadGrant(ctx context.Context, principal auth.Principal,
	purpose string, contentType string, size int64) (*models.UploadGrant, error) {

	path, err := objectpath.Mint(principal.ID, objectpath.Purpose(purpose), contentType, size)
	if err != nil {
		return nil, err
	}

	url, err := s.store.PresignPut(ctx, path.Key(), contentType, size, s.config.UploadGrantTTL)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.config.UploadGrantTTL)

	obs.RecordGrantIssued(purpose)
	audit.LogEvent(ctx, s.log, "grant.issued",
		"path", path.String(), "purpose", purpose, "content_type", contentType, "size", size)

	return &models.UploadGrant{
		ObjectPath: path.String(),
		UploadURL:  url,
		ExpiresAt:  expiresAt,
	}, nil
}
