package services

import (
	"context"
	"errors"

	"github.com/workhive/filegate/internal/audit"
	"github.com/workhive/filegate/internal/auth"
	"github.com/workhive/filegate/internal/common"
	"github.com/workhive/filegate/internal/objectpath"
	"github.com/workhive/filegate/internal/obs"
)

// Fetch runs the full read path: re-validate the requested path, take an
// access decision, then stream the bytes. Malformed paths, missing objects
// and denials all come back as common.ErrObjectNotFound; only the audit
// trail and metrics distinguish them.
func (s *ObjectService) Fetch(ctx context.Context, principal auth.Principal,
	rawPath string) (*ObjectDownload, error) {

	path, err := objectpath.Parse(rawPath)
	if err != nil {
		var verr *objectpath.ValidationError
		if errors.As(err, &verr) {
			obs.RecordAccessDecision(false, "malformed_path")
			audit.LogEvent(ctx, s.log, "object.read.denied",
				"path", rawPath, "basis", "malformed_path", "reason", verr.Reason)
		}
		return nil, common.ErrObjectNotFound
	}

	decision, err := s.engine.CanRead(ctx, principal, path)
	if err != nil {
		return nil, err
	}

	obs.RecordAccessDecision(decision.Allow, decision.Basis)

	if !decision.Allow {
		audit.LogEvent(ctx, s.log, "object.read.denied",
			"path", path.String(), "basis", decision.Basis)
		return nil, common.ErrObjectNotFound
	}

	audit.LogEvent(ctx, s.log, "object.read.allowed",
		"path", path.String(), "basis", decision.Basis)

	body, size, err := s.store.Open(ctx, path.Key())
	if err != nil {
		if errors.Is(err, common.ErrObjectNotFound) {
			// A policy exists but the bytes are gone; surfaced like any
			// other miss, logged for operators.
			s.log.Warn(ctx, "policy present but object missing in storage", "path", path.String())
		}
		return nil, err
	}

	return &ObjectDownload{
		Body:        body,
		Size:        size,
		ContentType: path.ContentType(),
	}, nil
}
