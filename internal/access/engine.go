// Package access decides who may read which stored object. Decisions are
// computed per request from the policy ledger and live platform facts;
// nothing here is cached, so a withdrawn application or a visibility change
// takes effect on the next request.
package access

import (
	"context"
	"errors"

	"github.com/workhive/filegate/internal/auth"
	"github.com/workhive/filegate/internal/common"
	"github.com/workhive/filegate/internal/models"
	"github.com/workhive/filegate/internal/objectpath"
	"github.com/workhive/filegate/internal/repositories/policies"
)

// Decision basis values. Every allow and deny names the rule that produced
// it so audit lines stay explainable.
const (
	BasisNoPolicy    = "no_policy"
	BasisPublic      = "public"
	BasisOwner       = "owner"
	BasisAdmin       = "admin"
	BasisDefaultDeny = "default_deny"
)

// Decision is the outcome of one access check.
type Decision struct {
	Allow bool
	// Basis is the rule that decided: one of the Basis* constants or a
	// relationship name.
	Basis string
}

// Relationship is a platform fact that can grant read access to a private
// object. Predicates are consulted in registration order, only after the
// owner and admin rules did not apply.
type Relationship interface {
	Name() string
	Allows(ctx context.Context, principal auth.Principal, path objectpath.Path, policy *models.ObjectPolicy) (bool, error)
}

// Engine evaluates read access against the policy ledger and the registered
// relationships.
type Engine struct {
	policies      policies.Repository
	relationships []Relationship
}

func NewEngine(policyRepo policies.Repository, relationships ...Relationship) *Engine {
	return &Engine{
		policies:      policyRepo,
		relationships: relationships,
	}
}

// CanRead runs the decision ladder for one object. The order is fixed:
// missing policy denies, public allows, then owner, then admin, then the
// relationship predicates, then the default deny. Infrastructure failures
// return an error and never an allow.
func (e *Engine) CanRead(ctx context.Context, principal auth.Principal, path objectpath.Path) (Decision, error) {
	policy, err := e.policies.GetByPath(ctx, path.String())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// Object was never committed; nothing to read.
			return Decision{Allow: false, Basis: BasisNoPolicy}, nil
		}
		return Decision{}, err
	}

	if policy.Visibility == models.VisibilityPublic {
		return Decision{Allow: true, Basis: BasisPublic}, nil
	}

	if principal.ID == policy.OwnerID {
		return Decision{Allow: true, Basis: BasisOwner}, nil
	}

	if principal.Role == auth.RoleAdmin {
		return Decision{Allow: true, Basis: BasisAdmin}, nil
	}

	for _, rel := range e.relationships {
		ok, err := rel.Allows(ctx, principal, path, policy)
		if err != nil {
			return Decision{}, err
		}
		if ok {
			return Decision{Allow: true, Basis: rel.Name()}, nil
		}
	}

	return Decision{Allow: false, Basis: BasisDefaultDeny}, nil
}
