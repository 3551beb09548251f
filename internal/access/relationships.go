package access

import (
	"context"

	"github.com/workhive/filegate/internal/auth"
	"github.com/workhive/filegate/internal/models"
	"github.com/workhive/filegate/internal/objectpath"
	"github.com/workhive/filegate/internal/repositories/applications"
)

// EmployerApplicantResume grants an employer read access to a seeker's
// resume while an application referencing that resume sits on one of the
// employer's postings. The grant disappears with the application row.
type EmployerApplicantResume struct {
	applications applications.Repository
}

var _ Relationship = (*EmployerApplicantResume)(nil)

func NewEmployerApplicantResume(applicationRepo applications.Repository) *EmployerApplicantResume {
	return &EmployerApplicantResume{applications: applicationRepo}
}

func (r *EmployerApplicantResume) Name() string { return "employer_applicant" }

func (r *EmployerApplicantResume) Allows(ctx context.Context, principal auth.Principal, path objectpath.Path, policy *models.ObjectPolicy) (bool, error) {
	if principal.Role != auth.RoleEmployer {
		return false, nil
	}
	if path.Purpose() != objectpath.PurposeResume {
		return false, nil
	}
	return r.applications.ResumeSharedWithEmployer(ctx, policy.Path, principal.ID)
}
