package applications

import "context"

// Repository reads job-application facts from the platform's tables. This
// service never writes them; it only asks whether a relationship exists at
// the moment of an access decision.
type Repository interface {
	// ResumeSharedWithEmployer reports whether any application submitted to
	// a posting owned by employerID references the resume at resumePath.
	ResumeSharedWithEmployer(ctx context.Context, resumePath string, employerID string) (bool, error)
}
