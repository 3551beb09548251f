package applications

import (
	"context"
	"fmt"

	"github.com/workhive/filegate/internal/dbx"
)

// PostgresRepository implements application-fact lookups over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ResumeSharedWithEmployer runs the relationship predicate as a single
// EXISTS query. Withdrawn applications are deleted by the platform, so a
// present row is a live grant.
func (r *PostgresRepository) ResumeSharedWithEmployer(ctx context.Context, resumePath string, employerID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM job_applications a
			JOIN job_postings p ON p.id = a.posting_id
			WHERE a.resume_path = $1 AND p.employer_id = $2
		)
	`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, resumePath, employerID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}
