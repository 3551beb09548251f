package policies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/workhive/filegate/internal/common"
	"github.com/workhive/filegate/internal/dbx"
	"github.com/workhive/filegate/internal/models"
)

// PostgresRepository implements policy storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Attach upserts the policy row for a path in a single statement. The WHERE
// clause on the conflict arm makes the owner column write-once: a concurrent
// or later attach with a different owner updates nothing, which surfaces as
// ErrOwnershipConflict. Visibility changes by the recorded owner take the
// last-write-wins path.
func (r *PostgresRepository) Attach(ctx context.Context, policy *models.ObjectPolicy) error {
	query := `
		INSERT INTO object_policies (path, owner_id, visibility)
		VALUES ($1, $2, $3)
		ON CONFLICT (path)
		DO UPDATE SET
			visibility = EXCLUDED.visibility,
			updated_at = now()
			WHERE object_policies.owner_id = EXCLUDED.owner_id;
	`
	res, err := r.db.ExecContext(ctx, query,
		policy.Path, policy.OwnerID, policy.Visibility)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrOwnershipConflict
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// GetByPath returns the policy for a path.
func (r *PostgresRepository) GetByPath(ctx context.Context, path string) (*models.ObjectPolicy, error) {
	query :=
		`SELECT path, owner_id, visibility, created_at, updated_at FROM object_policies
		 WHERE path = $1
		 `

	policy := &models.ObjectPolicy{}
	err := r.db.QueryRowContext(ctx, query, path).Scan(
		&policy.Path, &policy.OwnerID, &policy.Visibility, &policy.CreatedAt, &policy.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return policy, nil
}
