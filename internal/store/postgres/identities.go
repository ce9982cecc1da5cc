package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/photo-faces/internal/identity"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// IdentityRepository provides PostgreSQL-backed identity storage.
type IdentityRepository struct {
	pool *Pool
}

// NewIdentityRepository creates a new PostgreSQL identity repository.
func NewIdentityRepository(pool *Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

// ListIdentities returns all identities in the namespace in creation order,
// each with its full sample history.
func (r *IdentityRepository) ListIdentities(ctx context.Context, namespace string) ([]identity.Identity, error) {
	query := `
		SELECT i.id, i.identity_id, i.display_name, i.thumbnail_ref, s.embedding
		FROM identities i
		JOIN identity_samples s ON s.identity_pk = i.id
		WHERE i.namespace = $1
		ORDER BY i.id, s.id
	`

	rows, err := r.pool.Query(ctx, query, namespace)
	if err != nil {
		return nil, fmt.Errorf("query identities: %w", err)
	}
	defer rows.Close()

	var out []identity.Identity
	var lastPK int64 = -1
	for rows.Next() {
		var pk int64
		var id string
		var displayName, thumbnailRef sql.NullString
		var vec pgvector.Vector
		if err := rows.Scan(&pk, &id, &displayName, &thumbnailRef, &vec); err != nil {
			return nil, fmt.Errorf("scan identity row: %w", err)
		}

		if pk != lastPK {
			out = append(out, identity.Identity{
				ID:           id,
				DisplayName:  displayName.String,
				ThumbnailRef: thumbnailRef.String,
			})
			lastPK = pk
		}
		last := &out[len(out)-1]
		last.Samples = append(last.Samples, vec.Slice())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return out, nil
}

// CreateIdentity creates a new identity with its first sample.
func (r *IdentityRepository) CreateIdentity(ctx context.Context, namespace, id string, embedding []float32, box identity.BoundingBox) error {
	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var pk int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO identities (namespace, identity_id)
		VALUES ($1, $2)
		RETURNING id
	`, namespace, id).Scan(&pk)
	if err != nil {
		return fmt.Errorf("insert identity %s: %w", id, err)
	}

	if err := insertSample(ctx, tx, pk, embedding, box); err != nil {
		return fmt.Errorf("insert first sample for %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// AppendSample appends a sample to an existing identity. A missing identity
// is an error, never a silent drop.
func (r *IdentityRepository) AppendSample(ctx context.Context, namespace, id string, embedding []float32, box identity.BoundingBox) error {
	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var pk int64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM identities WHERE namespace = $1 AND identity_id = $2",
		namespace, id,
	).Scan(&pk)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("identity %q not found in namespace %q", id, namespace)
	}
	if err != nil {
		return fmt.Errorf("lookup identity %s: %w", id, err)
	}

	if err := insertSample(ctx, tx, pk, embedding, box); err != nil {
		return fmt.Errorf("insert sample for %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// SetThumbnail records the thumbnail artifact reference for an identity.
func (r *IdentityRepository) SetThumbnail(ctx context.Context, namespace, id, ref string) error {
	result, err := r.pool.Exec(ctx,
		"UPDATE identities SET thumbnail_ref = $1 WHERE namespace = $2 AND identity_id = $3",
		ref, namespace, id,
	)
	if err != nil {
		return fmt.Errorf("set thumbnail for %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set thumbnail for %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("identity %q not found in namespace %q", id, namespace)
	}
	return nil
}

// SetDisplayName records the human-assigned name for an identity.
func (r *IdentityRepository) SetDisplayName(ctx context.Context, namespace, id, name string) error {
	result, err := r.pool.Exec(ctx,
		"UPDATE identities SET display_name = $1 WHERE namespace = $2 AND identity_id = $3",
		name, namespace, id,
	)
	if err != nil {
		return fmt.Errorf("set display name for %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set display name for %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("identity %q not found in namespace %q", id, namespace)
	}
	return nil
}

// Count returns the number of identities in the namespace.
func (r *IdentityRepository) Count(ctx context.Context, namespace string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM identities WHERE namespace = $1", namespace).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count identities: %w", err)
	}
	return count, nil
}

// SampleCount returns the total number of stored samples in the namespace.
func (r *IdentityRepository) SampleCount(ctx context.Context, namespace string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM identity_samples s
		JOIN identities i ON i.id = s.identity_pk
		WHERE i.namespace = $1
	`, namespace).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count samples: %w", err)
	}
	return count, nil
}

func insertSample(ctx context.Context, tx *sql.Tx, identityPK int64, embedding []float32, box identity.BoundingBox) error {
	bbox := pq.Array([]float64{float64(box.X), float64(box.Y), float64(box.Width), float64(box.Height)})
	_, err := tx.ExecContext(ctx, `
		INSERT INTO identity_samples (identity_pk, embedding, bbox)
		VALUES ($1, $2::vector, $3)
	`, identityPK, pgvector.NewVector(embedding), bbox)
	return err
}

// Verify interface compliance.
var _ identity.Store = (*IdentityRepository)(nil)
