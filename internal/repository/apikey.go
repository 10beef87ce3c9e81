package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retailcore/storefront/internal/domain/auth"
)

const getOperatorKeyByHashSQL = `SELECT id, key_hash, name
	FROM operator_keys WHERE key_hash = $1 AND active = TRUE`

var _ auth.Repository = (*OperatorKeyRepository)(nil)

// OperatorKeyRepository provides operator key lookups backed by PostgreSQL.
type OperatorKeyRepository struct {
	pool *pgxpool.Pool
}

// NewOperatorKeyRepository returns an OperatorKeyRepository that uses the
// given pool.
func NewOperatorKeyRepository(pool *pgxpool.Pool) *OperatorKeyRepository {
	return &OperatorKeyRepository{pool: pool}
}

// FindByHash looks up an active operator key by its HMAC-SHA256 hash.
func (r *OperatorKeyRepository) FindByHash(ctx context.Context, hash string) (*auth.KeyInfo, error) {
	var info auth.KeyInfo
	err := r.pool.QueryRow(ctx, getOperatorKeyByHashSQL, hash).Scan(
		&info.ID, &info.KeyHash, &info.Name,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("operator key not found: %w", err)
		}
		return nil, fmt.Errorf("finding operator key by hash: %w", err)
	}
	return &info, nil
}
