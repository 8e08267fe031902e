package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/tokensmith/internal/domain/repository"
)

// BlacklistRepo implementa repository.BlacklistRepository sobre PostgreSQL.
type BlacklistRepo struct {
	pool *pgxpool.Pool
}

func (r *BlacklistRepo) Add(ctx context.Context, entry *repository.BlacklistEntry) error {
	// ON CONFLICT DO NOTHING: re-revocar el mismo jti es idempotente
	const q = `
		INSERT INTO token_blacklist (jti, reason, expires_at, revoked_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (jti) DO NOTHING`
	_, err := r.pool.Exec(ctx, q, entry.JTI, entry.Reason, entry.ExpiresAt, entry.RevokedAt)
	return err
}

func (r *BlacklistRepo) Contains(ctx context.Context, jti string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM token_blacklist WHERE jti = $1)`
	var found bool
	if err := r.pool.QueryRow(ctx, q, jti).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

func (r *BlacklistRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const q = `DELETE FROM token_blacklist WHERE expires_at <= $1`
	ct, err := r.pool.Exec(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}
