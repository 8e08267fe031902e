package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/tokensmith/internal/domain/repository"
)

// TokenRepo implementa repository.RefreshTokenRepository sobre PostgreSQL.
type TokenRepo struct {
	pool *pgxpool.Pool
}

func (r *TokenRepo) Create(ctx context.Context, input repository.CreateRefreshTokenInput) (string, error) {
	const q = `
		INSERT INTO refresh_tokens (token_hash, client_id, user_id, scopes, expires_at, issued_at)
		VALUES ($1, $2, $3, $4, NOW() + $5::interval, NOW())
		RETURNING id`
	var id string
	err := r.pool.QueryRow(ctx, q,
		input.TokenHash, input.ClientID, input.UserID, input.Scopes, input.TTL.String(),
	).Scan(&id)
	if err != nil {
		return "", mapErr(err)
	}
	return id, nil
}

func (r *TokenRepo) GetByHash(ctx context.Context, tokenHash string) (*repository.RefreshToken, error) {
	const q = `
		SELECT id, token_hash, client_id, user_id, scopes, issued_at, expires_at, revoked_at
		FROM refresh_tokens WHERE token_hash = $1`
	var t repository.RefreshToken
	err := r.pool.QueryRow(ctx, q, tokenHash).Scan(
		&t.ID, &t.TokenHash, &t.ClientID, &t.UserID, &t.Scopes,
		&t.IssuedAt, &t.ExpiresAt, &t.RevokedAt,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

// Revoke es condicional sobre "revoked_at IS NULL": re-revocar es
// idempotente y no pisa el timestamp original.
func (r *TokenRepo) Revoke(ctx context.Context, tokenID string) error {
	const q = `UPDATE refresh_tokens SET revoked_at = NOW()
		WHERE id = $1 AND revoked_at IS NULL`
	ct, err := r.pool.Exec(ctx, q, tokenID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		const exists = `SELECT EXISTS(SELECT 1 FROM refresh_tokens WHERE id = $1)`
		var found bool
		if err := r.pool.QueryRow(ctx, exists, tokenID).Scan(&found); err != nil {
			return err
		}
		if !found {
			return repository.ErrNotFound
		}
	}
	return nil
}

func (r *TokenRepo) RevokeAllByUser(ctx context.Context, userID, clientID string) (int64, error) {
	q := `UPDATE refresh_tokens SET revoked_at = NOW()
		WHERE user_id = $1 AND revoked_at IS NULL`
	args := []any{userID}
	if clientID != "" {
		q += ` AND client_id = $2`
		args = append(args, clientID)
	}
	ct, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (r *TokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const q = `DELETE FROM refresh_tokens WHERE expires_at <= $1`
	ct, err := r.pool.Exec(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}
