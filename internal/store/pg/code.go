package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/tokensmith/internal/domain/repository"
)

// CodeRepo implementa repository.AuthorizationCodeRepository sobre
// PostgreSQL.
type CodeRepo struct {
	pool *pgxpool.Pool
}

func (r *CodeRepo) Create(ctx context.Context, input repository.CreateAuthorizationCodeInput) (string, error) {
	const q = `
		INSERT INTO oauth_codes
			(code_hash, client_id, user_id, redirect_uri, scopes,
			 code_challenge, code_challenge_method, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW() + $8::interval, NOW())
		RETURNING id`
	var id string
	err := r.pool.QueryRow(ctx, q,
		input.CodeHash, input.ClientID, input.UserID, input.RedirectURI,
		input.Scopes, input.CodeChallenge, input.CodeChallengeMethod,
		input.TTL.String(),
	).Scan(&id)
	if err != nil {
		return "", mapErr(err)
	}
	return id, nil
}

func (r *CodeRepo) GetByHash(ctx context.Context, codeHash string) (*repository.AuthorizationCode, error) {
	const q = `
		SELECT id, code_hash, client_id, user_id, redirect_uri, scopes,
		       code_challenge, code_challenge_method, expires_at, created_at, consumed_at
		FROM oauth_codes WHERE code_hash = $1`
	var c repository.AuthorizationCode
	err := r.pool.QueryRow(ctx, q, codeHash).Scan(
		&c.ID, &c.CodeHash, &c.ClientID, &c.UserID, &c.RedirectURI, &c.Scopes,
		&c.CodeChallenge, &c.CodeChallengeMethod, &c.ExpiresAt, &c.CreatedAt, &c.ConsumedAt,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

// Consume marca el code como canjeado con un UPDATE condicional: el
// predicado "consumed_at IS NULL" garantiza que de N requests
// concurrentes exactamente uno afecta la fila. El perdedor distingue
// replay (fila existe, ya consumida) de code inexistente.
func (r *CodeRepo) Consume(ctx context.Context, codeHash string) error {
	const q = `UPDATE oauth_codes SET consumed_at = NOW()
		WHERE code_hash = $1 AND consumed_at IS NULL`
	ct, err := r.pool.Exec(ctx, q, codeHash)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 1 {
		return nil
	}
	const exists = `SELECT EXISTS(SELECT 1 FROM oauth_codes WHERE code_hash = $1)`
	var found bool
	if err := r.pool.QueryRow(ctx, exists, codeHash).Scan(&found); err != nil {
		return err
	}
	if found {
		return repository.ErrAlreadyConsumed
	}
	return repository.ErrNotFound
}

func (r *CodeRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const q = `DELETE FROM oauth_codes WHERE expires_at <= $1`
	ct, err := r.pool.Exec(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}
