package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/tokensmith/internal/domain/repository"
)

// KeyRepo implementa repository.CryptoKeyRepository sobre PostgreSQL.
type KeyRepo struct {
	pool *pgxpool.Pool
}

const keyColumns = `id, kid, algorithm, public_key_pem, private_key_enc,
	is_active, created_at, expires_at`

// FindActive retorna claves activas no vencidas, más reciente primero.
func (r *KeyRepo) FindActive(ctx context.Context) ([]*repository.CryptoKey, error) {
	const q = `SELECT ` + keyColumns + ` FROM crypto_keys
		WHERE is_active = TRUE AND expires_at > NOW()
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*repository.CryptoKey
	for rows.Next() {
		k, err := scanKey(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (r *KeyRepo) GetByKID(ctx context.Context, kid string) (*repository.CryptoKey, error) {
	const q = `SELECT ` + keyColumns + ` FROM crypto_keys WHERE kid = $1`
	k, err := scanKey(r.pool.QueryRow(ctx, q, kid))
	if err != nil {
		return nil, mapErr(err)
	}
	return k, nil
}

func (r *KeyRepo) Create(ctx context.Context, key *repository.CryptoKey) error {
	const q = `
		INSERT INTO crypto_keys
			(kid, algorithm, public_key_pem, private_key_enc, is_active, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), $6)
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, q,
		key.KID, key.Algorithm, key.PublicKeyPEM, key.PrivateKeyEncrypted,
		key.IsActive, key.ExpiresAt,
	).Scan(&key.ID, &key.CreatedAt)
	if err != nil {
		return mapErr(err)
	}
	return nil
}

func (r *KeyRepo) Deactivate(ctx context.Context, kid string) error {
	const q = `UPDATE crypto_keys SET is_active = FALSE WHERE kid = $1`
	ct, err := r.pool.Exec(ctx, q, kid)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanKey(row pgx.Row) (*repository.CryptoKey, error) {
	var k repository.CryptoKey
	err := row.Scan(
		&k.ID, &k.KID, &k.Algorithm, &k.PublicKeyPEM, &k.PrivateKeyEncrypted,
		&k.IsActive, &k.CreatedAt, &k.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return &k, nil
}
