package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/tokensmith/internal/domain/repository"
)

// ClientRepo implementa repository.ClientRepository sobre PostgreSQL.
type ClientRepo struct {
	pool *pgxpool.Pool
}

const clientColumns = `id, client_id, name, type, secret_hash, redirect_uri,
	grant_types, scopes, pkce_required, created_at, updated_at`

func (r *ClientRepo) Get(ctx context.Context, id string) (*repository.Client, error) {
	const q = `SELECT ` + clientColumns + ` FROM oauth_clients WHERE id = $1`
	return r.scanOne(ctx, q, id)
}

func (r *ClientRepo) GetByClientID(ctx context.Context, clientID string) (*repository.Client, error) {
	const q = `SELECT ` + clientColumns + ` FROM oauth_clients WHERE client_id = $1`
	return r.scanOne(ctx, q, clientID)
}

func (r *ClientRepo) scanOne(ctx context.Context, q string, arg any) (*repository.Client, error) {
	var c repository.Client
	err := r.pool.QueryRow(ctx, q, arg).Scan(
		&c.ID, &c.ClientID, &c.Name, &c.Type, &c.SecretHash, &c.RedirectURI,
		&c.GrantTypes, &c.Scopes, &c.PKCERequired, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}
