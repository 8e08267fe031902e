// Package pg implementa los repositorios de dominio sobre PostgreSQL
// usando pgxpool. El esquema vive en migrations/postgres.
package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/tokensmith/internal/domain/repository"
)

// Store agrupa los repositorios PostgreSQL sobre un pool compartido.
type Store struct {
	pool *pgxpool.Pool
}

// Open crea el pool y verifica la conexión.
func Open(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: parse dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	cfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pg: new pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close cierra el pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Pool expone el pool (health checks, métricas).
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// Clients retorna el repositorio de clients.
func (s *Store) Clients() *ClientRepo { return &ClientRepo{pool: s.pool} }

// Codes retorna el repositorio de authorization codes.
func (s *Store) Codes() *CodeRepo { return &CodeRepo{pool: s.pool} }

// RefreshTokens retorna el repositorio de refresh tokens.
func (s *Store) RefreshTokens() *TokenRepo { return &TokenRepo{pool: s.pool} }

// Keys retorna el repositorio de claves de firma.
func (s *Store) Keys() *KeyRepo { return &KeyRepo{pool: s.pool} }

// Blacklist retorna el repositorio del blacklist.
func (s *Store) Blacklist() *BlacklistRepo { return &BlacklistRepo{pool: s.pool} }

// mapErr traduce errores pgx a errores de dominio.
func mapErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}
