package repository

import (
	"context"
	"time"
)

// RefreshToken representa un token de refresco opaco. Se persiste solo
// el hash HMAC; el token plano se devuelve una única vez al emitirlo.
type RefreshToken struct {
	ID        string
	TokenHash string
	ClientID  string // client_id texto (no UUID)
	UserID    string
	Scopes    []string
	IssuedAt  time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// IsExpired indica si el token ya venció.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsValid indica si el token puede canjearse: ni vencido ni revocado.
func (t *RefreshToken) IsValid(now time.Time) bool {
	return !t.IsExpired(now) && t.RevokedAt == nil
}

// CreateRefreshTokenInput contiene los datos para crear un refresh token.
type CreateRefreshTokenInput struct {
	TokenHash string
	ClientID  string
	UserID    string
	Scopes    []string
	TTL       time.Duration
}

// RefreshTokenRepository define operaciones sobre refresh tokens.
type RefreshTokenRepository interface {
	// Create crea un nuevo refresh token. Retorna el ID del token creado.
	Create(ctx context.Context, input CreateRefreshTokenInput) (string, error)

	// GetByHash busca un token por su hash.
	// Retorna ErrNotFound si no existe.
	GetByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)

	// Revoke revoca un token por su ID. Idempotente: revocar un token ya
	// revocado no es error y no cambia RevokedAt.
	Revoke(ctx context.Context, tokenID string) error

	// RevokeAllByUser revoca todos los tokens de un usuario.
	// Si clientID no está vacío, filtra solo por ese client.
	// Retorna el número de tokens revocados.
	RevokeAllByUser(ctx context.Context, userID, clientID string) (int64, error)

	// DeleteExpired purga tokens vencidos. Retorna cantidad eliminada.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
