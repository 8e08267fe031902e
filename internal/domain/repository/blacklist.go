package repository

import (
	"context"
	"time"
)

// BlacklistEntry representa un access token revocado explícitamente,
// identificado por su jti. ExpiresAt copia el exp del token original:
// pasado ese momento la entrada puede purgarse (el token ya no valida
// por expiración propia).
type BlacklistEntry struct {
	ID        string
	JTI       string
	Reason    *string
	ExpiresAt time.Time
	RevokedAt time.Time
}

// BlacklistRepository define operaciones sobre el blacklist de access tokens.
type BlacklistRepository interface {
	// Add registra un jti revocado. Idempotente frente a duplicados.
	Add(ctx context.Context, entry *BlacklistEntry) error

	// Contains verifica si un jti está revocado.
	Contains(ctx context.Context, jti string) (bool, error)

	// DeleteExpired purga entradas cuyo token original ya venció.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
