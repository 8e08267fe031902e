package repository

import (
	"context"
	"time"
)

// AuthorizationCode representa un authorization code emitido por el
// authorize endpoint. Se persiste hasheado (CodeHash); el code plano
// solo existe en el redirect hacia el client.
type AuthorizationCode struct {
	ID                  string
	CodeHash            string
	ClientID            string // client_id texto (no UUID)
	UserID              string
	RedirectURI         string
	Scopes              []string // orden de inserción = orden del grant
	CodeChallenge       *string  // nil si el client no usó PKCE
	CodeChallengeMethod *string  // "S256" | "plain"
	ExpiresAt           time.Time
	CreatedAt           time.Time
	ConsumedAt          *time.Time
}

// IsExpired indica si el code ya venció.
func (c *AuthorizationCode) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// HasChallenge indica si el code fue emitido con PKCE.
func (c *AuthorizationCode) HasChallenge() bool {
	return c.CodeChallenge != nil && *c.CodeChallenge != ""
}

// CreateAuthorizationCodeInput contiene los datos para crear un code.
type CreateAuthorizationCodeInput struct {
	CodeHash            string
	ClientID            string
	UserID              string
	RedirectURI         string
	Scopes              []string
	CodeChallenge       *string
	CodeChallengeMethod *string
	TTL                 time.Duration
}

// AuthorizationCodeRepository define operaciones sobre authorization codes.
type AuthorizationCodeRepository interface {
	// Create persiste un code nuevo (ya hasheado). Lo usa el authorize
	// endpoint, fuera del core del token endpoint.
	Create(ctx context.Context, input CreateAuthorizationCodeInput) (string, error)

	// GetByHash busca un code por su hash.
	// Retorna ErrNotFound si no existe.
	GetByHash(ctx context.Context, codeHash string) (*AuthorizationCode, error)

	// Consume marca el code como canjeado. Operación ATÓMICA: exactamente
	// una llamada gana; las demás reciben ErrAlreadyConsumed. Dos requests
	// concurrentes con el mismo code válido producen un éxito y un replay.
	Consume(ctx context.Context, codeHash string) error

	// DeleteExpired purga codes vencidos. Retorna cantidad eliminada.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
