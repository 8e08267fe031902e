package repository

import (
	"context"
	"time"
)

// Algoritmos de firma soportados.
const (
	AlgRS256 = "RS256"
	AlgRS384 = "RS384"
	AlgRS512 = "RS512"
	AlgES256 = "ES256"
	AlgES384 = "ES384"
	AlgES512 = "ES512"
)

// CryptoKey representa un par de claves de firma persistido.
// La clave privada se guarda cifrada (AES-256-GCM vía secretbox);
// la pública queda en PEM plano para verificación y JWKS.
type CryptoKey struct {
	ID                  string
	KID                 string // header "kid" de los JWT firmados con esta clave
	Algorithm           string // RS256..ES512
	PublicKeyPEM        string
	PrivateKeyEncrypted string // blob secretbox
	IsActive            bool
	CreatedAt           time.Time
	ExpiresAt           time.Time
}

// IsExpired indica si la clave ya venció (deja de servir para verificar).
func (k *CryptoKey) IsExpired(now time.Time) bool {
	return !now.Before(k.ExpiresAt)
}

// IsRSAFamily indica si el algoritmo es de la familia RS*.
func IsRSAFamily(alg string) bool {
	switch alg {
	case AlgRS256, AlgRS384, AlgRS512:
		return true
	}
	return false
}

// IsECFamily indica si el algoritmo es de la familia ES*.
func IsECFamily(alg string) bool {
	switch alg {
	case AlgES256, AlgES384, AlgES512:
		return true
	}
	return false
}

// CryptoKeyRepository define operaciones sobre las claves de firma.
type CryptoKeyRepository interface {
	// FindActive retorna las claves activas ordenadas por CreatedAt DESC.
	// La primera es la que firma tokens nuevos; el resto sigue sirviendo
	// para verificar tokens emitidos antes de la rotación.
	FindActive(ctx context.Context) ([]*CryptoKey, error)

	// GetByKID busca una clave por su KID (activa o no).
	// Retorna ErrNotFound si no existe.
	GetByKID(ctx context.Context, kid string) (*CryptoKey, error)

	// Create persiste una clave nueva.
	Create(ctx context.Context, key *CryptoKey) error

	// Deactivate marca una clave como inactiva (rotación). No borra:
	// los tokens históricos se verifican hasta ExpiresAt.
	Deactivate(ctx context.Context, kid string) error
}
