package jwt

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/tokensmith/internal/domain/repository"
	"github.com/dropDatabas3/tokensmith/internal/observability/logger"
	"github.com/dropDatabas3/tokensmith/internal/security/keygen"
	"github.com/dropDatabas3/tokensmith/internal/security/secretbox"
)

// Manager administra el ciclo de vida de las claves de firma: genera
// pares nuevos (privada cifrada en reposo) y rota desactivando la clave
// anterior sin borrarla, para que los tokens históricos verifiquen
// hasta su propio exp.
type Manager struct {
	Repo repository.CryptoKeyRepository
	Box  *secretbox.Box
}

// NewManager construye el manager.
func NewManager(repo repository.CryptoKeyRepository, box *secretbox.Box) *Manager {
	return &Manager{Repo: repo, Box: box}
}

// Generate crea y persiste una clave nueva activa para el algoritmo.
// keyTTL acota la vida útil total de la clave (firma + verificación).
func (m *Manager) Generate(ctx context.Context, algorithm string, keyTTL time.Duration) (*repository.CryptoKey, error) {
	if keyTTL <= 0 {
		keyTTL = 365 * 24 * time.Hour
	}
	pair, err := keygen.Generate(algorithm)
	if err != nil {
		return nil, err
	}
	enc, err := m.Box.Encrypt(pair.PrivateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("cifrar privada: %w", err)
	}
	key := &repository.CryptoKey{
		KID:                 uuid.NewString(),
		Algorithm:           algorithm,
		PublicKeyPEM:        pair.PublicKeyPEM,
		PrivateKeyEncrypted: enc,
		IsActive:            true,
		ExpiresAt:           time.Now().UTC().Add(keyTTL),
	}
	if err := m.Repo.Create(ctx, key); err != nil {
		return nil, fmt.Errorf("persistir clave: %w", err)
	}
	logger.L().Info("signing key generated",
		logger.KID(key.KID), logger.String("algorithm", algorithm))
	return key, nil
}

// Rotate genera una clave nueva y desactiva la activa anterior. La
// desactivada sigue resolviéndose por kid para verificación.
func (m *Manager) Rotate(ctx context.Context, algorithm string, keyTTL time.Duration) (*repository.CryptoKey, error) {
	previous, err := m.Repo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar claves activas: %w", err)
	}
	key, err := m.Generate(ctx, algorithm, keyTTL)
	if err != nil {
		return nil, err
	}
	for _, p := range previous {
		if err := m.Repo.Deactivate(ctx, p.KID); err != nil {
			return nil, fmt.Errorf("desactivar kid=%s: %w", p.KID, err)
		}
		logger.L().Info("signing key deactivated", logger.KID(p.KID))
	}
	return key, nil
}
