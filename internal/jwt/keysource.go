// Package jwt emite y verifica los access tokens firmados del servidor.
package jwt

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dropDatabas3/tokensmith/internal/domain/repository"
)

const (
	activeKeyCacheKey = "active"
	kidCachePrefix    = "kid:"
)

// KeySource resuelve claves de firma con un cache read-through corto.
// El cache es optimización, no correctitud: expirarlo solo cuesta un
// round-trip extra al repositorio. Tras una rotación, el nuevo firmado
// se adopta a más tardar al vencer el TTL del cache.
type KeySource struct {
	repo  repository.CryptoKeyRepository
	cache *gocache.Cache
}

// NewKeySource construye el KeySource. cacheTTL <= 0 usa 30s.
func NewKeySource(repo repository.CryptoKeyRepository, cacheTTL time.Duration) *KeySource {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &KeySource{
		repo:  repo,
		cache: gocache.New(cacheTTL, 2*cacheTTL),
	}
}

// Active retorna la clave activa más reciente (la que firma tokens nuevos).
// Sin claves activas => repository.ErrNotFound; el caller lo traduce a
// server_error; un deployment sano siempre tiene al menos una clave.
func (s *KeySource) Active(ctx context.Context) (*repository.CryptoKey, error) {
	if v, ok := s.cache.Get(activeKeyCacheKey); ok {
		return v.(*repository.CryptoKey), nil
	}
	keys, err := s.repo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("find active keys: %w", err)
	}
	if len(keys) == 0 {
		return nil, repository.ErrNotFound
	}
	// FindActive ordena por CreatedAt DESC: la primera firma
	k := keys[0]
	s.cache.SetDefault(activeKeyCacheKey, k)
	return k, nil
}

// ByKID resuelve una clave por su KID, activa o retirada. Las claves
// retiradas siguen sirviendo para verificar tokens pre-rotación hasta
// su ExpiresAt.
func (s *KeySource) ByKID(ctx context.Context, kid string) (*repository.CryptoKey, error) {
	if v, ok := s.cache.Get(kidCachePrefix + kid); ok {
		return v.(*repository.CryptoKey), nil
	}
	k, err := s.repo.GetByKID(ctx, kid)
	if err != nil {
		return nil, err
	}
	if k.IsExpired(time.Now()) {
		return nil, repository.ErrNotFound
	}
	s.cache.SetDefault(kidCachePrefix+kid, k)
	return k, nil
}

// Invalidate vacía el cache. Lo llama el flujo de rotación para que el
// proceso adopte la clave nueva sin esperar el TTL.
func (s *KeySource) Invalidate() {
	s.cache.Flush()
}
