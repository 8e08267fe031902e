// Package redis implementa un front de cache para el blacklist de
// access tokens: la verificación por jti es el hot path de los resource
// servers y no debería costar un round-trip a PostgreSQL por request.
package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/tokensmith/internal/domain/repository"
	"github.com/dropDatabas3/tokensmith/internal/observability/logger"
)

// BlacklistCache envuelve un BlacklistRepository persistente con un set
// en Redis. Add escribe en ambos; Contains responde desde Redis y
// cae al repositorio en miss (y repuebla).
type BlacklistCache struct {
	rdb    *goredis.Client
	next   repository.BlacklistRepository
	prefix string
}

// NewBlacklistCache construye el cache. prefix separa namespaces si el
// Redis es compartido.
func NewBlacklistCache(rdb *goredis.Client, next repository.BlacklistRepository, prefix string) *BlacklistCache {
	if prefix == "" {
		prefix = "blacklist:"
	}
	return &BlacklistCache{rdb: rdb, next: next, prefix: prefix}
}

func (c *BlacklistCache) key(jti string) string { return c.prefix + jti }

// Add persiste primero (fuente de verdad) y luego setea la entrada en
// Redis con TTL hasta el exp del token; un fallo de Redis no deshace la
// revocación, solo degrada el hot path.
func (c *BlacklistCache) Add(ctx context.Context, entry *repository.BlacklistEntry) error {
	if err := c.next.Add(ctx, entry); err != nil {
		return err
	}
	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := c.rdb.Set(ctx, c.key(entry.JTI), "1", ttl).Err(); err != nil {
		// La revocación ya está en la fuente de verdad; Contains cae al
		// repositorio persistente en miss, así que solo perdemos latencia.
		logger.From(ctx).With(logger.Layer("store"), logger.Op("redis.blacklist.add")).
			Warn("redis set falló, revocación persistida igual", logger.JTI(entry.JTI), logger.Err(err))
	}
	return nil
}

// Contains consulta Redis; en miss verifica el repositorio persistente.
func (c *BlacklistCache) Contains(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, c.key(jti)).Result()
	if err == nil && n > 0 {
		return true, nil
	}
	// Miss o Redis caído: la fuente de verdad decide
	found, err := c.next.Contains(ctx, jti)
	if err != nil {
		return false, err
	}
	return found, nil
}

// DeleteExpired delega en el repositorio persistente; Redis expira solo.
func (c *BlacklistCache) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return c.next.DeleteExpired(ctx, now)
}
