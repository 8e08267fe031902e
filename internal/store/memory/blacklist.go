package memory

import (
	"context"
	"time"

	"github.com/dropDatabas3/tokensmith/internal/domain/repository"
)

type blacklistRecord struct {
	entry repository.BlacklistEntry
}

// BlacklistRepo implementa repository.BlacklistRepository en memoria.
type BlacklistRepo struct {
	s *Store
}

func (r *BlacklistRepo) Add(ctx context.Context, entry *repository.BlacklistEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	// Idempotente: re-revocar el mismo jti no es error
	if _, exists := r.s.blacklist[entry.JTI]; exists {
		return nil
	}
	e := *entry
	r.s.blacklist[entry.JTI] = &blacklistRecord{entry: e}
	return nil
}

func (r *BlacklistRepo) Contains(ctx context.Context, jti string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.blacklist[jti]
	return ok, nil
}

func (r *BlacklistRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for jti, rec := range r.s.blacklist {
		if !now.Before(rec.entry.ExpiresAt) {
			delete(r.s.blacklist, jti)
			n++
		}
	}
	return n, nil
}
