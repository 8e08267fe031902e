package memory

import (
	"context"
	"sort"
	"time"

	"github.com/dropDatabas3/tokensmith/internal/domain/repository"
)

type keyRecord struct {
	key repository.CryptoKey
}

// KeyRepo implementa repository.CryptoKeyRepository en memoria.
type KeyRepo struct {
	s *Store
}

func (r *KeyRepo) FindActive(ctx context.Context) ([]*repository.CryptoKey, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	var out []*repository.CryptoKey
	for _, rec := range r.s.keys {
		if rec.key.IsActive && !rec.key.IsExpired(now) {
			k := rec.key
			out = append(out, &k)
		}
	}
	// Más reciente primero: la [0] firma
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *KeyRepo) GetByKID(ctx context.Context, kid string) (*repository.CryptoKey, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.keys[kid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	k := rec.key
	return &k, nil
}

func (r *KeyRepo) Create(ctx context.Context, key *repository.CryptoKey) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.keys[key.KID]; exists {
		return repository.ErrConflict
	}
	k := *key
	if k.CreatedAt.IsZero() {
		// En postgres lo pone el DEFAULT NOW(); acá lo emulamos
		k.CreatedAt = time.Now().UTC()
	}
	r.s.keys[key.KID] = &keyRecord{key: k}
	return nil
}

func (r *KeyRepo) Deactivate(ctx context.Context, kid string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.keys[kid]
	if !ok {
		return repository.ErrNotFound
	}
	rec.key.IsActive = false
	return nil
}
