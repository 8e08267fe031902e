package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/tokensmith/internal/domain/repository"
)

type tokenRecord struct {
	token repository.RefreshToken
}

// TokenRepo implementa repository.RefreshTokenRepository en memoria.
type TokenRepo struct {
	s *Store
}

func (r *TokenRepo) Create(ctx context.Context, input repository.CreateRefreshTokenInput) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.tokensByHash[input.TokenHash]; exists {
		return "", repository.ErrConflict
	}
	now := time.Now().UTC()
	id := uuid.NewString()
	r.s.tokens[id] = &tokenRecord{token: repository.RefreshToken{
		ID:        id,
		TokenHash: input.TokenHash,
		ClientID:  input.ClientID,
		UserID:    input.UserID,
		Scopes:    append([]string(nil), input.Scopes...),
		IssuedAt:  now,
		ExpiresAt: now.Add(input.TTL),
	}}
	r.s.tokensByHash[input.TokenHash] = id
	return id, nil
}

func (r *TokenRepo) GetByHash(ctx context.Context, tokenHash string) (*repository.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.tokensByHash[tokenHash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t := r.s.tokens[id].token
	return &t, nil
}

func (r *TokenRepo) Revoke(ctx context.Context, tokenID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.tokens[tokenID]
	if !ok {
		return repository.ErrNotFound
	}
	if rec.token.RevokedAt == nil {
		now := time.Now().UTC()
		rec.token.RevokedAt = &now
	}
	return nil
}

func (r *TokenRepo) RevokeAllByUser(ctx context.Context, userID, clientID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now().UTC()
	var n int64
	for _, rec := range r.s.tokens {
		if rec.token.UserID != userID || rec.token.RevokedAt != nil {
			continue
		}
		if clientID != "" && rec.token.ClientID != clientID {
			continue
		}
		rec.token.RevokedAt = &now
		n++
	}
	return n, nil
}

func (r *TokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, rec := range r.s.tokens {
		if rec.token.IsExpired(now) {
			delete(r.s.tokensByHash, rec.token.TokenHash)
			delete(r.s.tokens, id)
			n++
		}
	}
	return n, nil
}
