package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/tokensmith/internal/domain/repository"
)

type codeRecord struct {
	code repository.AuthorizationCode
}

// CodeRepo implementa repository.AuthorizationCodeRepository en memoria.
type CodeRepo struct {
	s *Store
}

func (r *CodeRepo) Create(ctx context.Context, input repository.CreateAuthorizationCodeInput) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.codes[input.CodeHash]; exists {
		return "", repository.ErrConflict
	}
	now := time.Now().UTC()
	id := uuid.NewString()
	r.s.codes[input.CodeHash] = &codeRecord{code: repository.AuthorizationCode{
		ID:                  id,
		CodeHash:            input.CodeHash,
		ClientID:            input.ClientID,
		UserID:              input.UserID,
		RedirectURI:         input.RedirectURI,
		Scopes:              append([]string(nil), input.Scopes...),
		CodeChallenge:       input.CodeChallenge,
		CodeChallengeMethod: input.CodeChallengeMethod,
		ExpiresAt:           now.Add(input.TTL),
		CreatedAt:           now,
	}}
	return id, nil
}

func (r *CodeRepo) GetByHash(ctx context.Context, codeHash string) (*repository.AuthorizationCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.codes[codeHash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := rec.code
	return &c, nil
}

// Consume marca el code como canjeado. Atómico bajo el mutex del Store:
// de N llamadas concurrentes exactamente una retorna nil.
func (r *CodeRepo) Consume(ctx context.Context, codeHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.codes[codeHash]
	if !ok {
		return repository.ErrNotFound
	}
	if rec.code.ConsumedAt != nil {
		return repository.ErrAlreadyConsumed
	}
	now := time.Now().UTC()
	rec.code.ConsumedAt = &now
	return nil
}

func (r *CodeRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for hash, rec := range r.s.codes {
		if rec.code.IsExpired(now) {
			delete(r.s.codes, hash)
			n++
		}
	}
	return n, nil
}
