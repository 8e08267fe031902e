package memory

import (
	"context"

	"github.com/dropDatabas3/tokensmith/internal/domain/repository"
)

type clientRecord struct {
	client repository.Client
}

// ClientRepo implementa repository.ClientRepository en memoria.
type ClientRepo struct {
	s *Store
}

// Seed agrega un client (para tests y modo dev).
func (r *ClientRepo) Seed(c repository.Client) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.clients[c.ClientID] = &clientRecord{client: c}
}

func (r *ClientRepo) Get(ctx context.Context, id string) (*repository.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rec := range r.s.clients {
		if rec.client.ID == id {
			c := rec.client
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *ClientRepo) GetByClientID(ctx context.Context, clientID string) (*repository.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.clients[clientID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := rec.client
	return &c, nil
}
