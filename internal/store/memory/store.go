// Package memory implementa los repositorios de dominio sobre mapas en
// memoria. Se usa en tests y en modo dev (driver "memory"). Las
// operaciones condicionales (Consume, Revoke) son atómicas bajo mutex:
// mismas garantías de linealizabilidad que el adapter de PostgreSQL.
package memory

import "sync"

// Store agrupa los repositorios en memoria con un lock compartido.
type Store struct {
	mu sync.Mutex

	clients      map[string]*clientRecord
	codes        map[string]*codeRecord      // key: code hash
	tokens       map[string]*tokenRecord     // key: token ID
	tokensByHash map[string]string           // hash -> ID
	keys         map[string]*keyRecord       // key: KID
	blacklist    map[string]*blacklistRecord // key: jti
}

// New crea un Store vacío.
func New() *Store {
	return &Store{
		clients:      make(map[string]*clientRecord),
		codes:        make(map[string]*codeRecord),
		tokens:       make(map[string]*tokenRecord),
		tokensByHash: make(map[string]string),
		keys:         make(map[string]*keyRecord),
		blacklist:    make(map[string]*blacklistRecord),
	}
}

// Clients retorna el repositorio de clients.
func (s *Store) Clients() *ClientRepo { return &ClientRepo{s: s} }

// Codes retorna el repositorio de authorization codes.
func (s *Store) Codes() *CodeRepo { return &CodeRepo{s: s} }

// RefreshTokens retorna el repositorio de refresh tokens.
func (s *Store) RefreshTokens() *TokenRepo { return &TokenRepo{s: s} }

// Keys retorna el repositorio de claves de firma.
func (s *Store) Keys() *KeyRepo { return &KeyRepo{s: s} }

// Blacklist retorna el repositorio del blacklist de access tokens.
func (s *Store) Blacklist() *BlacklistRepo { return &BlacklistRepo{s: s} }
