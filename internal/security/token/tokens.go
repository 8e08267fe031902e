// Package tokens genera y hashea tokens opacos (refresh tokens,
// authorization codes). Nunca se persiste un token plano: el storage
// solo ve hashes HMAC, así un dump de la DB no produce tokens usables.
package tokens

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

// OpaqueTokenBytes es el tamaño del material aleatorio (256 bits).
// base64url sin padding => 43 caracteres.
const OpaqueTokenBytes = 32

// minSecretLen es el mínimo aceptado para el secreto HMAC.
const minSecretLen = 32

// GenerateOpaqueToken genera un token opaco aleatorio (base64url sin padding).
func GenerateOpaqueToken() (string, error) {
	b := make([]byte, OpaqueTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Hasher calcula HMAC-SHA256 con un secreto de servidor para persistir
// tokens y codes sin exponer el plaintext.
type Hasher struct {
	secret []byte
}

// NewHasher valida el secreto (>= 32 bytes) y construye el hasher.
func NewHasher(secret []byte) (*Hasher, error) {
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("token hasher: secret de %d bytes, se requieren >= %d", len(secret), minSecretLen)
	}
	h := &Hasher{secret: make([]byte, len(secret))}
	copy(h.secret, secret)
	return h, nil
}

// Hash devuelve HMAC-SHA256(token) en base64url sin padding.
// Determinístico: mismo token => mismo hash (es la clave de lookup en DB).
func (h *Hasher) Hash(token string) (string, error) {
	if token == "" {
		return "", errors.New("token hasher: token vacío")
	}
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(token))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)), nil
}
