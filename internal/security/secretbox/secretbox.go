// Package secretbox cifra claves privadas en reposo con AES-256-GCM.
// El blob resultante es base64(nonce ‖ ciphertext ‖ tag): un solo campo
// de texto que viaja cómodo por cualquier storage.
package secretbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	nonceSizeGCM      = 12 // AES-GCM nonce recomendado (96 bits)
	requiredKeyLength = 32 // 32 bytes => AES-256
)

// Box cifra y descifra con una clave maestra fija de 32 bytes.
// El nonce se genera fresco por llamada; nunca se reutiliza.
type Box struct {
	aead cipher.AEAD
}

// New construye un Box desde la clave maestra en base64 (std o raw).
// La clave debe decodificar a exactamente 32 bytes; cualquier otra cosa
// es error de configuración y se rechaza acá, no en el primer Encrypt.
func New(masterKeyB64 string) (*Box, error) {
	masterKeyB64 = strings.TrimSpace(masterKeyB64)
	if masterKeyB64 == "" {
		return nil, errors.New("secretbox: clave maestra vacía; genere una con: openssl rand -base64 32")
	}
	k, err := base64.StdEncoding.DecodeString(masterKeyB64)
	if err != nil {
		k, err = base64.RawStdEncoding.DecodeString(masterKeyB64)
		if err != nil {
			return nil, fmt.Errorf("secretbox: decode clave maestra: %w", err)
		}
	}
	return NewFromBytes(k)
}

// NewFromBytes construye un Box desde la clave cruda (32 bytes).
func NewFromBytes(key []byte) (*Box, error) {
	if len(key) != requiredKeyLength {
		return nil, fmt.Errorf("secretbox: clave de %d bytes, se requieren %d", len(key), requiredKeyLength)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return &Box{aead: aead}, nil
}

// Encrypt cifra plainText y devuelve base64(nonce ‖ ciphertext ‖ tag).
func (b *Box) Encrypt(plainText string) (string, error) {
	nonce := make([]byte, nonceSizeGCM)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("nonce random: %w", err)
	}
	// Seal con dst=nonce deja nonce‖ct‖tag en un solo slice
	out := b.aead.Seal(nonce, nonce, []byte(plainText), nil)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt recibe base64(nonce ‖ ciphertext ‖ tag) y devuelve el texto plano.
// Si el tag no autentica, falla; jamás devuelve plaintext parcial.
func (b *Box) Decrypt(blob string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("secretbox: decode blob: %w", err)
	}
	if len(raw) < nonceSizeGCM {
		return "", fmt.Errorf("secretbox: blob de %d bytes, mínimo %d", len(raw), nonceSizeGCM)
	}
	nonce, ct := raw[:nonceSizeGCM], raw[nonceSizeGCM:]
	pt, err := b.aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("gcm auth/decrypt: %w", err)
	}
	return string(pt), nil
}
