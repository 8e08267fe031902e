// Package pkce implementa la verificación de Proof Key for Code Exchange
// (RFC 7636): liga un authorization code al code_verifier que el client
// generó, cerrando el replay por intercepción del code.
package pkce

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

// Métodos de challenge soportados.
const (
	MethodS256  = "S256"
	MethodPlain = "plain"
)

// Verify valida un code_verifier contra el challenge registrado.
// Método desconocido => false (la severidad la decide el caller).
// Las comparaciones son constant-time.
func Verify(verifier, challenge, method string) bool {
	if verifier == "" || challenge == "" {
		return false
	}
	switch method {
	case MethodS256:
		sum := sha256.Sum256([]byte(verifier))
		computed := base64.RawURLEncoding.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(computed), []byte(challenge)) == 1
	case MethodPlain:
		return subtle.ConstantTimeCompare([]byte(verifier), []byte(challenge)) == 1
	default:
		return false
	}
}

// Challenge calcula el code_challenge para un verifier dado.
// Inversa de Verify; la usa el authorize endpoint y los fixtures de test.
func Challenge(verifier, method string) (string, error) {
	if verifier == "" {
		return "", fmt.Errorf("pkce: verifier vacío")
	}
	switch method {
	case MethodS256:
		sum := sha256.Sum256([]byte(verifier))
		return base64.RawURLEncoding.EncodeToString(sum[:]), nil
	case MethodPlain:
		return verifier, nil
	default:
		return "", fmt.Errorf("pkce: método %q no soportado", method)
	}
}
