package jwt

import (
	"context"
	"crypto/ecdsa"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/dropDatabas3/tokensmith/internal/domain/repository"
	"github.com/dropDatabas3/tokensmith/internal/security/keygen"
)

// jwk es una clave pública en formato JWK (solo lo que el endpoint expone).
type jwk struct {
	KID string `json:"kid"`
	Kty string `json:"kty"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	Crv string `json:"crv,omitempty"`
	X   string `json:"x,omitempty"`
	Y   string `json:"y,omitempty"`
	N   string `json:"n,omitempty"`
	E   string `json:"e,omitempty"`
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

// JWKSJSON serializa las claves activas (solo públicas) como JWKS.
// Resource servers lo consumen para verificar firmas por kid.
func JWKSJSON(ctx context.Context, repo repository.CryptoKeyRepository) ([]byte, error) {
	keys, err := repo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("jwks: find active keys: %w", err)
	}
	out := jwks{Keys: make([]jwk, 0, len(keys))}
	for _, k := range keys {
		pub, err := keygen.ParsePublicPEM(k.PublicKeyPEM)
		if err != nil {
			// Clave corrupta no debe tirar el endpoint entero
			continue
		}
		entry, err := toJWK(k, pub)
		if err != nil {
			continue
		}
		out.Keys = append(out.Keys, entry)
	}
	return json.Marshal(out)
}

func toJWK(k *repository.CryptoKey, pub any) (jwk, error) {
	base := jwk{KID: k.KID, Use: "sig", Alg: k.Algorithm}
	switch key := pub.(type) {
	case *rsa.PublicKey:
		base.Kty = "RSA"
		base.N = base64.RawURLEncoding.EncodeToString(key.N.Bytes())
		base.E = base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes())
	case *ecdsa.PublicKey:
		base.Kty = "EC"
		base.Crv = key.Curve.Params().Name
		size := (key.Curve.Params().BitSize + 7) / 8
		base.X = base64.RawURLEncoding.EncodeToString(leftPad(key.X.Bytes(), size))
		base.Y = base64.RawURLEncoding.EncodeToString(leftPad(key.Y.Bytes(), size))
	default:
		return jwk{}, fmt.Errorf("jwks: tipo de clave no soportado")
	}
	return base, nil
}

// leftPad ajusta coordenadas EC al tamaño fijo de la curva.
func leftPad(b []byte, size int) []byte {
	if len(b) >= size {
		return b
	}
	out := make([]byte, size)
	copy(out[size-len(b):], b)
	return out
}
