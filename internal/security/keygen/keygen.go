// Package keygen genera pares de claves de firma en PEM.
// RS* => RSA-4096; ES* => ECDSA sobre la curva que corresponde al alg.
package keygen

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/dropDatabas3/tokensmith/internal/domain/repository"
)

// rsaBits es el tamaño de módulo para claves RSA. 4096 es deliberado:
// las claves viven años a través de rotaciones.
const rsaBits = 4096

// KeyPair contiene un par de claves serializado en PEM.
// Privada en PKCS#8, pública en PKIX.
type KeyPair struct {
	PublicKeyPEM  string
	PrivateKeyPEM string
}

// Generate produce un par de claves para el algoritmo dado.
// Algoritmo no soportado => error.
func Generate(algorithm string) (*KeyPair, error) {
	switch {
	case repository.IsRSAFamily(algorithm):
		return generateRSA()
	case repository.IsECFamily(algorithm):
		return generateECDSA(curveFor(algorithm))
	default:
		return nil, fmt.Errorf("keygen: algoritmo %q no soportado", algorithm)
	}
}

// curveFor mapea alg ES* a su curva nombrada.
func curveFor(algorithm string) elliptic.Curve {
	switch algorithm {
	case repository.AlgES384:
		return elliptic.P384()
	case repository.AlgES512:
		return elliptic.P521()
	default:
		return elliptic.P256()
	}
}

func generateRSA() (*KeyPair, error) {
	priv, err := rsa.GenerateKey(rand.Reader, rsaBits)
	if err != nil {
		return nil, fmt.Errorf("rsa.GenerateKey: %w", err)
	}
	return encode(priv, &priv.PublicKey)
}

func generateECDSA(curve elliptic.Curve) (*KeyPair, error) {
	priv, err := ecdsa.GenerateKey(curve, rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("ecdsa.GenerateKey: %w", err)
	}
	return encode(priv, &priv.PublicKey)
}

// encode serializa privada (PKCS#8) y pública (PKIX) a PEM.
func encode(priv any, pub any) (*KeyPair, error) {
	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("marshal private key: %w", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("marshal public key: %w", err)
	}
	privPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER})
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	return &KeyPair{
		PublicKeyPEM:  string(pubPEM),
		PrivateKeyPEM: string(privPEM),
	}, nil
}

// ParsePrivatePEM decodifica una clave privada PKCS#8 desde PEM.
func ParsePrivatePEM(pemStr string) (any, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, fmt.Errorf("keygen: PEM inválido")
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse PKCS#8: %w", err)
	}
	return key, nil
}

// ParsePublicPEM decodifica una clave pública PKIX desde PEM.
func ParsePublicPEM(pemStr string) (any, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, fmt.Errorf("keygen: PEM inválido")
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse PKIX: %w", err)
	}
	return key, nil
}
