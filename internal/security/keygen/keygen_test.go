package keygen_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"testing"

	"github.com/dropDatabas3/tokensmith/internal/domain/repository"
	"github.com/dropDatabas3/tokensmith/internal/security/keygen"
)

func TestGenerate_ECDSACurves(t *testing.T) {
	// RSA-4096 es lento para correr en cada alg; las curvas EC cubren el
	// mapeo alg->curva y el round-trip PEM.
	cases := []struct {
		alg   string
		curve elliptic.Curve
	}{
		{repository.AlgES256, elliptic.P256()},
		{repository.AlgES384, elliptic.P384()},
		{repository.AlgES512, elliptic.P521()},
	}
	for _, tc := range cases {
		pair, err := keygen.Generate(tc.alg)
		if err != nil {
			t.Fatalf("Generate(%s) err: %v", tc.alg, err)
		}
		priv, err := keygen.ParsePrivatePEM(pair.PrivateKeyPEM)
		if err != nil {
			t.Fatalf("ParsePrivatePEM(%s) err: %v", tc.alg, err)
		}
		ecPriv, ok := priv.(*ecdsa.PrivateKey)
		if !ok {
			t.Fatalf("%s: private key is %T, want *ecdsa.PrivateKey", tc.alg, priv)
		}
		if ecPriv.Curve != tc.curve {
			t.Fatalf("%s: curve = %v, want %v", tc.alg, ecPriv.Curve.Params().Name, tc.curve.Params().Name)
		}
		pub, err := keygen.ParsePublicPEM(pair.PublicKeyPEM)
		if err != nil {
			t.Fatalf("ParsePublicPEM(%s) err: %v", tc.alg, err)
		}
		ecPub, ok := pub.(*ecdsa.PublicKey)
		if !ok {
			t.Fatalf("%s: public key is %T", tc.alg, pub)
		}
		if !ecPub.Equal(&ecPriv.PublicKey) {
			t.Fatalf("%s: public PEM does not match private key", tc.alg)
		}
	}
}

func TestGenerate_RSA(t *testing.T) {
	if testing.Short() {
		t.Skip("RSA-4096 keygen is slow")
	}
	pair, err := keygen.Generate(repository.AlgRS256)
	if err != nil {
		t.Fatalf("Generate(RS256) err: %v", err)
	}
	priv, err := keygen.ParsePrivatePEM(pair.PrivateKeyPEM)
	if err != nil {
		t.Fatalf("ParsePrivatePEM err: %v", err)
	}
	rsaPriv, ok := priv.(*rsa.PrivateKey)
	if !ok {
		t.Fatalf("private key is %T, want *rsa.PrivateKey", priv)
	}
	if got := rsaPriv.N.BitLen(); got != 4096 {
		t.Fatalf("modulus = %d bits, want 4096", got)
	}
}

func TestGenerate_UnknownAlgorithm(t *testing.T) {
	if _, err := keygen.Generate("HS256"); err == nil {
		t.Fatalf("symmetric alg must be rejected")
	}
	if _, err := keygen.Generate(""); err == nil {
		t.Fatalf("empty alg must be rejected")
	}
}

func TestParsePEM_Invalid(t *testing.T) {
	if _, err := keygen.ParsePrivatePEM("not pem"); err == nil {
		t.Fatalf("expected error for invalid private PEM")
	}
	if _, err := keygen.ParsePublicPEM("not pem"); err == nil {
		t.Fatalf("expected error for invalid public PEM")
	}
}
