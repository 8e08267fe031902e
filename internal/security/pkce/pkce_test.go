package pkce_test

import (
	"testing"

	"github.com/dropDatabas3/tokensmith/internal/security/pkce"
)

// Vector de RFC 7636 apéndice B.
const (
	rfcVerifier  = "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	rfcChallenge = "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"
)

func TestVerify_S256(t *testing.T) {
	if !pkce.Verify(rfcVerifier, rfcChallenge, pkce.MethodS256) {
		t.Fatalf("RFC vector should verify")
	}
	// un char distinto en el verifier rompe la verificación
	tampered := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXl"
	if pkce.Verify(tampered, rfcChallenge, pkce.MethodS256) {
		t.Fatalf("tampered verifier should not verify")
	}
}

func TestVerify_Plain(t *testing.T) {
	if !pkce.Verify("abc-123", "abc-123", pkce.MethodPlain) {
		t.Fatalf("plain equal should verify")
	}
	if pkce.Verify("abc-123", "abc-124", pkce.MethodPlain) {
		t.Fatalf("plain mismatch should not verify")
	}
}

func TestVerify_UnknownMethodAndEmpties(t *testing.T) {
	if pkce.Verify(rfcVerifier, rfcChallenge, "S512") {
		t.Fatalf("unknown method must fail closed")
	}
	if pkce.Verify("", rfcChallenge, pkce.MethodS256) {
		t.Fatalf("empty verifier must fail")
	}
	if pkce.Verify(rfcVerifier, "", pkce.MethodS256) {
		t.Fatalf("empty challenge must fail")
	}
}

func TestChallenge_InverseOfVerify(t *testing.T) {
	ch, err := pkce.Challenge(rfcVerifier, pkce.MethodS256)
	if err != nil {
		t.Fatalf("Challenge err: %v", err)
	}
	if ch != rfcChallenge {
		t.Fatalf("challenge = %q, want %q", ch, rfcChallenge)
	}
	if !pkce.Verify(rfcVerifier, ch, pkce.MethodS256) {
		t.Fatalf("Challenge output should verify")
	}

	plain, err := pkce.Challenge("some-verifier", pkce.MethodPlain)
	if err != nil || plain != "some-verifier" {
		t.Fatalf("plain challenge = %q, %v", plain, err)
	}

	if _, err := pkce.Challenge(rfcVerifier, "nope"); err == nil {
		t.Fatalf("unknown method should error")
	}
	if _, err := pkce.Challenge("", pkce.MethodS256); err == nil {
		t.Fatalf("empty verifier should error")
	}
}
