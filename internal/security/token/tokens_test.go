package tokens_test

import (
	"regexp"
	"strings"
	"testing"

	tokens "github.com/dropDatabas3/tokensmith/internal/security/token"
)

var base64urlRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func TestGenerateOpaqueToken_FormatAndUniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		tok, err := tokens.GenerateOpaqueToken()
		if err != nil {
			t.Fatalf("GenerateOpaqueToken err: %v", err)
		}
		// 32 bytes -> 43 chars base64url sin padding
		if len(tok) != 43 {
			t.Fatalf("len = %d, want 43 (token %q)", len(tok), tok)
		}
		if !base64urlRe.MatchString(tok) {
			t.Fatalf("token fuera del alfabeto base64url: %q", tok)
		}
		if strings.ContainsAny(tok, "+/=") {
			t.Fatalf("token con chars de base64 std: %q", tok)
		}
		if _, dup := seen[tok]; dup {
			t.Fatalf("token repetido tras %d generaciones", i)
		}
		seen[tok] = struct{}{}
	}
}

func TestNewHasher_RejectsShortSecret(t *testing.T) {
	if _, err := tokens.NewHasher([]byte("demasiado-corto")); err == nil {
		t.Fatalf("expected error for short secret")
	}
	if _, err := tokens.NewHasher(make([]byte, 31)); err == nil {
		t.Fatalf("expected error for 31-byte secret")
	}
	if _, err := tokens.NewHasher(make([]byte, 32)); err != nil {
		t.Fatalf("32-byte secret should be accepted: %v", err)
	}
}

func TestHash_DeterministicAndKeyed(t *testing.T) {
	h1, err := tokens.NewHasher([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("NewHasher err: %v", err)
	}
	h2, err := tokens.NewHasher([]byte("fedcba9876543210fedcba9876543210"))
	if err != nil {
		t.Fatalf("NewHasher err: %v", err)
	}

	a1, err := h1.Hash("token-A")
	if err != nil {
		t.Fatalf("Hash err: %v", err)
	}
	a2, _ := h1.Hash("token-A")
	if a1 != a2 {
		t.Fatalf("mismo token, mismo secreto: %q != %q", a1, a2)
	}
	if !base64urlRe.MatchString(a1) {
		t.Fatalf("hash fuera del alfabeto base64url: %q", a1)
	}

	b, _ := h1.Hash("token-B")
	if a1 == b {
		t.Fatalf("tokens distintos no deberían colisionar")
	}
	other, _ := h2.Hash("token-A")
	if a1 == other {
		t.Fatalf("secretos distintos deben producir hashes distintos")
	}
}

func TestHash_RejectsEmptyToken(t *testing.T) {
	h, err := tokens.NewHasher(make([]byte, 32))
	if err != nil {
		t.Fatalf("NewHasher err: %v", err)
	}
	if _, err := h.Hash(""); err == nil {
		t.Fatalf("expected error for empty token")
	}
}
