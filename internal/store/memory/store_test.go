package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dropDatabas3/tokensmith/internal/domain/repository"
	"github.com/dropDatabas3/tokensmith/internal/store/memory"
)

func TestCodeRepo_ConsumeExactlyOnce(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	_, err := store.Codes().Create(ctx, repository.CreateAuthorizationCodeInput{
		CodeHash:    "hash-1",
		ClientID:    "client-a",
		UserID:      "user-1",
		RedirectURI: "https://app/cb",
		Scopes:      []string{"openid"},
		TTL:         time.Minute,
	})
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}

	// N goroutines compiten por el mismo code: exactamente una gana
	const n = 16
	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- store.Codes().Consume(ctx, "hash-1")
		}()
	}
	wg.Wait()
	close(results)

	var wins, replays int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, repository.ErrAlreadyConsumed):
			replays++
		default:
			t.Fatalf("unexpected err: %v", err)
		}
	}
	if wins != 1 || replays != n-1 {
		t.Fatalf("wins=%d replays=%d, want 1/%d", wins, replays, n-1)
	}
}

func TestCodeRepo_ConsumeUnknown(t *testing.T) {
	store := memory.New()
	if err := store.Codes().Consume(context.Background(), "nope"); !repository.IsNotFound(err) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCodeRepo_DuplicateHashConflicts(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	in := repository.CreateAuthorizationCodeInput{CodeHash: "dup", ClientID: "c", UserID: "u", TTL: time.Minute}
	if _, err := store.Codes().Create(ctx, in); err != nil {
		t.Fatalf("first Create err: %v", err)
	}
	if _, err := store.Codes().Create(ctx, in); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestTokenRepo_RevokeIdempotent(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	id, err := store.RefreshTokens().Create(ctx, repository.CreateRefreshTokenInput{
		TokenHash: "th-1", ClientID: "c", UserID: "u", TTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}
	if err := store.RefreshTokens().Revoke(ctx, id); err != nil {
		t.Fatalf("Revoke err: %v", err)
	}
	rt, err := store.RefreshTokens().GetByHash(ctx, "th-1")
	if err != nil {
		t.Fatalf("GetByHash err: %v", err)
	}
	first := *rt.RevokedAt

	time.Sleep(5 * time.Millisecond)
	if err := store.RefreshTokens().Revoke(ctx, id); err != nil {
		t.Fatalf("second Revoke err: %v", err)
	}
	rt, _ = store.RefreshTokens().GetByHash(ctx, "th-1")
	if !rt.RevokedAt.Equal(first) {
		t.Fatalf("RevokedAt changed on second revoke")
	}
}

func TestTokenRepo_RevokeAllByUser(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	seed := func(hash, client, user string) {
		if _, err := store.RefreshTokens().Create(ctx, repository.CreateRefreshTokenInput{
			TokenHash: hash, ClientID: client, UserID: user, TTL: time.Hour,
		}); err != nil {
			t.Fatalf("seed %s: %v", hash, err)
		}
	}
	seed("a1", "client-a", "user-1")
	seed("a2", "client-b", "user-1")
	seed("a3", "client-a", "user-2")

	n, err := store.RefreshTokens().RevokeAllByUser(ctx, "user-1", "client-a")
	if err != nil || n != 1 {
		t.Fatalf("filtered revoke: n=%d err=%v, want 1", n, err)
	}
	n, err = store.RefreshTokens().RevokeAllByUser(ctx, "user-1", "")
	if err != nil || n != 1 {
		t.Fatalf("remaining revoke: n=%d err=%v, want 1", n, err)
	}
}

func TestDeleteExpired(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	if _, err := store.Codes().Create(ctx, repository.CreateAuthorizationCodeInput{
		CodeHash: "old", ClientID: "c", UserID: "u", TTL: -time.Minute,
	}); err != nil {
		t.Fatalf("Create err: %v", err)
	}
	if _, err := store.Codes().Create(ctx, repository.CreateAuthorizationCodeInput{
		CodeHash: "fresh", ClientID: "c", UserID: "u", TTL: time.Hour,
	}); err != nil {
		t.Fatalf("Create err: %v", err)
	}

	n, err := store.Codes().DeleteExpired(ctx, time.Now())
	if err != nil || n != 1 {
		t.Fatalf("DeleteExpired n=%d err=%v, want 1", n, err)
	}
	if _, err := store.Codes().GetByHash(ctx, "fresh"); err != nil {
		t.Fatalf("fresh code should survive: %v", err)
	}
}

func TestBlacklistRepo_AddIdempotentAndExpiry(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	entry := &repository.BlacklistEntry{
		ID:        "b1",
		JTI:       "jti-1",
		ExpiresAt: time.Now().Add(-time.Minute),
		RevokedAt: time.Now(),
	}
	if err := store.Blacklist().Add(ctx, entry); err != nil {
		t.Fatalf("Add err: %v", err)
	}
	if err := store.Blacklist().Add(ctx, entry); err != nil {
		t.Fatalf("re-Add should be idempotent: %v", err)
	}
	ok, err := store.Blacklist().Contains(ctx, "jti-1")
	if err != nil || !ok {
		t.Fatalf("Contains = %v, %v", ok, err)
	}

	n, err := store.Blacklist().DeleteExpired(ctx, time.Now())
	if err != nil || n != 1 {
		t.Fatalf("DeleteExpired n=%d err=%v", n, err)
	}
	ok, _ = store.Blacklist().Contains(ctx, "jti-1")
	if ok {
		t.Fatalf("expired entry should be gone")
	}
}
