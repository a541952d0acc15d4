package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	token := CreateSessionToken("user-abc", now.Add(time.Hour), testSecret)

	got, err := VerifySessionToken(token, testSecret, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "user-abc" {
		t.Errorf("expected user-abc, got %q", got)
	}
}

func TestSessionToken_Expired(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	token := CreateSessionToken("user-abc", now, testSecret)

	if _, err := VerifySessionToken(token, testSecret, now); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
}

func TestSessionToken_WrongSecret(t *testing.T) {
	now := time.Now()
	token := CreateSessionToken("user-abc", now.Add(time.Hour), testSecret)
	other := SessionSecretBytes("another-secret-that-is-long-enough-too")

	if _, err := VerifySessionToken(token, other, now); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSessionToken_Tampered(t *testing.T) {
	now := time.Now()
	token := CreateSessionToken("user-abc", now.Add(time.Hour), testSecret)
	forged := CreateSessionToken("user-xyz", now.Add(time.Hour), testSecret)
	mixed := strings.SplitN(forged, ".", 2)[0] + "." + strings.SplitN(token, ".", 2)[1]

	if _, err := VerifySessionToken(mixed, testSecret, now); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
	for _, bad := range []string{"", "nodot", "!!!.abc"} {
		if _, err := VerifySessionToken(bad, testSecret, now); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("token %q: expected ErrInvalidToken, got %v", bad, err)
		}
	}
}

func TestSessionSecretBytes_PadsShortSecrets(t *testing.T) {
	if got := len(SessionSecretBytes("short")); got != minSecretLen {
		t.Errorf("expected %d bytes, got %d", minSecretLen, got)
	}
	long := strings.Repeat("k", 40)
	if got := string(SessionSecretBytes(long)); got != long {
		t.Errorf("long secret must be used as is")
	}
}
