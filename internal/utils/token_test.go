package utils

import (
	"strings"
	"testing"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	t.Parallel()

	sid, err := NewSessionID()
	if err != nil {
		t.Fatalf("NewSessionID() err=%v", err)
	}
	if len(sid) != 64 {
		t.Fatalf("NewSessionID() len=%d, want 64", len(sid))
	}

	tok, err := SignSessionToken("secret", sid, 30)
	if err != nil {
		t.Fatalf("SignSessionToken() err=%v", err)
	}
	got, err := ParseSessionToken("secret", tok)
	if err != nil {
		t.Fatalf("ParseSessionToken() err=%v", err)
	}
	if got != sid {
		t.Fatalf("ParseSessionToken()=%q, want %q", got, sid)
	}
}

func TestSessionToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := SignSessionToken("secret-a", "abc", 30)
	if err != nil {
		t.Fatalf("SignSessionToken() err=%v", err)
	}
	if _, err := ParseSessionToken("secret-b", tok); err != ErrInvalidToken {
		t.Fatalf("ParseSessionToken() err=%v, want ErrInvalidToken", err)
	}
}

func TestSessionToken_Tampered(t *testing.T) {
	t.Parallel()

	tok, err := SignSessionToken("secret", "abc", 30)
	if err != nil {
		t.Fatalf("SignSessionToken() err=%v", err)
	}
	parts := strings.Split(tok, ".")
	parts[1] = "eyJzaWQiOiJldmlsIn0" // {"sid":"evil"} without re-signing
	if _, err := ParseSessionToken("secret", strings.Join(parts, ".")); err != ErrInvalidToken {
		t.Fatalf("ParseSessionToken() err=%v, want ErrInvalidToken", err)
	}
}

func TestSessionToken_Garbage(t *testing.T) {
	t.Parallel()

	if _, err := ParseSessionToken("secret", "not-a-token"); err != ErrInvalidToken {
		t.Fatalf("ParseSessionToken() err=%v, want ErrInvalidToken", err)
	}
}
