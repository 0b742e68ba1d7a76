package utils // package utils provides helpers for session token creation and verification

import (
	"crypto/rand"  // secure random number generation
	"encoding/hex" // hex encoding for session ids
	"errors"       // sentinel error values
	"time"         // expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrInvalidToken is returned by ParseSessionToken for any token that
// fails signature, algorithm or expiry checks.  Callers treat the
// request as anonymous rather than failing it.
var ErrInvalidToken = errors.New("invalid session token")

// NewSessionID returns a random 64-character hex string used as the
// server-side session key.  The id itself carries no meaning; it is only
// ever used to look sessions up in the store.
func NewSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// SignSessionToken wraps a session id in a signed HS256 JWT for the
// browser cookie.  Claims: sid (the session id), exp and iat.  The TTL
// mirrors the store's idle expiry so cookie and session age out
// together.
func SignSessionToken(secret, sid string, ttlMin int) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sid": sid,
		"exp": now.Add(time.Duration(ttlMin) * time.Minute).Unix(),
		"iat": now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// ParseSessionToken verifies a cookie value and extracts the session id.
// Tokens signed with an unexpected method, bad signatures and expired
// tokens all return ErrInvalidToken.
func ParseSessionToken(secret, raw string) (string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", ErrInvalidToken
	}
	return sid, nil
}
