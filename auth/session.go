package auth

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

const (
	// SessionCookie is the HttpOnly cookie carrying the session token.
	SessionCookie = "warehouse_session"
	SessionTTL    = 14 * 24 * time.Hour
)

// NewSessionToken returns an opaque URL-safe token with 32 bytes of
// entropy.
func NewSessionToken() string {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		panic("auth: read random token: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}
