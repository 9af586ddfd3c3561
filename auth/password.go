package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	hashIterations = 120000
	hashKeyLength  = 32
)

// HashPassword derives a PBKDF2-SHA256 hash and returns it in the
// stored "salt$digest" form. Salt and digest are hex strings; the salt
// participates in the derivation as its hex text bytes.
func HashPassword(password string) string {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		panic("auth: read random salt: " + err.Error())
	}
	saltHex := hex.EncodeToString(salt)
	return saltHex + "$" + derive(password, saltHex)
}

// VerifyPassword checks a candidate password against a stored hash in
// constant time. Malformed stored values verify as false.
func VerifyPassword(password, stored string) bool {
	salt, digest, ok := strings.Cut(stored, "$")
	if !ok {
		return false
	}
	recalculated := derive(password, salt)
	return subtle.ConstantTimeCompare([]byte(recalculated), []byte(digest)) == 1
}

func derive(password, saltHex string) string {
	key := pbkdf2.Key([]byte(password), []byte(saltHex), hashIterations, hashKeyLength, sha256.New)
	return hex.EncodeToString(key)
}
