package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashToken shortens a token string to a fixed-size key. Raw JWTs are long
// and should not appear verbatim as cache keys.
func HashToken(token string) string {
	hashedBytes := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hashedBytes[:])
}
