package shortener

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Code represents a short URL code.
type Code string

// URLHash is the hex-encoded SHA-256 of a long URL, used by SQL stores to index long URLs.
type URLHash string

// Mapping is the persisted long URL <-> code relation.
// Mappings are immutable once inserted.
type Mapping struct {
	ID        int64
	LongURL   string
	Code      Code
	CreatedAt time.Time
}

// HashURL computes the SHA-256 of the long URL exactly as submitted.
func HashURL(longURL string) URLHash {
	h := sha256.Sum256([]byte(longURL))

	return URLHash(hex.EncodeToString(h[:]))
}
