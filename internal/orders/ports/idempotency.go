package ports

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// ErrIdempotencyMismatch is returned when a key is reused for a different request.
var ErrIdempotencyMismatch = errors.New("idempotency key reused with a different request")

// StoredResponse is the submission result replayed when the register retries.
type StoredResponse struct {
	StatusCode  int       `json:"status_code"`
	Body        []byte    `json:"body"`
	OrderID     string    `json:"order_id"`
	Fingerprint string    `json:"fingerprint"`
	CreatedAt   time.Time `json:"created_at"`
}

// Matches reports whether the stored response was produced by a request with fingerprint.
// Responses saved without a fingerprint match anything.
func (r StoredResponse) Matches(fingerprint string) bool {
	return r.Fingerprint == "" || r.Fingerprint == fingerprint
}

// Fingerprint hashes a request body for comparison with later retries.
func Fingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// IdempotencyStore remembers submission responses by key. Get returns nil and no
// error for unknown keys. Save keeps the first response stored for a key.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*StoredResponse, error)
	Save(ctx context.Context, key string, response StoredResponse) error
}
