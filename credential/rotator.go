// Package credential hands out API credentials from a fixed pool in round-robin order.
package credential

import (
	"errors"
	"sync/atomic"
)

// ErrEmptyPool is returned when a Rotator is built without any credential.
var ErrEmptyPool = errors.New("credential pool is empty")

// Rotator cycles through a fixed, ordered pool of credentials. It is safe for
// concurrent use: every call to Next advances a shared cursor exactly once.
type Rotator struct {
	pool   []string
	cursor atomic.Uint64
}

// NewRotator copies keys into a new pool. Keys are opaque and used as given,
// including an empty string for keyless providers; only an empty slice is rejected.
func NewRotator(keys []string) (*Rotator, error) {
	if len(keys) == 0 {
		return nil, ErrEmptyPool
	}

	return &Rotator{pool: append([]string(nil), keys...)}, nil
}

// Next returns the credential under the cursor and advances it modulo the pool size.
func (r *Rotator) Next() string {
	_, key := r.NextSlot()
	return key
}

// NextSlot is Next plus the pool index of the returned credential, for logging
// without exposing the secret.
func (r *Rotator) NextSlot() (int, string) {
	n := r.cursor.Add(1) - 1
	idx := int(n % uint64(len(r.pool)))
	return idx, r.pool[idx]
}

// Size returns the number of credentials in the pool.
func (r *Rotator) Size() int {
	return len(r.pool)
}
