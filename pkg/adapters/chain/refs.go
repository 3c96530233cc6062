// Package chain mints the opaque transaction references stamped on record
// creation and transfers. A reference is the upper-case hex of a SHA3-256
// digest over a monotonic counter, a random uuid and the mint time, shaped
// like a ledger transaction id.
package chain

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"

	"github.com/aretw0/custody/pkg/core"
)

// RefLength is the length in characters of every minted reference.
const RefLength = 2 * 32

// Refs is a core.TransactionRefSource. The zero value is not usable; call
// NewRefs.
type Refs struct {
	mu      sync.Mutex
	counter uint64
	clock   func() time.Time
	random  func() (uuid.UUID, error)
}

// NewRefs returns a source using the wall clock and random uuids.
func NewRefs() *Refs {
	return &Refs{clock: time.Now, random: uuid.NewRandom}
}

// NewTransactionRef implements core.TransactionRefSource.
func (r *Refs) NewTransactionRef() (string, error) {
	id, err := r.random()
	if err != nil {
		return "", fmt.Errorf("transaction ref entropy: %w", err)
	}

	r.mu.Lock()
	r.counter++
	n := r.counter
	r.mu.Unlock()

	var buf [8 + 16 + 8]byte
	binary.BigEndian.PutUint64(buf[0:8], n)
	copy(buf[8:24], id[:])
	binary.BigEndian.PutUint64(buf[24:32], uint64(r.clock().UnixNano()))

	digest := sha3.Sum256(buf[:])
	return strings.ToUpper(hex.EncodeToString(digest[:])), nil
}

// Minted reports how many references this source has produced.
func (r *Refs) Minted() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counter
}

// IsRef reports whether s has the shape of a minted reference.
func IsRef(s string) bool {
	if len(s) != RefLength || s != strings.ToUpper(s) {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

var _ core.TransactionRefSource = (*Refs)(nil)
