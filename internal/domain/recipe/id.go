package recipe

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/kailas-cloud/cookbook/internal/domain"
)

// IDLength is the length of the hexadecimal form of an ID.
const IDLength = 24

// ID is a 12-byte document identifier in the ObjectID layout:
// 4-byte big-endian unix seconds, 5 process-unique random bytes, 3-byte counter.
type ID [12]byte

// NilID is the zero ID.
var NilID ID

// InvalidIDError carries the rejected input of a failed ParseID.
type InvalidIDError struct {
	Input string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("%s: %q", domain.ErrInvalidID.Error(), e.Input)
}

func (e *InvalidIDError) Unwrap() error { return domain.ErrInvalidID }

// ParseID parses exactly 24 hexadecimal characters (either case).
func ParseID(s string) (ID, error) {
	if len(s) != IDLength {
		return NilID, &InvalidIDError{Input: s}
	}
	var id ID
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return NilID, &InvalidIDError{Input: s}
	}
	return id, nil
}

// String returns the lowercase hexadecimal form.
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether id is the zero ID.
func (id ID) IsZero() bool {
	return id == NilID
}

var (
	processUnique = mustRandom5()
	idCounter     = mustRandomCounter()
)

// NewID generates a new ID for the current time.
func NewID() ID {
	return newIDAt(time.Now())
}

func newIDAt(t time.Time) ID {
	var id ID
	binary.BigEndian.PutUint32(id[0:4], uint32(t.Unix())) //nolint:gosec // ObjectID layout wraps in 2106
	copy(id[4:9], processUnique[:])
	c := idCounter.Add(1)
	id[9] = byte(c >> 16)
	id[10] = byte(c >> 8)
	id[11] = byte(c)
	return id
}

func mustRandom5() [5]byte {
	var b [5]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Errorf("recipe: read random bytes: %w", err))
	}
	return b
}

func mustRandomCounter() *atomic.Uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Errorf("recipe: read random bytes: %w", err))
	}
	c := &atomic.Uint32{}
	c.Store(binary.BigEndian.Uint32(b[:]) & 0x00ffffff)
	return c
}
