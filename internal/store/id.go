package store

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ulidEntropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	ulidEntropyMu sync.Mutex
)

// NewID returns a ulid for a new row. Ledger entries and winners are listed
// by id, so ids must sort by creation time.
func NewID() string { return NewIDAt(time.Now()) }

// NewIDAt stamps the id with ts instead of the wall clock. Ids drawn for
// the same millisecond stay ordered.
func NewIDAt(ts time.Time) string {
	ulidEntropyMu.Lock()
	defer ulidEntropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(ts), ulidEntropy).String()
}
