package id

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// entropy increments within a millisecond, so IDs minted in the same
// millisecond still sort in creation order.
var entropy = &ulid.LockedMonotonicReader{MonotonicReader: ulid.Monotonic(rand.Reader, 0)}

// New generates a new ULID string. ULIDs are lexicographically sortable
// by creation time and safe for use as DynamoDB partition keys.
func New() string {
	return ulid.MustNew(ulid.Now(), entropy).String()
}

// NewAt generates a ULID stamped with t, so records created through an
// injected clock still sort by their CreatedAt.
func NewAt(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
