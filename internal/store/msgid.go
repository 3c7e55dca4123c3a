package store

import (
	"sync"
	"time"
)

// idAllocator hands out message ids that are strictly increasing across
// the whole process. The store has no native time-ordered id primitive,
// so the id is a composite: unix milliseconds shifted left 20 bits, with
// the low bits acting as a sequence for ids allocated in the same
// millisecond. Sorting by id therefore sorts by creation time, which
// History depends on.
//
// The mutex here is the only serialization point for id assignment; two
// sends racing for the same conversation each get a distinct id.
type idAllocator struct {
	mu   sync.Mutex
	last int64
}

func (a *idAllocator) next() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := time.Now().UnixMilli() << 20
	if id <= a.last {
		// same millisecond, or the clock went backwards
		id = a.last + 1
	}
	a.last = id
	return id
}

// MessageTime recovers the creation instant embedded in a message id.
func MessageTime(id int64) time.Time {
	return time.UnixMilli(id >> 20)
}
