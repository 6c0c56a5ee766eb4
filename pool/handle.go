package pool

import "fmt"

// Handle identifies a live allocation within a Pool. It records the allocation's offset within the
// backing buffer and the epoch of the pool it was issued from; every call to Initialize starts a
// new epoch, so handles issued before a reset are never mistaken for later allocations.
//
// The zero Handle is never issued and is used to report that no allocation was made.
type Handle struct {
	offset int
	epoch  uint32
}

// NoHandle is the Handle value returned alongside errors
var NoHandle = Handle{}

// Valid returns false for NoHandle
func (h Handle) Valid() bool {
	return h.epoch != 0
}

// Offset returns the byte offset of the allocation within the pool's backing buffer
func (h Handle) Offset() int {
	return h.offset
}

func (h Handle) String() string {
	if !h.Valid() {
		return "NoHandle"
	}
	return fmt.Sprintf("%d@%d", h.offset, h.epoch)
}
