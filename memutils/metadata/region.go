package metadata

import "fmt"

// Region is a contiguous range of bytes within a block, described by its start offset and its length.
// Regions stored by a BlockMetadata implementation always have a positive Size.
type Region struct {
	Offset int
	Size   int
}

// End returns the offset one past the last byte of the region
func (r Region) End() int {
	return r.Offset + r.Size
}

// IsEmpty returns true for zero-length regions, which are treated as absent
func (r Region) IsEmpty() bool {
	return r.Size == 0
}

// Precedes returns true if this region ends exactly where other begins
func (r Region) Precedes(other Region) bool {
	return r.End() == other.Offset
}

// Follows returns true if this region begins exactly where other ends
func (r Region) Follows(other Region) bool {
	return other.End() == r.Offset
}

// Contains returns true if offset falls within the region
func (r Region) Contains(offset int) bool {
	return offset >= r.Offset && offset < r.End()
}

// Overlaps returns true if the two regions share at least one byte
func (r Region) Overlaps(other Region) bool {
	return r.Offset < other.End() && other.Offset < r.End()
}

func (r Region) String() string {
	return fmt.Sprintf("[%d, %d)", r.Offset, r.End())
}

func lessBySize(a, b Region) bool {
	if a.Size != b.Size {
		return a.Size < b.Size
	}
	return a.Offset < b.Offset
}

func lessByOffset(a, b Region) bool {
	return a.Offset < b.Offset
}
