package metadata

// AllocationStrategy exposes options for choosing the free region a new allocation is carved from.
// If none is chosen, AllocationStrategyMinMemory is used.
type AllocationStrategy uint32

const (
	// AllocationStrategyMinMemory selects the smallest free region that can hold the allocation
	// (best fit). Ties between regions of equal size go to the lowest offset. This keeps large
	// regions intact for as long as possible and is the default.
	AllocationStrategyMinMemory AllocationStrategy = 1 << iota
	// AllocationStrategyMinOffset selects the lowest-offset free region that can hold the
	// allocation (first fit). This packs allocations toward the start of the block.
	AllocationStrategyMinOffset
)

var allocationStrategyMapping = map[AllocationStrategy]string{
	AllocationStrategyMinMemory: "AllocationStrategyMinMemory",
	AllocationStrategyMinOffset: "AllocationStrategyMinOffset",
}

func (s AllocationStrategy) String() string {
	if s == 0 {
		return "AllocationStrategyDefault"
	}
	return allocationStrategyMapping[s]
}
