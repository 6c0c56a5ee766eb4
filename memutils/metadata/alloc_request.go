package metadata

// AllocationRequestType is an enum that indicates the type of allocation that is being made.
// It is returned in AllocationRequest from CreateAllocationRequest
type AllocationRequestType uint32

const (
	// AllocationRequestFreeList indicates that the allocation request was sourced from
	// metadata.FreeListBlockMetadata
	AllocationRequestFreeList AllocationRequestType = iota
)

var allocationRequestMapping = map[AllocationRequestType]string{
	AllocationRequestFreeList: "FreeList",
}

func (t AllocationRequestType) String() string {
	return allocationRequestMapping[t]
}

// AllocationRequest is a type returned from BlockMetadata.CreateAllocationRequest which indicates where and how
// the metadata intends to allocate new memory. It can be committed to the metadata with BlockMetadata.Alloc.
type AllocationRequest struct {
	// Item is the region the allocation will occupy once committed. Its Size may be larger than what was
	// originally requested when debug margins are enabled.
	Item Region
	// Source is the free region the allocation will be carved from. Alloc fails if this region no longer
	// exists as-is when the request is committed.
	Source Region
	// Type identifies the sort of allocation this request represents (and can be used
	// to identify the BlockMetadata implementation used to generate this request).
	Type AllocationRequestType
	// Strategy is the value passed into CreateAllocationRequest to generate this request
	Strategy AllocationStrategy
}
