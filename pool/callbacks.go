package pool

// AllocateRegionCallback is called after a Pool hands out size bytes at offset
type AllocateRegionCallback func(
	pool *Pool,
	offset int,
	size int,
	userData interface{},
)

// FreeRegionCallback is called after a Pool takes back the size bytes at offset
type FreeRegionCallback func(
	pool *Pool,
	offset int,
	size int,
	userData interface{},
)

// MemoryCallbackOptions is an optional set of callbacks that will be executed when allocations are
// made from or returned to a Pool. It can be helpful when the consumer keeps its own accounting.
type MemoryCallbackOptions struct {
	Allocate AllocateRegionCallback
	Free     FreeRegionCallback
	UserData interface{}
}

type memoryCallbacks struct {
	Callbacks *MemoryCallbackOptions
	Pool      *Pool
}

func (c *memoryCallbacks) Allocate(offset, size int) {
	if c.Callbacks != nil && c.Callbacks.Allocate != nil {
		c.Callbacks.Allocate(c.Pool, offset, size, c.Callbacks.UserData)
	}
}

func (c *memoryCallbacks) Free(offset, size int) {
	if c.Callbacks != nil && c.Callbacks.Free != nil {
		c.Callbacks.Free(c.Pool, offset, size, c.Callbacks.UserData)
	}
}
