package memutils

// Validatable is anything that can check its own internal consistency. Free-list engines implement it,
// and builds tagged debug_mem_utils pass them to DebugValidate after every mutation.
type Validatable interface {
	Validate() error
}
