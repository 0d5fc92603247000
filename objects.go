package lumenvm

import (
	"github.com/lumenvm/lumenvm/budget"
	"github.com/lumenvm/lumenvm/types"
)

// The object arena holds the byte objects host functions pass by handle.
// Handles are word-sized, start at 1 (0 is the invalid handle) and are
// scoped to the host's lifetime like the rest of the invocation state.

// NewBytesObject copies data into the arena and returns its handle. The
// allocation is metered.
func (h *Host) NewBytesObject(data []byte) (uint64, error) {
	if err := h.budget.Charge(budget.MemAlloc, uint64(len(data))); err != nil {
		return 0, err
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	h.objects = append(h.objects, buf)
	return uint64(len(h.objects)), nil
}

// ObjectBytes resolves a handle to its payload. Callers must not mutate the
// returned slice.
func (h *Host) ObjectBytes(handle uint64) ([]byte, error) {
	if handle == 0 || handle > uint64(len(h.objects)) {
		return nil, types.NewHostError(types.CodeInternal, "invalid object handle %d", handle)
	}
	return h.objects[handle-1], nil
}
