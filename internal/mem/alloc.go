// Package mem provides memory allocation utilities.
package mem

import (
	"unsafe"
)

// Alignment is the default byte alignment (one cache line).
const Alignment = 64

// AllocAligned allocates a zeroed byte slice of the given size whose first
// byte sits at an address divisible by align. align must be a power of two;
// values below Alignment are raised to Alignment.
//
// Note: This function allocates slightly more memory than requested to ensure alignment.
// The underlying array is kept alive by the returned slice. The capacity of
// the result equals its length so appends never spill into the padding.
func AllocAligned(size, align int) []byte {
	if size <= 0 {
		return nil
	}
	if align < Alignment {
		align = Alignment
	}
	if align&(align-1) != 0 {
		panic("mem: alignment must be a power of two")
	}

	// We need enough space to shift the start pointer up to align-1 bytes
	buf := make([]byte, size+align)

	ptr := unsafe.Pointer(&buf[0]) //nolint:gosec // unsafe is required for memory alignment
	addr := uintptr(ptr)
	offset := int((uintptr(align) - (addr & uintptr(align-1))) & uintptr(align-1))

	return buf[offset : offset+size : offset+size]
}

// IsAligned reports whether b starts at an address divisible by align.
func IsAligned(b []byte, align int) bool {
	if len(b) == 0 {
		return true
	}
	return uintptr(unsafe.Pointer(&b[0]))&uintptr(align-1) == 0 //nolint:gosec // address inspection only
}
