// Package mem provides memory allocation utilities.
//
// # Aligned Allocation
//
// Cache windows are allocated aligned to the sector unit (at least a cache
// line), which keeps them usable for direct I/O style drivers.
package mem
