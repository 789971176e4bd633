// Package resource holds the limits shared by every descriptor and volume
// that uses the same Controller.
//
// Two budgets are enforced:
//
//   - Memory: bytes of cache windows held by all descriptors.
//     AcquireMemory never blocks. It fails with ErrMemoryLimitExceeded and
//     the descriptor reports out of memory.
//   - IO: storage throughput, as a token bucket in bytes per second.
//     AcquireIO waits for tokens or for ctx.
//
// A controller with both budgets:
//
//	rc := resource.NewController(resource.Config{
//		MemoryLimitBytes:   64 << 10,
//		IOLimitBytesPerSec: 8 << 20,
//	})
//
// A nil *Controller is valid and enforces nothing, so callers can keep
// limits optional without nil checks.
package resource
