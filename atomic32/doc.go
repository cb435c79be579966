// Package atomic32 collects the small set of portable concurrency primitives
// the rest of wsched builds on: a cache-line pad type and a cooperative
// spin/pause hint.
//
// This package deliberately does not wrap sync/atomic behind opaque handle
// types. Every hot structure in wsched (deque indices, job-table generations,
// dependency counters) keeps its atomic fields as first-class struct members
// (atomic.Uint32/Uint64/Bool) and documents the ordering it relies on at the
// call site, the same way the Go standard library and the rest of the
// examples pack do it. Go's memory model already ties acquire/release
// semantics to sync/atomic Load/Store, so a redundant LoadAcquire/StoreRelease
// wrapper layer would only obscure which operation does the real work.
package atomic32
