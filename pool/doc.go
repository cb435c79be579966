// Package pool provides the generic object-pool wrapper arena.NUMAPool
// builds its buffer recycling on (see objpool.go).
package pool
