// Package payload implements the reference-counted broadcast buffer: bytes
// formatted once by the broadcast engine and shared, read-only, across every
// destination send queue. Grounded on the atomic compare-and-swap pattern
// teacher uses for connFlag in network/p2p/server.go, generalized from a bit
// flag to a reference count.
package payload

import "sync/atomic"

// Payload is an immutable byte buffer shared by multiple send queues.
type Payload struct {
	data []byte
	refs int32
}

// New wraps b in a Payload with a single owned reference.
func New(b []byte) *Payload {
	return &Payload{data: b, refs: 1}
}

// Retain adds a reference and returns p, for chaining into Enqueue calls.
func (p *Payload) Retain() *Payload {
	atomic.AddInt32(&p.refs, 1)
	return p
}

// Release drops a reference. The backing array is dropped once the last
// reference is released; a Payload is never mutated after construction, so
// concurrent Release calls from different destination goroutines are safe.
func (p *Payload) Release() {
	if atomic.AddInt32(&p.refs, -1) == 0 {
		p.data = nil
	}
}

// Bytes returns the underlying buffer. Must not be called after the last
// Release.
func (p *Payload) Bytes() []byte {
	return p.data
}
