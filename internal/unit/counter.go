package unit

import "sync/atomic"

// atomicCounter hands out unique, non-zero unit identities so units
// can be told apart by ID() without comparing payloads, while Null
// stays the zero value.
type atomicCounter struct {
	n atomic.Uint64
}

func (c *atomicCounter) next() uint64 {
	return c.n.Add(1)
}
