package pool

import "sync/atomic"

// int32Counter and uint32Counter wrap the std atomics so Pool's
// counter fields (num_scheds, num_migrations) read like plain ints at
// call sites while staying lock-free on the hot path (spec §5).
type int32Counter struct{ v atomic.Int32 }

func (c *int32Counter) load() int32  { return c.v.Load() }
func (c *int32Counter) add(d int32) int32 { return c.v.Add(d) }

// uint32Counter backs num_blocked, which only ever moves by ±1 and
// never needs to go negative.
type uint32Counter struct{ v atomic.Uint32 }

func (c *uint32Counter) load() uint32 { return c.v.Load() }
func (c *uint32Counter) inc()         { c.v.Add(1) }
func (c *uint32Counter) dec() {
	c.v.Add(^uint32(0))
}
