// Package fifo provides the built-in first-in-first-out pool vtable,
// the only predefined pool kind spec §4.1 recognizes. It is one
// instance of the user-supplied pool vtable contract (pool.VTable);
// nothing in the pool or sched packages is aware this implementation
// exists beyond that contract.
//
// The container itself is a container/list-backed queue behind a
// sync.Mutex. pool.Pool's own reader/writer memos are a best-effort,
// unsynchronised sanity check (spec §4.2); this container is the
// actual safety net, so a bug in the caller's access-mode bookkeeping
// degrades to lock contention rather than a corrupted queue.
package fifo

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/xstreamrt/xstreamrt/internal/pool"
	"github.com/xstreamrt/xstreamrt/internal/unit"
)

func init() {
	pool.RegisterKind(pool.FIFO, func(pool.Access) (pool.VTable, error) {
		return VTable(), nil
	})
}

type container struct {
	mu    sync.Mutex
	units *list.List
}

// VTable returns a pool.VTable backed by a FIFO container. The
// container is created by Init, so every pool initialised with this
// vtable gets its own queue; share a pool.Pool, not this function's
// return value, to share the queue.
func VTable() pool.VTable {
	return pool.VTable{
		Init: func(p *pool.Pool, _ any) error {
			p.SetData(&container{units: list.New()})
			return nil
		},
		GetSize: func(p *pool.Pool) int {
			c := get(p)
			c.mu.Lock()
			defer c.mu.Unlock()
			return c.units.Len()
		},
		Push: func(p *pool.Pool, u unit.Unit) error {
			c := get(p)
			c.mu.Lock()
			c.units.PushBack(u)
			c.mu.Unlock()
			return nil
		},
		Pop: func(p *pool.Pool) unit.Unit {
			c := get(p)
			c.mu.Lock()
			defer c.mu.Unlock()
			front := c.units.Front()
			if front == nil {
				return unit.Null
			}
			c.units.Remove(front)
			return front.Value.(unit.Unit)
		},
		Remove: func(p *pool.Pool, target unit.Unit) error {
			c := get(p)
			c.mu.Lock()
			defer c.mu.Unlock()
			for e := c.units.Front(); e != nil; e = e.Next() {
				if e.Value.(unit.Unit).ID() == target.ID() {
					c.units.Remove(e)
					return nil
				}
			}
			return fmt.Errorf("fifo: unit %d not present", target.ID())
		},
		Free: func(p *pool.Pool) error {
			p.SetData(nil)
			return nil
		},
	}
}

func get(p *pool.Pool) *container {
	return p.GetData().(*container)
}
