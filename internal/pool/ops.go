package pool

import (
	"fmt"

	"github.com/xstreamrt/xstreamrt/internal/logging"
	"github.com/xstreamrt/xstreamrt/internal/unit"
	"github.com/xstreamrt/xstreamrt/internal/xstream"
)

// Push enqueues u, binding the pool's writer to es first (spec §4.3).
// Fails with ErrUnit if u is the null unit, or ErrInvalidPoolAccess if
// the writer binding conflicts with a previously bound ES.
func (p *Pool) Push(es xstream.ID, u unit.Unit) error {
	if u.IsNull() {
		return fmt.Errorf("pool.Push: %w", ErrUnit)
	}
	if err := p.setWriter(es); err != nil {
		logging.Op().Error("pool push failed", "op", "pool.Push", "access", p.access, "error", err)
		return fmt.Errorf("pool.Push: %w", err)
	}
	return p.vtable.Push(p, u)
}

// Pop dequeues a unit, or returns unit.Null if the pool is empty. Per
// spec §4.3 this does not bind reader: the scheduler runs on the
// pool's reader by construction (see sched.Scheduler.Run).
func (p *Pool) Pop() unit.Unit {
	return p.vtable.Pop(p)
}

// Remove excises a specific unit, binding reader first.
func (p *Pool) Remove(es xstream.ID, u unit.Unit) error {
	if err := p.setReader(es); err != nil {
		logging.Op().Error("pool remove failed", "op", "pool.Remove", "access", p.access, "error", err)
		return fmt.Errorf("pool.Remove: %w", err)
	}
	if err := p.vtable.Remove(p, u); err != nil {
		return fmt.Errorf("pool.Remove: %w", err)
	}
	return nil
}

// GetSize returns the container's own population.
func (p *Pool) GetSize() int {
	return p.vtable.GetSize(p)
}

// GetTotalSize returns GetSize() + num_blocked + num_migrations
// (invariant I5 — the only supported definition of "total population").
func (p *Pool) GetTotalSize() int {
	return p.vtable.GetSize(p) + int(p.numBlocked.load()) + int(p.numMigrations.load())
}

// NumBlocked returns the current blocked-unit count.
func (p *Pool) NumBlocked() uint32 { return p.numBlocked.load() }

// NumMigrations returns the current in-flight-migration count.
func (p *Pool) NumMigrations() int32 { return p.numMigrations.load() }

// IncNumBlocked marks one more unit as logically belonging to this
// pool but suspended elsewhere (e.g. blocked on a synchroniser).
func (p *Pool) IncNumBlocked() { p.numBlocked.inc() }

// DecNumBlocked marks a previously blocked unit as back in the pool.
func (p *Pool) DecNumBlocked() { p.numBlocked.dec() }

// IncNumMigrations marks one unit as in flight toward this pool.
func (p *Pool) IncNumMigrations() { p.numMigrations.add(1) }

// DecNumMigrations marks an in-flight migration as complete.
func (p *Pool) DecNumMigrations() { p.numMigrations.add(-1) }
