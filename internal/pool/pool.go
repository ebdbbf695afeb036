// Package pool implements the work-unit pool core: a polymorphic,
// ref-countable container of runnable units whose concurrency
// discipline is encoded by an Access mode, with auxiliary population
// counters (blocked, migrating) so a consistent "total size" can be
// observed without serialising the hot push/pop path.
//
// # Design rationale
//
// The pool is polymorphic over its container the way
// oriys-nova/internal/pool sharded a VM pool per function: here the
// sharding key is caller choice (one Pool per VTable instance) rather
// than function configuration, but the same discipline applies — the
// hot fields (num_scheds, num_blocked, num_migrations) are plain
// atomics so producers and consumers never take a lock to update them,
// while reader/writer are intentionally *not* atomic: spec-mandated
// "wrong but cheap" first-binder-wins memos that assume a correct
// caller, not a security boundary.
//
// # Concurrency model
//
// - num_scheds, num_blocked, num_migrations: atomic add/sub, any ES.
// - reader, writer: plain reads/writes, first binder wins. A correct
//   caller never races these past the access-mode boundary; an
//   incorrect one gets ErrInvalidPoolAccess on a best-effort basis,
//   not a guarantee.
// - data: opaque to this package; synchronisation is the VTable
//   implementer's responsibility (see pool/fifo for the built-in one).
//
// # Invariants
//
//   - num_scheds never goes negative; Release below zero fails.
//   - GetTotalSize() == VTable.GetSize() + num_blocked + num_migrations.
//   - For PRW, once reader and writer are both set they are equal.
package pool

import (
	"fmt"

	"github.com/xstreamrt/xstreamrt/internal/logging"
	"github.com/xstreamrt/xstreamrt/internal/unit"
	"github.com/xstreamrt/xstreamrt/internal/xstream"
)

// Kind names a predefined pool implementation. Only FIFO exists today
// (spec §4.1): "currently only FIFO".
type Kind int

const (
	// FIFO is the built-in first-in-first-out pool kind.
	FIFO Kind = iota
)

// VTable is the caller-supplied operation set a pool delegates its
// container operations to (spec §6.1, minus the unit adapters: those
// are generic and live on unit.Unit itself, since Go's closed Kind
// enum makes a per-implementation function pointer for
// unit_get_type/unit_get_thread/... redundant).
//
// Init is optional; the rest must be non-nil for New to succeed. Push
// must be non-blocking for the scheduler loop to make progress, but
// that is a contract on the implementation, not something this
// package can enforce.
type VTable struct {
	Init    func(p *Pool, config any) error
	GetSize func(p *Pool) int
	Push    func(p *Pool, u unit.Unit) error
	Pop     func(p *Pool) unit.Unit
	Remove  func(p *Pool, u unit.Unit) error
	Free    func(p *Pool) error
}

func (v VTable) valid() bool {
	return v.GetSize != nil && v.Push != nil && v.Pop != nil && v.Remove != nil && v.Free != nil
}

// Pool is the tuple described in spec §3.1.
type Pool struct {
	access Access
	// automatic is true when the pool was created via NewBasic and is
	// owned by whatever scheduler it gets attached to.
	automatic bool

	numScheds     int32Counter
	numBlocked    uint32Counter
	numMigrations int32Counter

	// reader/writer: first-binder-wins memos, intentionally racy
	// (spec §4.2). Never promote these to a mutex or atomic.Value; a
	// stricter build should add a debug-mode assertion layer instead.
	reader xstream.ID
	writer xstream.ID

	vtable VTable
	data   any
}

// Null is the POOL_NULL sentinel.
var Null *Pool

// New is the custom-construction entry point (ABT_pool_create): it
// takes a caller-supplied VTable plus an opaque config and yields a
// pool with automatic=false and both reader/writer unset.
func New(access Access, vtable VTable, config any) (*Pool, error) {
	if !access.Valid() {
		return nil, fmt.Errorf("pool.New: %w: %v", ErrInvalidPoolAccess, access)
	}
	if !vtable.valid() {
		return nil, fmt.Errorf("pool.New: %w: incomplete vtable", ErrMem)
	}

	p := &Pool{
		access: access,
		vtable: vtable,
	}

	if vtable.Init != nil {
		if err := vtable.Init(p, config); err != nil {
			logging.Op().Error("pool init failed", "op", "pool.New", "error", err)
			return nil, fmt.Errorf("pool.New: %w: %v", ErrMem, err)
		}
	}

	return p, nil
}

// NewBasic is ABT_pool_create_basic: it selects a predefined vtable
// for kind (registered via RegisterKind, e.g. by importing pool/fifo
// for side effects), delegates to New, then marks the pool automatic.
//
// On failure this returns Null (POOL_NULL), not a SCHED_NULL-shaped
// value — the original ABT_pool_create_basic writes ABT_SCHED_NULL
// into *newpool on this path, which spec §9 records as a source bug
// this reimplementation does not reproduce.
func NewBasic(kind Kind, access Access) (*Pool, error) {
	factory, ok := lookupKind(kind)
	if !ok {
		return Null, fmt.Errorf("pool.NewBasic: %w: %v", ErrInvalidPoolKind, kind)
	}

	vtable, err := factory(access)
	if err != nil {
		logging.Op().Error("pool init failed", "op", "pool.NewBasic", "kind", kind, "error", err)
		return Null, fmt.Errorf("pool.NewBasic: %w", err)
	}

	p, err := New(access, vtable, nil)
	if err != nil {
		return Null, err
	}
	p.automatic = true
	return p, nil
}

// Free validates the handle, invokes VTable.Free, and nulls *pp. This
// takes a pointer-to-pointer, the idiomatic Go stand-in for the
// original's "modify the caller's handle to ABT_POOL_NULL" out
// parameter.
func Free(pp **Pool) error {
	if pp == nil || *pp == nil {
		return fmt.Errorf("pool.Free: %w", ErrInvalidPool)
	}
	p := *pp
	if err := p.vtable.Free(p); err != nil {
		logging.Op().Error("pool free failed", "op", "pool.Free", "error", err)
		return fmt.Errorf("pool.Free: %w", err)
	}
	*pp = nil
	return nil
}

// Access returns the pool's access mode.
func (p *Pool) Access() Access { return p.access }

// Automatic reports whether the pool is managed by (and freed with)
// its scheduler.
func (p *Pool) Automatic() bool { return p.automatic }

// NumScheds returns the current scheduler reference count.
func (p *Pool) NumScheds() int32 { return p.numScheds.load() }

// Reader returns the ES currently bound as reader, or xstream.Nil.
func (p *Pool) Reader() xstream.ID { return p.reader }

// Writer returns the ES currently bound as writer, or xstream.Nil.
func (p *Pool) Writer() xstream.ID { return p.writer }

// Retain increments num_scheds (ABTI_pool_retain).
func (p *Pool) Retain() {
	p.numScheds.add(1)
}

// Release decrements num_scheds (ABTI_pool_release). It fails with
// ErrInvalidPool if num_scheds would go negative.
func (p *Pool) Release() error {
	if p.numScheds.load() <= 0 {
		return fmt.Errorf("pool.Release: %w", ErrInvalidPool)
	}
	p.numScheds.add(-1)
	return nil
}

// SetData stores the caller's opaque pointer. Passthrough, no
// synchronisation: the vtable implementer owns this field.
func (p *Pool) SetData(v any) { p.data = v }

// GetData retrieves the opaque pointer previously stored with SetData.
func (p *Pool) GetData() any { return p.data }

// String implements fmt.Stringer, reproducing ABTI_pool_print's field
// order for debug introspection (spec §12 supplement).
func (p *Pool) String() string {
	if p == nil {
		return "pool<nil>"
	}
	reader := "<nil>"
	if !p.reader.IsNil() {
		reader = p.reader.String()
	}
	writer := "<nil>"
	if !p.writer.IsNil() {
		writer = p.writer.String()
	}
	return fmt.Sprintf(
		"pool{access=%s automatic=%t num_scheds=%d reader=%s writer=%s num_blocked=%d size=%d}",
		p.access, p.automatic, p.numScheds.load(), reader, writer, p.numBlocked.load(), p.vtable.GetSize(p),
	)
}
