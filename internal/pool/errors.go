package pool

import "errors"

// Sentinel errors corresponding to the error kinds surfaced by the
// core (spec §6.3, §7). Callers use errors.Is against these; the
// wrapping fmt.Errorf at each failure site adds the operation name
// and any relevant detail.
var (
	// ErrMem signals an allocation failure. pool.New also returns it
	// for an incomplete vtable and for a vtable Init that fails.
	ErrMem = errors.New("pool: allocation failure")
	// ErrInvalidPool signals an invalid (nil or already-freed) pool handle.
	ErrInvalidPool = errors.New("pool: invalid pool handle")
	// ErrInvalidPoolKind signals an unrecognized basic pool kind.
	ErrInvalidPoolKind = errors.New("pool: invalid pool kind")
	// ErrInvalidPoolAccess signals an unrecognized access mode, or a
	// reader/writer binding that conflicts with one already recorded.
	ErrInvalidPoolAccess = errors.New("pool: invalid or violated access mode")
	// ErrPool signals a pool-state precondition failure, e.g. add_sched
	// onto a private-reader pool that has no reader bound yet.
	ErrPool = errors.New("pool: precondition failed")
	// ErrSched signals a malformed or unsupported scheduler.
	ErrSched = errors.New("pool: invalid scheduler")
	// ErrUnit signals a malformed unit, e.g. pushing the null unit.
	ErrUnit = errors.New("pool: malformed unit")
)
