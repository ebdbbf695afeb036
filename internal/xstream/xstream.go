// Package xstream models the narrow slice of the execution-stream (ES)
// abstraction that the pool and scheduler cores depend on: a
// comparable ES identity (used as the reader/writer token in pool
// access checks) and the RunUnit contract the scheduler dispatches
// through. Everything else about an ES's lifecycle — creation,
// ABT_xstream_join, main-scheduler installation — is an external
// collaborator per spec §1 and is out of scope here.
package xstream

import (
	"context"

	"github.com/google/uuid"

	"github.com/xstreamrt/xstreamrt/internal/unit"
)

// ID is the comparable identity of an execution stream. It is the
// value stored in a pool's reader/writer fields and compared with ==
// in the access-mode checks.
type ID struct {
	uuid uuid.UUID
}

// Nil is the zero ID, meaning "no ES bound".
var Nil ID

// NewID allocates a fresh ES identity.
func NewID() ID {
	return ID{uuid: uuid.New()}
}

// IsNil reports whether id is the zero/unset identity.
func (id ID) IsNil() bool {
	return id.uuid == uuid.Nil
}

func (id ID) String() string {
	if id.IsNil() {
		return "<nil>"
	}
	return id.uuid.String()
}

// Runner dispatches a unit popped from a pool. This is
// xstream.run_unit from spec §1: the only place a context switch to
// another work unit may happen. Implemented by the owning ES; the
// scheduler core only calls through this interface.
type Runner interface {
	RunUnit(ctx context.Context, u unit.Unit, sourcePoolIndex int) error
}

// RunnerFunc adapts a plain function to a Runner.
type RunnerFunc func(ctx context.Context, u unit.Unit, sourcePoolIndex int) error

func (f RunnerFunc) RunUnit(ctx context.Context, u unit.Unit, sourcePoolIndex int) error {
	return f(ctx, u, sourcePoolIndex)
}

// SchedulerUnit is implemented by a unit payload that is itself a
// stacked scheduler (spec §9's "scheduler as a unit" design note).
// A Runner that dispatches a unit payload satisfying this interface
// should call RunScheduler instead of treating it as ordinary work,
// which is how pool.AddSched starts a scheduler governed by a
// restrictive access mode.
type SchedulerUnit interface {
	RunScheduler(ctx context.Context, es ID) error
}
