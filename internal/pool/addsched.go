package pool

import (
	"fmt"

	"github.com/xstreamrt/xstreamrt/internal/logging"
	"github.com/xstreamrt/xstreamrt/internal/unit"
	"github.com/xstreamrt/xstreamrt/internal/xstream"
)

// SchedType says whether a stacked scheduler embeds as a ULT (its own
// stack, can yield) or a task (one-shot on the host ES).
type SchedType int

const (
	// TypeTask is the default: the scheduler loop itself never
	// yields, matching the original priority scheduler's hard-coded
	// ABT_SCHED_TYPE_TASK (spec §12 supplement).
	TypeTask SchedType = iota
	// TypeULT embeds the scheduler loop as a yielding thread.
	TypeULT
)

// Schedulable is the narrow surface AddSched needs from a scheduler:
// just enough to propagate reader identity to the scheduler's own
// pools and to stack its run loop as a unit on the host pool. sched.Scheduler
// implements this; pool never imports the sched package.
type Schedulable interface {
	// Pools returns the scheduler's own ordered pool list.
	Pools() []*Pool
	// Type reports how the scheduler should be embedded when stacked.
	Type() SchedType
	// MarkAssociated records that the scheduler is now IN_POOL.
	MarkAssociated()
	// Embed wraps the scheduler's run loop as a Unit of the given
	// kind, for AddSched to push onto the host pool.
	Embed(kind unit.Kind) unit.Unit
	// Attach records the handle AddSched produced (sched.thread or
	// sched.task, depending on Type()).
	Attach(u unit.Unit)
}

// AddSched stacks sched onto the host pool p, so that whichever ES
// drains p picks up and starts executing sched's loop (spec §4.5).
// by is the ES performing the stacking call.
//
// This is the only mechanism that lets an access-restricted scheduler
// pool (e.g. PR_PW) be fed an initial unit by an ES that is not its
// own reader/writer.
func (p *Pool) AddSched(by xstream.ID, sched Schedulable) error {
	if p == nil {
		return fmt.Errorf("pool.AddSched: %w", ErrInvalidPool)
	}
	if sched == nil {
		return fmt.Errorf("pool.AddSched: %w", ErrSched)
	}

	switch {
	case p.access.privateReader():
		if p.reader.IsNil() {
			return fmt.Errorf("pool.AddSched: %w: host pool has no reader bound", ErrPool)
		}
		for _, nested := range sched.Pools() {
			if err := nested.setReader(p.reader); err != nil {
				logging.Op().Error("add_sched reader propagation failed", "op", "pool.AddSched", "error", err)
				return fmt.Errorf("pool.AddSched: %w", err)
			}
		}
	case p.access == SR_PW || p.access == SR_SW:
		for _, nested := range sched.Pools() {
			if nested.access.privateReader() {
				return fmt.Errorf("pool.AddSched: %w: shared-reader host cannot stack a private-reader pool", ErrPool)
			}
		}
	default:
		return fmt.Errorf("pool.AddSched: %w: %v", ErrInvalidPoolAccess, p.access)
	}

	sched.MarkAssociated()

	switch sched.Type() {
	case TypeULT:
		u := sched.Embed(unit.Thread)
		if err := p.Push(by, u); err != nil {
			return fmt.Errorf("pool.AddSched: %w", err)
		}
		sched.Attach(u)
	case TypeTask:
		u := sched.Embed(unit.Task)
		if err := p.Push(by, u); err != nil {
			return fmt.Errorf("pool.AddSched: %w", err)
		}
		sched.Attach(u)
	default:
		return fmt.Errorf("pool.AddSched: %w: unknown scheduler type", ErrSched)
	}

	return nil
}
