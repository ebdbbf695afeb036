// Package sched implements the priority scheduler (spec §4.6): a
// non-yielding driver that drains an ordered list of pools by strict
// priority, interleaving bookkeeping at a configurable cadence, and
// that can stack itself onto a host pool via pool.AddSched.
//
// Grounded on the original ABTI_sched_get_prio_def / sched_run in
// _examples/original_source/src/sched/prio.c, restructured around an
// injected xstream.Runner instead of thread-local ES lookup — Go has
// no ABTI_local_get_xstream() equivalent, so the ES identity and the
// run_unit callback are passed in explicitly rather than fetched from
// goroutine-local state.
package sched

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xstreamrt/xstreamrt/internal/logging"
	"github.com/xstreamrt/xstreamrt/internal/pool"
	"github.com/xstreamrt/xstreamrt/internal/unit"
	"github.com/xstreamrt/xstreamrt/internal/xstream"
)

// HasToStopFunc reports whether the scheduler loop should terminate.
// Checked at every housekeeping gate (spec §4.6 step 2); the loop has
// no other way to observe cancellation (spec §5).
type HasToStopFunc func(ctx context.Context, es xstream.ID) bool

// CheckEventsFunc performs the scheduler's periodic event-polling
// housekeeping, e.g. draining an events.Source.
type CheckEventsFunc func(ctx context.Context, es xstream.ID)

// Scheduler is the priority variant of spec §3.3: pools[0] is highest
// priority, pool index n-1 is lowest, and a lower-priority pool is
// only ever consulted once every higher-priority pool popped
// unit.Null in the same drain pass.
type Scheduler struct {
	pools  []*pool.Pool
	typ    pool.SchedType
	cfg    Config
	runner xstream.Runner

	hasToStop   HasToStopFunc
	checkEvents CheckEventsFunc

	associated atomic.Bool

	mu     sync.Mutex
	thread unit.Unit
	task   unit.Unit
}

// New builds a priority scheduler over pools (index 0 highest
// priority) that dispatches through runner. By default it embeds as a
// task when stacked (pool.TypeTask, matching the original's
// ABT_SCHED_TYPE_TASK); pass WithULT to change that.
func New(pools []*pool.Pool, runner xstream.Runner, opts ...Option) *Scheduler {
	s := &Scheduler{
		pools:  append([]*pool.Pool(nil), pools...),
		typ:    pool.TypeTask,
		cfg:    DefaultConfig(),
		runner: runner,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pools implements pool.Schedulable.
func (s *Scheduler) Pools() []*pool.Pool { return s.pools }

// Type implements pool.Schedulable.
func (s *Scheduler) Type() pool.SchedType { return s.typ }

// MarkAssociated implements pool.Schedulable (IN_POOL).
func (s *Scheduler) MarkAssociated() { s.associated.Store(true) }

// Associated reports whether the scheduler has been stacked onto a
// host pool via pool.AddSched.
func (s *Scheduler) Associated() bool { return s.associated.Load() }

// Embed implements pool.Schedulable: it wraps the scheduler itself as
// the unit payload. Any xstream.Runner that recognizes the
// xstream.SchedulerUnit interface (s.RunScheduler) will enter s.Run
// when it dispatches the resulting unit — see the "Scheduler as a
// unit" design note in spec §9.
func (s *Scheduler) Embed(kind unit.Kind) unit.Unit {
	if kind == unit.Task {
		return unit.FromTask(s)
	}
	return unit.FromThread(s)
}

// Attach implements pool.Schedulable, recording the handle AddSched
// produced.
func (s *Scheduler) Attach(u unit.Unit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.typ == pool.TypeULT {
		s.thread = u
	} else {
		s.task = u
	}
}

// RunScheduler implements xstream.SchedulerUnit so a host pool's
// runner can recognize and enter this scheduler's loop when it
// dispatches the unit produced by Embed.
func (s *Scheduler) RunScheduler(ctx context.Context, es xstream.ID) error {
	return s.Run(ctx, es)
}

// Run is the scheduler loop (spec §4.6), driven single-threaded and
// cooperatively by es. It snapshots pools once at entry — a pool set
// change made during execution (e.g. a nested AddSched) only takes
// effect the next time Run is called, never mid-loop.
func (s *Scheduler) Run(ctx context.Context, es xstream.ID) error {
	pools := append([]*pool.Pool(nil), s.pools...)
	eventFreq := s.cfg.EventFreq
	if eventFreq == 0 {
		eventFreq = DefaultEventFreq
	}

	var workCount uint32
	for {
		dispatched := false
		for i, p := range pools {
			u := p.Pop()
			if u.IsNull() {
				continue
			}
			if err := s.runner.RunUnit(ctx, u, i); err != nil {
				logging.Op().Warn("run_unit failed", "op", "sched.Run", "pool_index", i, "error", err)
			}
			dispatched = true
			break
		}

		// The gate is reached on every pass, dispatch or not — an
		// idle scheduler must still periodically observe
		// has_to_stop, which is the only way its loop can ever
		// terminate (spec §5). This follows prio.c's unconditional
		// `if (++work_count >= event_freq)` rather than spec.md's
		// looser two-step phrasing; see DESIGN.md.
		workCount++
		if workCount >= eventFreq {
			if s.hasToStop != nil && s.hasToStop(ctx, es) {
				return nil
			}
			workCount = 0
			if s.checkEvents != nil {
				s.checkEvents(ctx, es)
			}
			if !dispatched && s.cfg.SleepEnabled {
				time.Sleep(s.cfg.SleepTime)
			}
		}
	}
}

// Free releases scheduler-private state. There is no heap block to
// return to an allocator in Go, but Free still detaches the hooks and
// pool list. A Scheduler that is Run after Free has no pools to drain
// and no has_to_stop hook, so that Run never returns.
func (s *Scheduler) Free() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pools = nil
	s.hasToStop = nil
	s.checkEvents = nil
}
