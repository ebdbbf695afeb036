package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xstreamrt/xstreamrt/internal/pool"
	_ "github.com/xstreamrt/xstreamrt/internal/pool/fifo"
	"github.com/xstreamrt/xstreamrt/internal/sched"
	"github.com/xstreamrt/xstreamrt/internal/unit"
	"github.com/xstreamrt/xstreamrt/internal/xstream"
)

// funcRunner dispatches a unit whose payload is a plain func(), the
// shape every demo scenario below uses for its work items. A real
// embedder's Runner would instead know how to resume its own
// thread/task representation; see xstream.Runner's doc comment.
type funcRunner struct{}

func (funcRunner) RunUnit(ctx context.Context, u unit.Unit, sourcePoolIndex int) error {
	if su, ok := u.Payload().(xstream.SchedulerUnit); ok {
		return su.RunScheduler(ctx, xstream.NewID())
	}
	fn, ok := u.Payload().(func())
	if !ok {
		return fmt.Errorf("demo: unit %d has unrunnable payload", u.ID())
	}
	fn()
	return nil
}

func demoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "demo [scenario]",
		Short:     "Run one of the scheduler/pool core's reference scenarios",
		ValidArgs: []string{"fifo", "access-violation", "priority", "addsched", "addsched-reject", "migration"},
		Args:      cobra.ExactValidArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "fifo":
				return demoFIFO()
			case "access-violation":
				return demoAccessViolation()
			case "priority":
				return demoPriority()
			case "addsched":
				return demoAddSched()
			case "addsched-reject":
				return demoAddSchedReject()
			case "migration":
				return demoMigration()
			}
			return fmt.Errorf("unknown scenario %q", args[0])
		},
	}
	return cmd
}

// demoFIFO is scenario S1: push three units onto a PRW FIFO pool from
// its bound ES and pop them back in order.
func demoFIFO() error {
	es := xstream.NewID()
	p, err := pool.NewBasic(pool.FIFO, pool.PRW)
	if err != nil {
		return err
	}

	for i := 1; i <= 3; i++ {
		n := i
		if err := p.Push(es, unit.FromTask(func() { fmt.Printf("unit %d ran\n", n) })); err != nil {
			return err
		}
	}

	for {
		u := p.Pop()
		if u.IsNull() {
			break
		}
		if err := (funcRunner{}).RunUnit(context.Background(), u, 0); err != nil {
			return err
		}
	}
	fmt.Println("S1 fifo: ok, final size", p.GetSize())
	return nil
}

// demoAccessViolation is scenario S2: a second ES pushing onto a PRW
// pool whose writer is already bound gets ErrInvalidPoolAccess.
func demoAccessViolation() error {
	esA := xstream.NewID()
	esB := xstream.NewID()
	p, err := pool.NewBasic(pool.FIFO, pool.PRW)
	if err != nil {
		return err
	}

	if err := p.Push(esA, unit.FromTask(func() {})); err != nil {
		return err
	}
	err = p.Push(esB, unit.FromTask(func() {}))
	if err == nil {
		return fmt.Errorf("S2 access-violation: expected an error, got nil")
	}
	fmt.Println("S2 access-violation: got expected error:", err)
	return nil
}

// demoPriority is scenario S3: a priority scheduler with three pools
// drains strictly in priority order, only consulting a lower-priority
// pool once every higher one reports empty in the same pass.
func demoPriority() error {
	es := xstream.NewID()
	high, _ := pool.NewBasic(pool.FIFO, pool.PRW)
	mid, _ := pool.NewBasic(pool.FIFO, pool.PRW)
	low, _ := pool.NewBasic(pool.FIFO, pool.PRW)

	var order []string
	push := func(p *pool.Pool, name string) {
		p.Push(es, unit.FromTask(func() { order = append(order, name) }))
	}
	push(low, "low-1")
	push(mid, "mid-1")
	push(high, "high-1")
	push(mid, "mid-2")

	stopAfter := 4
	s := sched.New([]*pool.Pool{high, mid, low}, funcRunner{},
		sched.WithEventFreq(1),
		sched.WithSleepDisabled(),
		sched.WithHasToStop(func(context.Context, xstream.ID) bool {
			stopAfter--
			return stopAfter <= 0 && high.GetSize() == 0 && mid.GetSize() == 0 && low.GetSize() == 0
		}),
	)

	if err := s.Run(context.Background(), es); err != nil {
		return err
	}
	fmt.Println("S3 priority: dispatch order:", order)
	return nil
}

// demoAddSched is scenario S4: stacking a task-type scheduler onto a
// PRW host pool propagates the host's bound reader to the stacked
// scheduler's own pool, then the host's drain enters the stacked loop.
func demoAddSched() error {
	host := xstream.NewID()
	hostPool, _ := pool.NewBasic(pool.FIFO, pool.PRW)
	// Bind host's reader by popping once (a no-op pop still does not
	// bind reader per spec, so bind explicitly via Remove's check path
	// instead: push one throwaway unit and Remove it).
	placeholder := unit.FromTask(func() {})
	if err := hostPool.Push(host, placeholder); err != nil {
		return err
	}
	if err := hostPool.Remove(host, placeholder); err != nil {
		return err
	}

	nestedPool, _ := pool.NewBasic(pool.FIFO, pool.PRW)
	ran := false
	nestedPool.Push(host, unit.FromTask(func() { ran = true }))

	calls := 0
	nested := sched.New([]*pool.Pool{nestedPool}, funcRunner{},
		sched.WithEventFreq(1),
		sched.WithSleepDisabled(),
		sched.WithHasToStop(func(context.Context, xstream.ID) bool {
			calls++
			return calls > 1
		}),
	)

	if err := hostPool.AddSched(host, nested); err != nil {
		return err
	}
	fmt.Println("S4 addsched: nested pool reader propagated:", nestedPool.Reader())

	u := hostPool.Pop()
	if err := (funcRunner{}).RunUnit(context.Background(), u, 0); err != nil {
		return err
	}
	fmt.Println("S4 addsched: nested unit ran:", ran)
	return nil
}

// demoAddSchedReject is scenario S5: a shared-reader host cannot stack
// a scheduler owning a private-reader pool.
func demoAddSchedReject() error {
	host := xstream.NewID()
	hostPool, _ := pool.NewBasic(pool.FIFO, pool.SR_PW)
	nestedPool, _ := pool.NewBasic(pool.FIFO, pool.PRW)
	nested := sched.New([]*pool.Pool{nestedPool}, funcRunner{})

	err := hostPool.AddSched(host, nested)
	if err == nil {
		return fmt.Errorf("S5 addsched-reject: expected an error, got nil")
	}
	fmt.Println("S5 addsched-reject: got expected error:", err)
	return nil
}

// demoMigration is scenario S6: a unit may migrate from src into dst
// only when dst's bound reader is the ES currently writing src.
func demoMigration() error {
	es := xstream.NewID()
	src, _ := pool.NewBasic(pool.FIFO, pool.PRW)
	dst, _ := pool.NewBasic(pool.FIFO, pool.PRW)

	u := unit.FromTask(func() {})
	if err := src.Push(es, u); err != nil {
		return err
	}

	fmt.Println("S6 migration, before dst has a reader:", pool.AcceptMigration(dst, src))

	placeholder := unit.FromTask(func() {})
	dst.Push(es, placeholder)
	dst.Remove(es, placeholder)

	accepted := pool.AcceptMigration(dst, src)
	fmt.Println("S6 migration, after dst reader == src writer:", accepted)
	if accepted {
		dst.IncNumMigrations()
		if err := src.Remove(es, u); err != nil {
			return err
		}
		if err := dst.Push(es, u); err != nil {
			return err
		}
		dst.DecNumMigrations()
	}
	fmt.Println("S6 migration: src size", src.GetSize(), "dst size", dst.GetSize())
	return nil
}
