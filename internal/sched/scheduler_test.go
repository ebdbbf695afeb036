package sched_test

import (
	"context"
	"testing"

	"github.com/xstreamrt/xstreamrt/internal/pool"
	_ "github.com/xstreamrt/xstreamrt/internal/pool/fifo"
	"github.com/xstreamrt/xstreamrt/internal/sched"
	"github.com/xstreamrt/xstreamrt/internal/unit"
	"github.com/xstreamrt/xstreamrt/internal/xstream"
)

type recordingRunner struct {
	order []string
}

func (r *recordingRunner) RunUnit(ctx context.Context, u unit.Unit, sourcePoolIndex int) error {
	label, _ := u.Payload().(string)
	r.order = append(r.order, label)
	return nil
}

func mustPool(t *testing.T, access pool.Access) *pool.Pool {
	t.Helper()
	p, err := pool.NewBasic(pool.FIFO, access)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRunDrainsStrictlyByPriority(t *testing.T) {
	es := xstream.NewID()
	high, mid, low := mustPool(t, pool.PRW), mustPool(t, pool.PRW), mustPool(t, pool.PRW)

	push := func(p *pool.Pool, label string) {
		u := unit.FromTask(label)
		if err := p.Push(es, u); err != nil {
			t.Fatal(err)
		}
	}
	push(low, "low-1")
	push(mid, "mid-1")
	push(high, "high-1")
	push(mid, "mid-2")

	runner := &recordingRunner{}
	stops := 0
	s := sched.New([]*pool.Pool{high, mid, low}, runner,
		sched.WithEventFreq(1),
		sched.WithSleepDisabled(),
		sched.WithHasToStop(func(context.Context, xstream.ID) bool {
			stops++
			return high.GetSize() == 0 && mid.GetSize() == 0 && low.GetSize() == 0
		}),
	)

	if err := s.Run(context.Background(), es); err != nil {
		t.Fatal(err)
	}

	want := []string{"high-1", "mid-1", "mid-2", "low-1"}
	if len(runner.order) != len(want) {
		t.Fatalf("dispatch order = %v, want %v", runner.order, want)
	}
	for i, label := range want {
		if runner.order[i] != label {
			t.Fatalf("dispatch order = %v, want %v", runner.order, want)
		}
	}
}

func TestRunStopsWhenIdleEvenWithNoDispatch(t *testing.T) {
	es := xstream.NewID()
	empty := mustPool(t, pool.PRW)
	runner := &recordingRunner{}

	checks := 0
	s := sched.New([]*pool.Pool{empty}, runner,
		sched.WithEventFreq(1),
		sched.WithSleepDisabled(),
		sched.WithHasToStop(func(context.Context, xstream.ID) bool {
			checks++
			return checks >= 3
		}),
	)

	if err := s.Run(context.Background(), es); err != nil {
		t.Fatal(err)
	}
	if checks < 3 {
		t.Fatalf("has_to_stop called %d times, want at least 3 (idle scheduler must still reach the gate)", checks)
	}
	if len(runner.order) != 0 {
		t.Fatalf("expected no dispatches on an empty pool, got %v", runner.order)
	}
}

func TestRunInvokesCheckEventsAtEveryGate(t *testing.T) {
	es := xstream.NewID()
	empty := mustPool(t, pool.PRW)
	runner := &recordingRunner{}

	var eventChecks int
	stops := 0
	s := sched.New([]*pool.Pool{empty}, runner,
		sched.WithEventFreq(2),
		sched.WithSleepDisabled(),
		sched.WithHasToStop(func(context.Context, xstream.ID) bool {
			stops++
			return stops >= 2
		}),
		sched.WithCheckEvents(func(context.Context, xstream.ID) {
			eventChecks++
		}),
	)

	if err := s.Run(context.Background(), es); err != nil {
		t.Fatal(err)
	}
	if eventChecks != 1 {
		t.Fatalf("check_events called %d times, want 1 (only the surviving gate calls it)", eventChecks)
	}
}

func TestSchedulerEmbedsAsTaskByDefault(t *testing.T) {
	s := sched.New(nil, &recordingRunner{})
	if s.Type() != pool.TypeTask {
		t.Fatalf("Type() = %v, want pool.TypeTask", s.Type())
	}
	u := s.Embed(unit.Task)
	if u.Kind() != unit.Task {
		t.Fatalf("Embed(unit.Task).Kind() = %v, want unit.Task", u.Kind())
	}
}

func TestSchedulerWithULTEmbedsAsThread(t *testing.T) {
	s := sched.New(nil, &recordingRunner{}, sched.WithULT())
	if s.Type() != pool.TypeULT {
		t.Fatalf("Type() = %v, want pool.TypeULT", s.Type())
	}
}

func TestAssociatedStartsFalse(t *testing.T) {
	s := sched.New(nil, &recordingRunner{})
	if s.Associated() {
		t.Fatal("a freshly constructed scheduler must not be associated")
	}
	s.MarkAssociated()
	if !s.Associated() {
		t.Fatal("MarkAssociated must flip Associated")
	}
}
