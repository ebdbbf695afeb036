package fifo_test

import (
	"testing"

	"github.com/xstreamrt/xstreamrt/internal/pool"
	_ "github.com/xstreamrt/xstreamrt/internal/pool/fifo"
	"github.com/xstreamrt/xstreamrt/internal/unit"
	"github.com/xstreamrt/xstreamrt/internal/xstream"
)

func TestRegisteredUnderFIFOKind(t *testing.T) {
	if _, err := pool.NewBasic(pool.FIFO, pool.PRW); err != nil {
		t.Fatalf("pool/fifo did not register itself: %v", err)
	}
}

func TestRemoveMiddleElement(t *testing.T) {
	es := xstream.NewID()
	p, err := pool.NewBasic(pool.FIFO, pool.PRW)
	if err != nil {
		t.Fatal(err)
	}

	a, b, c := unit.FromTask(func() {}), unit.FromTask(func() {}), unit.FromTask(func() {})
	for _, u := range []unit.Unit{a, b, c} {
		if err := p.Push(es, u); err != nil {
			t.Fatal(err)
		}
	}
	if err := p.Remove(es, b); err != nil {
		t.Fatalf("remove middle element: %v", err)
	}
	if p.GetSize() != 2 {
		t.Fatalf("GetSize() = %d, want 2", p.GetSize())
	}

	first := p.Pop()
	if first.ID() != a.ID() {
		t.Fatalf("pop order broken: got unit %d, want %d", first.ID(), a.ID())
	}
	second := p.Pop()
	if second.ID() != c.ID() {
		t.Fatalf("pop order broken: got unit %d, want %d", second.ID(), c.ID())
	}
}

func TestRemoveAbsentUnitFails(t *testing.T) {
	es := xstream.NewID()
	p, err := pool.NewBasic(pool.FIFO, pool.PRW)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Remove(es, unit.FromTask(func() {})); err == nil {
		t.Fatal("expected an error removing a unit never pushed")
	}
}

func TestPopEmptyReturnsNull(t *testing.T) {
	p, err := pool.NewBasic(pool.FIFO, pool.PRW)
	if err != nil {
		t.Fatal(err)
	}
	if !p.Pop().IsNull() {
		t.Fatal("Pop on an empty FIFO pool must return the null unit")
	}
}
