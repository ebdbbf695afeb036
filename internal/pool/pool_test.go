package pool_test

import (
	"errors"
	"testing"

	"github.com/xstreamrt/xstreamrt/internal/pool"
	_ "github.com/xstreamrt/xstreamrt/internal/pool/fifo"
	"github.com/xstreamrt/xstreamrt/internal/unit"
	"github.com/xstreamrt/xstreamrt/internal/xstream"
)

func TestNewBasicUnknownKind(t *testing.T) {
	p, err := pool.NewBasic(pool.Kind(99), pool.PRW)
	if !errors.Is(err, pool.ErrInvalidPoolKind) {
		t.Fatalf("got err %v, want ErrInvalidPoolKind", err)
	}
	if p != pool.Null {
		t.Fatalf("got pool %v, want Null on failure", p)
	}
}

func TestPushPopFIFOOrder(t *testing.T) {
	es := xstream.NewID()
	p, err := pool.NewBasic(pool.FIFO, pool.PRW)
	if err != nil {
		t.Fatal(err)
	}

	var got []int
	for i := 0; i < 3; i++ {
		n := i
		if err := p.Push(es, unit.FromTask(func() { got = append(got, n) })); err != nil {
			t.Fatal(err)
		}
	}
	if p.GetSize() != 3 {
		t.Fatalf("GetSize() = %d, want 3", p.GetSize())
	}
	for i := 0; i < 3; i++ {
		u := p.Pop()
		if u.IsNull() {
			t.Fatalf("pop %d: unexpected null unit", i)
		}
		u.Payload().(func())()
	}
	if !p.Pop().IsNull() {
		t.Fatal("pop on empty pool: expected null unit")
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("dispatch order = %v, want 0,1,2", got)
		}
	}
}

func TestPushNullUnitFails(t *testing.T) {
	es := xstream.NewID()
	p, err := pool.NewBasic(pool.FIFO, pool.PRW)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Push(es, unit.Null); !errors.Is(err, pool.ErrUnit) {
		t.Fatalf("got err %v, want ErrUnit", err)
	}
}

func TestPRWRejectsSecondWriter(t *testing.T) {
	esA, esB := xstream.NewID(), xstream.NewID()
	p, err := pool.NewBasic(pool.FIFO, pool.PRW)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Push(esA, unit.FromTask(func() {})); err != nil {
		t.Fatal(err)
	}
	if err := p.Push(esB, unit.FromTask(func() {})); !errors.Is(err, pool.ErrInvalidPoolAccess) {
		t.Fatalf("got err %v, want ErrInvalidPoolAccess", err)
	}
}

func TestPRWFallthroughChecksBothRoles(t *testing.T) {
	esReader, esOther := xstream.NewID(), xstream.NewID()
	p, err := pool.NewBasic(pool.FIFO, pool.PRW)
	if err != nil {
		t.Fatal(err)
	}
	// Bind reader via Remove on an empty pool (vtable reports "not
	// present", reader binding still happens first).
	_ = p.Remove(esReader, unit.FromTask(func() {}))

	// A PRW pool's writer must equal its bound reader too: pushing
	// from a different ES must fail even though writer was never
	// explicitly set yet.
	if err := p.Push(esOther, unit.FromTask(func() {})); !errors.Is(err, pool.ErrInvalidPoolAccess) {
		t.Fatalf("got err %v, want ErrInvalidPoolAccess (PRW fallthrough)", err)
	}
	if err := p.Push(esReader, unit.FromTask(func() {})); err != nil {
		t.Fatalf("push from bound reader should succeed, got %v", err)
	}
}

func TestSharedReaderAllowsMultipleReaders(t *testing.T) {
	es1, es2 := xstream.NewID(), xstream.NewID()
	p, err := pool.NewBasic(pool.FIFO, pool.SR_PW)
	if err != nil {
		t.Fatal(err)
	}
	u := unit.FromTask(func() {})
	if err := p.Push(es1, u); err != nil {
		t.Fatal(err)
	}
	if err := p.Remove(es1, u); err != nil {
		t.Fatalf("remove as reader 1: %v", err)
	}
	if p.Reader() != es1 {
		t.Fatalf("reader = %v, want es1", p.Reader())
	}
	// es2 may also bind as reader: shared-reader pools overwrite the
	// memo rather than rejecting a different ES.
	if err := p.Remove(es2, unit.FromTask(func() {})); err == nil {
		t.Fatal("expected 'not present' error from the fifo container, not an access violation")
	}
	if p.Reader() != es2 {
		t.Fatalf("reader = %v, want es2 after overwrite", p.Reader())
	}
}

func TestGetTotalSizeInvariant(t *testing.T) {
	p, err := pool.NewBasic(pool.FIFO, pool.PRW)
	if err != nil {
		t.Fatal(err)
	}
	es := xstream.NewID()
	if err := p.Push(es, unit.FromTask(func() {})); err != nil {
		t.Fatal(err)
	}
	p.IncNumBlocked()
	p.IncNumMigrations()
	want := p.GetSize() + int(p.NumBlocked()) + int(p.NumMigrations())
	if got := p.GetTotalSize(); got != want {
		t.Fatalf("GetTotalSize() = %d, want %d", got, want)
	}
	if want != 3 {
		t.Fatalf("want = %d, expected 1 (size) + 1 (blocked) + 1 (migrating) = 3", want)
	}
}

func TestReleaseBelowZeroFails(t *testing.T) {
	p, err := pool.NewBasic(pool.FIFO, pool.PRW)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Release(); !errors.Is(err, pool.ErrInvalidPool) {
		t.Fatalf("got err %v, want ErrInvalidPool", err)
	}
	p.Retain()
	if err := p.Release(); err != nil {
		t.Fatalf("release after retain: %v", err)
	}
}

func TestAcceptMigration(t *testing.T) {
	es := xstream.NewID()
	src, err := pool.NewBasic(pool.FIFO, pool.PRW)
	if err != nil {
		t.Fatal(err)
	}
	dst, err := pool.NewBasic(pool.FIFO, pool.PRW)
	if err != nil {
		t.Fatal(err)
	}
	if err := src.Push(es, unit.FromTask(func() {})); err != nil {
		t.Fatal(err)
	}
	if pool.AcceptMigration(dst, src) {
		t.Fatal("dst with no bound reader should reject migration")
	}
	_ = dst.Remove(es, unit.FromTask(func() {}))
	if !pool.AcceptMigration(dst, src) {
		t.Fatal("dst.reader == src.writer should accept migration")
	}
}

func TestAcceptMigrationSharedWriterAlwaysAccepts(t *testing.T) {
	src, err := pool.NewBasic(pool.FIFO, pool.PRW)
	if err != nil {
		t.Fatal(err)
	}
	dst, err := pool.NewBasic(pool.FIFO, pool.PR_SW)
	if err != nil {
		t.Fatal(err)
	}
	if !pool.AcceptMigration(dst, src) {
		t.Fatal("shared-writer destination should always accept")
	}
}

func TestAddSchedPropagatesReaderOnPrivateReaderHost(t *testing.T) {
	host := xstream.NewID()
	hostPool, err := pool.NewBasic(pool.FIFO, pool.PRW)
	if err != nil {
		t.Fatal(err)
	}
	_ = hostPool.Remove(host, unit.FromTask(func() {}))

	nestedPool, err := pool.NewBasic(pool.FIFO, pool.PRW)
	if err != nil {
		t.Fatal(err)
	}
	nested := &fakeSchedulable{pools: []*pool.Pool{nestedPool}, typ: pool.TypeTask}

	if err := hostPool.AddSched(host, nested); err != nil {
		t.Fatal(err)
	}
	if nestedPool.Reader() != host {
		t.Fatalf("nested pool reader = %v, want host ES %v", nestedPool.Reader(), host)
	}
	if !nested.associated {
		t.Fatal("AddSched must mark the scheduler associated")
	}
	if nested.attached.IsNull() {
		t.Fatal("AddSched must attach the embedded unit handle")
	}
}

func TestAddSchedRejectsPrivateReaderUnderSharedReaderHost(t *testing.T) {
	host := xstream.NewID()
	hostPool, err := pool.NewBasic(pool.FIFO, pool.SR_PW)
	if err != nil {
		t.Fatal(err)
	}
	nestedPool, err := pool.NewBasic(pool.FIFO, pool.PRW)
	if err != nil {
		t.Fatal(err)
	}
	nested := &fakeSchedulable{pools: []*pool.Pool{nestedPool}, typ: pool.TypeTask}

	if err := hostPool.AddSched(host, nested); !errors.Is(err, pool.ErrPool) {
		t.Fatalf("got err %v, want ErrPool", err)
	}
}

type fakeSchedulable struct {
	pools      []*pool.Pool
	typ        pool.SchedType
	associated bool
	attached   unit.Unit
}

func (f *fakeSchedulable) Pools() []*pool.Pool         { return f.pools }
func (f *fakeSchedulable) Type() pool.SchedType        { return f.typ }
func (f *fakeSchedulable) MarkAssociated()             { f.associated = true }
func (f *fakeSchedulable) Embed(k unit.Kind) unit.Unit { return unit.FromTask(f) }
func (f *fakeSchedulable) Attach(u unit.Unit)          { f.attached = u }
