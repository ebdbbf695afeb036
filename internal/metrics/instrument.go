package metrics

import (
	"context"
	"strconv"

	"github.com/xstreamrt/xstreamrt/internal/pool"
	"github.com/xstreamrt/xstreamrt/internal/sched"
	"github.com/xstreamrt/xstreamrt/internal/unit"
	"github.com/xstreamrt/xstreamrt/internal/xstream"
)

// InstrumentRunner wraps r so every dispatch increments Dispatched,
// labeled by the priority index of the pool it came from.
func (m *Registry) InstrumentRunner(r xstream.Runner) xstream.Runner {
	return xstream.RunnerFunc(func(ctx context.Context, u unit.Unit, sourcePoolIndex int) error {
		m.Dispatched.WithLabelValues(strconv.Itoa(sourcePoolIndex)).Inc()
		return r.RunUnit(ctx, u, sourcePoolIndex)
	})
}

// InstrumentHasToStop wraps a HasToStopFunc to count invocations.
func (m *Registry) InstrumentHasToStop(f sched.HasToStopFunc) sched.HasToStopFunc {
	return func(ctx context.Context, es xstream.ID) bool {
		m.StopChecks.Inc()
		m.Housekeeping.Inc()
		if f == nil {
			return false
		}
		return f(ctx, es)
	}
}

// Sample snapshots a named pool's population gauges. Call this from a
// CheckEventsFunc or a periodic goroutine; it is not on the pool's hot
// path.
func (m *Registry) Sample(name string, p *pool.Pool) {
	m.PoolSize.WithLabelValues(name).Set(float64(p.GetSize()))
	m.PoolBlocked.WithLabelValues(name).Set(float64(p.NumBlocked()))
	m.PoolMigrations.WithLabelValues(name).Set(float64(p.NumMigrations()))
	m.PoolScheds.WithLabelValues(name).Set(float64(p.NumScheds()))
}
