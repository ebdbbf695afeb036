package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	appconfig "github.com/xstreamrt/xstreamrt/internal/config"
	"github.com/xstreamrt/xstreamrt/internal/events"
	"github.com/xstreamrt/xstreamrt/internal/logging"
	"github.com/xstreamrt/xstreamrt/internal/metrics"
	"github.com/xstreamrt/xstreamrt/internal/pool"
	_ "github.com/xstreamrt/xstreamrt/internal/pool/fifo"
	"github.com/xstreamrt/xstreamrt/internal/sched"
	"github.com/xstreamrt/xstreamrt/internal/telemetry"
	"github.com/xstreamrt/xstreamrt/internal/unit"
	"github.com/xstreamrt/xstreamrt/internal/xstream"

	goredis "github.com/go-redis/redis/v8"
)

var (
	serveStreams  int
	serveDuration time.Duration
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a pool of priority schedulers until interrupted or duration elapses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&serveStreams, "streams", 2, "number of execution streams, each running its own scheduler instance")
	cmd.Flags().DurationVar(&serveDuration, "duration", 0, "stop after this long (0 = run until signalled)")
	return cmd
}

func runServe(parent context.Context) error {
	cfg, err := appconfig.Load(configFile)
	if err != nil {
		return err
	}
	logging.SetLevelFromString(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if serveDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, serveDuration)
		defer cancel()
	}

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.New(cfg.Metrics.Namespace)
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: reg.Handler()}
		go func() {
			logging.Op().Info("metrics listening", "addr", cfg.Metrics.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logging.Op().Error("metrics server failed", "error", err)
			}
		}()
		defer srv.Close()
	}

	tp, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
	})
	if err != nil {
		return err
	}
	defer tp.Shutdown(context.Background())

	src, closeSrc, err := buildEventsSource(cfg.Events)
	if err != nil {
		return err
	}
	defer closeSrc()

	// Three priority pools shared by every execution stream's
	// scheduler instance: pop is safe for concurrent callers (the
	// fifo vtable serialises on its own mutex), even though push/remove
	// access checks assume a single bound ES per spec §4.2.
	high, err := pool.NewBasic(pool.FIFO, pool.SR_PW)
	if err != nil {
		return err
	}
	mid, err := pool.NewBasic(pool.FIFO, pool.SR_PW)
	if err != nil {
		return err
	}
	low, err := pool.NewBasic(pool.FIFO, pool.SR_PW)
	if err != nil {
		return err
	}
	pools := []*pool.Pool{high, mid, low}

	group, gctx := xstream.NewGroup(ctx)

	producer := xstream.NewID()
	group.Go(func() error { return produce(gctx, producer, pools, reg) })

	for i := 0; i < serveStreams; i++ {
		es := xstream.NewID()
		var runner xstream.Runner = xstream.RunnerFunc(func(ctx context.Context, u unit.Unit, sourcePoolIndex int) error {
			fn, _ := u.Payload().(func())
			if fn != nil {
				fn()
			}
			return nil
		})
		if reg != nil {
			runner = reg.InstrumentRunner(runner)
		}
		runner = tp.InstrumentRunner(runner)

		hasToStop := func(ctx context.Context, es xstream.ID) bool {
			select {
			case <-ctx.Done():
				return true
			default:
				return false
			}
		}
		if reg != nil {
			hasToStop = reg.InstrumentHasToStop(hasToStop)
		}

		checkEvents := func(ctx context.Context, es xstream.ID) {
			for _, e := range src.Poll(ctx) {
				logging.Op().Debug("check_events", "es", es, "topic", e.Topic)
			}
			if reg != nil {
				reg.Sample("high", high)
				reg.Sample("mid", mid)
				reg.Sample("low", low)
			}
		}

		s := sched.New(pools, runner,
			sched.WithEventFreq(cfg.Scheduler.EventFreq),
			sched.WithSleepTime(cfg.Scheduler.SleepTime),
			func() sched.Option {
				if cfg.Scheduler.SleepEnabled {
					return func(*sched.Scheduler) {}
				}
				return sched.WithSleepDisabled()
			}(),
			sched.WithHasToStop(hasToStop),
			sched.WithCheckEvents(checkEvents),
		)

		group.Go(func() error { return s.Run(gctx, es) })
	}

	err = group.Wait()
	if err != nil && ctx.Err() != nil {
		// Cancellation via signal/duration is the normal shutdown path.
		return nil
	}
	return err
}

// produce pushes a steady trickle of synthetic work at three priority
// levels until ctx is done, standing in for whatever upstream work
// source an embedder would wire in place of this CLI demo.
func produce(ctx context.Context, es xstream.ID, pools []*pool.Pool, reg *metrics.Registry) error {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	n := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n++
			target := pools[n%len(pools)]
			if err := target.Push(es, unit.FromTask(func() {})); err != nil {
				logging.Op().Warn("produce: push failed", "error", err)
			}
		}
	}
}

func buildEventsSource(cfg appconfig.EventsConfig) (events.Source, func(), error) {
	switch cfg.Source {
	case "redis":
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		rs := events.NewRedisSource(client, cfg.RedisChan)
		return rs, func() { rs.Close(); client.Close() }, nil
	case "noop":
		s := events.NewNoopSource()
		return s, func() { s.Close() }, nil
	default:
		s := events.NewChannelSource()
		return s, func() { s.Close() }, nil
	}
}
