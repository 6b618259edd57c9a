package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	"github.com/Swind/go-threadkit/core"
	obs "github.com/Swind/go-threadkit/observability/prometheus"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
)

func serveCommand(state *runtimeState) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run a sample workload and serve its metrics at /metrics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "listen address (overrides metrics.addr)",
			},
			&cli.DurationFlag{
				Name:  "duration",
				Usage: "stop after this long (0 = until interrupted)",
			},
			&cli.DurationFlag{
				Name:  "task-interval",
				Value: 20 * time.Millisecond,
				Usage: "interval between sample workload batches",
			},
		},
		Action: func(c *cli.Context) error {
			cfg := state.cfg
			if c.IsSet("addr") {
				cfg.Metrics.Addr = c.String("addr")
			}

			ctx := c.Context
			if d := c.Duration("duration"); d > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, d)
				defer cancel()
			}

			ln, err := net.Listen("tcp", cfg.Metrics.Addr)
			if err != nil {
				return cli.Exit(fmt.Sprintf("listen %s: %v", cfg.Metrics.Addr, err), 1)
			}
			fmt.Fprintf(c.App.Writer, "serving metrics at http://%s/metrics\n", ln.Addr())

			return serve(ctx, cfg, ln, c.Duration("task-interval"))
		},
	}
}

// workload is the sample pool plus worker whose metrics are served.
type workload struct {
	pool   *core.ThreadPool
	worker *core.WorkerThread
	timer  *core.Timer
}

func newWorkload(cfg Config, metrics core.Metrics) *workload {
	w := &workload{
		pool:   core.NewThreadPoolWithConfig(cfg.ThreadPoolConfig(metrics)),
		worker: core.NewWorkerThreadWithConfig(cfg.WorkerThreadConfig(metrics)),
		timer:  core.NewNamedTimer("workload"),
	}
	w.worker.Start()
	return w
}

// start posts a batch of tasks every interval: a handful of pool tasks with
// random durations, plus one sequenced task on the worker.
func (w *workload) start(interval time.Duration) {
	w.timer.StartPeriodic(interval, func() {
		for range 4 {
			if !w.pool.TrySubmit(func() {
				core.Sleep(time.Duration(rand.IntN(5)+1) * time.Millisecond)
			}) {
				break
			}
		}
		w.worker.PostTask(func() {
			core.Sleep(time.Millisecond)
		})
	})
}

func (w *workload) stop() {
	w.timer.Stop()
	w.worker.Stop()
	w.pool.Shutdown()
}

func serve(ctx context.Context, cfg Config, ln net.Listener, interval time.Duration) error {
	reg := prom.NewRegistry()

	exporter, err := obs.NewMetricsExporter(cfg.Metrics.Namespace, reg, obs.ExporterOptions{})
	if err != nil {
		return err
	}
	poller, err := obs.NewSnapshotPoller(reg, cfg.Metrics.PollInterval)
	if err != nil {
		return err
	}

	load := newWorkload(cfg, exporter)
	defer load.stop()

	poller.AddPool(load.pool.ID(), load.pool)
	poller.AddWorker(load.worker.Name(), load.worker)
	poller.Start(ctx)
	defer poller.Stop()

	load.start(interval)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
