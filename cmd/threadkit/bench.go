package main

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"text/tabwriter"
	"time"

	"github.com/Swind/go-threadkit/core"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

type benchResult struct {
	Name    string
	Ops     int
	Elapsed time.Duration
}

func (r benchResult) perOp() time.Duration {
	if r.Ops == 0 {
		return 0
	}
	return r.Elapsed / time.Duration(r.Ops)
}

type benchScenario struct {
	name string
	run  func(ctx context.Context, cfg Config, ops int) (int, error)
}

var benchScenarios = []benchScenario{
	{name: "pool", run: benchPool},
	{name: "worker", run: benchWorker},
	{name: "barrier", run: benchBarrier},
	{name: "semaphore", run: benchSemaphore},
}

func benchCommand(state *runtimeState) *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "run pool, worker, barrier and semaphore scenarios concurrently",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "ops",
				Value: 10000,
				Usage: "operations per scenario",
			},
		},
		Action: func(c *cli.Context) error {
			ops := c.Int("ops")
			if ops <= 0 {
				return cli.Exit("ops must be positive", 2)
			}

			results, err := runBench(c.Context, state.cfg, ops)
			if err != nil {
				return cli.Exit(fmt.Sprintf("bench failed: %v", err), 1)
			}

			tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SCENARIO\tOPS\tELAPSED\tPER OP")
			for _, r := range results {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", r.Name, r.Ops, r.Elapsed, r.perOp())
			}
			return tw.Flush()
		},
	}
}

// runBench runs every scenario in parallel and returns results sorted by
// name. The first failing scenario cancels the rest.
func runBench(ctx context.Context, cfg Config, ops int) ([]benchResult, error) {
	g, ctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	results := make([]benchResult, 0, len(benchScenarios))

	for _, s := range benchScenarios {
		g.Go(func() error {
			start := time.Now()
			done, err := s.run(ctx, cfg, ops)
			if err != nil {
				return fmt.Errorf("%s: %w", s.name, err)
			}
			mu.Lock()
			results = append(results, benchResult{Name: s.name, Ops: done, Elapsed: time.Since(start)})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results, nil
}

func benchPool(ctx context.Context, cfg Config, ops int) (int, error) {
	pool := core.NewThreadPoolWithConfig(cfg.ThreadPoolConfig(nil))
	defer pool.Shutdown()

	futures := make([]*core.Future[int], 0, ops)
	for i := 0; i < ops; i++ {
		f, err := core.Submit(pool, func() (int, error) { return i, nil })
		if err != nil {
			return len(futures), err
		}
		futures = append(futures, f)
	}
	for _, f := range futures {
		if _, err := f.Wait(ctx); err != nil {
			return 0, err
		}
	}
	return len(futures), nil
}

func benchWorker(ctx context.Context, cfg Config, ops int) (int, error) {
	worker := core.NewWorkerThreadWithConfig(cfg.WorkerThreadConfig(nil))
	worker.Start()
	defer worker.Stop()

	var count atomic.Int64
	for i := 0; i < ops; i++ {
		worker.PostTask(func() { count.Add(1) })
	}
	if err := worker.WaitForIdleContext(ctx); err != nil {
		return int(count.Load()), err
	}
	return int(count.Load()), nil
}

// benchBarrier measures rounds of a barrier shared by parties threads.
func benchBarrier(ctx context.Context, _ Config, ops int) (int, error) {
	const parties = 4
	rounds := max(ops/parties, 1)

	barrier, err := core.NewBarrier(parties)
	if err != nil {
		return 0, err
	}

	threads := make([]*core.Thread, parties)
	for i := range threads {
		threads[i] = core.NewNamedThread(fmt.Sprintf("bench-barrier-%d", i))
		threads[i].Start(func() {
			for r := 0; r < rounds; r++ {
				barrier.ArriveAndWait()
			}
		})
	}
	for _, t := range threads {
		t.Join()
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return rounds * parties, nil
}

// benchSemaphore contends parties threads on a two-permit semaphore.
func benchSemaphore(ctx context.Context, _ Config, ops int) (int, error) {
	const parties = 4
	per := max(ops/parties, 1)

	sem, err := core.NewSemaphore(2)
	if err != nil {
		return 0, err
	}

	var inside, peak atomic.Int32
	threads := make([]*core.Thread, parties)
	for i := range threads {
		threads[i] = core.NewNamedThread(fmt.Sprintf("bench-sem-%d", i))
		threads[i].Start(func() {
			for n := 0; n < per; n++ {
				sem.Acquire()
				cur := inside.Add(1)
				for {
					old := peak.Load()
					if cur <= old || peak.CompareAndSwap(old, cur) {
						break
					}
				}
				inside.Add(-1)
				sem.Release(1)
			}
		})
	}
	for _, t := range threads {
		t.Join()
	}
	if p := peak.Load(); p > 2 {
		return 0, fmt.Errorf("semaphore admitted %d holders", p)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return per * parties, nil
}
