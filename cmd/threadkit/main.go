// Command threadkit inspects the host threading backend, benchmarks the
// threadkit primitives and serves their Prometheus metrics.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/KimMachineGun/automemlimit/memlimit"
	"github.com/Swind/go-threadkit/core"
	"github.com/urfave/cli/v2"
	"go.uber.org/automaxprocs/maxprocs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runtimeState carries the resolved configuration from Before to the
// command actions.
type runtimeState struct {
	cfg Config
}

func newApp() *cli.App {
	state := &runtimeState{cfg: DefaultConfig()}

	return &cli.App{
		Name:  "threadkit",
		Usage: "inspect, benchmark and monitor threadkit primitives",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a TOML config file",
				EnvVars: []string{"THREADKIT_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (trace, debug, info, warning, error, off)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "pool thread count (0 = hardware concurrency)",
			},
			&cli.IntFlag{
				Name:  "max-pending",
				Usage: "pool queue bound (0 = unbounded)",
			},
			&cli.StringFlag{
				Name:  "priority",
				Usage: "priority for pool and worker threads",
			},
			&cli.BoolFlag{
				Name:  "no-auto-limits",
				Usage: "skip GOMAXPROCS and GOMEMLIMIT detection",
			},
		},
		Before: func(c *cli.Context) error {
			cfg, err := LoadConfig(c.String("config"))
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			if err := applyFlags(c, &cfg); err != nil {
				return cli.Exit(err.Error(), 2)
			}
			state.cfg = cfg

			level, _ := ParseLevel(cfg.Log.Level)
			logger := core.NewLogger(c.App.ErrWriter, level)
			core.SetLogger(logger)

			if !c.Bool("no-auto-limits") {
				applyAutoLimits(logger)
			}
			return nil
		},
		Commands: []*cli.Command{
			infoCommand(state),
			benchCommand(state),
			serveCommand(state),
		},
	}
}

// applyFlags overrides config values with explicitly set flags.
func applyFlags(c *cli.Context, cfg *Config) error {
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("workers") {
		cfg.Pool.Workers = c.Int("workers")
	}
	if c.IsSet("max-pending") {
		cfg.Pool.MaxPending = c.Int("max-pending")
	}
	if c.IsSet("priority") {
		cfg.Pool.Priority = c.String("priority")
		cfg.Worker.Priority = c.String("priority")
	}
	return cfg.Validate()
}

func applyAutoLimits(logger *core.Logger) {
	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Debug().Log(fmt.Sprintf(format, args...))
	})); err != nil {
		logger.Warning().Err(err).Log("failed to set GOMAXPROCS")
	}

	limit, err := memlimit.SetGoMemLimitWithOpts(
		memlimit.WithRatio(0.9),
		memlimit.WithProvider(memlimit.ApplyFallback(memlimit.FromCgroup, memlimit.FromSystem)),
	)
	if err != nil {
		logger.Debug().Err(err).Log("memory limit not applied")
		return
	}
	logger.Debug().Int64("limit", limit).Log("memory limit applied")
}
