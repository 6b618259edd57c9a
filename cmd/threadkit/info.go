package main

import (
	"fmt"
	"runtime"

	"github.com/Swind/go-threadkit/core"
	"github.com/urfave/cli/v2"
)

func infoCommand(state *runtimeState) *cli.Command {
	return &cli.Command{
		Name:  "info",
		Usage: "print the threading backend and host concurrency",
		Action: func(c *cli.Context) error {
			core.SetMainThreadID()
			tid, _ := core.MainThreadID()

			w := c.App.Writer
			fmt.Fprintf(w, "backend:              %s\n", core.Backend())
			fmt.Fprintf(w, "main thread id:       %d\n", tid)
			fmt.Fprintf(w, "hardware concurrency: %d\n", core.HardwareConcurrency())
			fmt.Fprintf(w, "GOMAXPROCS:           %d\n", runtime.GOMAXPROCS(0))
			fmt.Fprintf(w, "pool workers:         %d\n", poolWorkers(state.cfg))
			return nil
		},
	}
}

func poolWorkers(cfg Config) int {
	if cfg.Pool.Workers > 0 {
		return cfg.Pool.Workers
	}
	return core.HardwareConcurrency()
}
