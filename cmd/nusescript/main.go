// Command nusescript runs a bundled .lua scenario file against the
// kernel for a fixed duration, coordinating the tick service and the
// kernel's own Run loop through an errgroup.Group the way the pack's
// worker-pool examples bound a group of goroutines to a shared lifetime.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nuse-go/nuse/internal/luabind"
	"github.com/nuse-go/nuse/kernel"
)

func main() {
	scenario := flag.String("scenario", "scenarios/priority.lua", "path to a .lua scenario file")
	duration := flag.Duration("duration", 2*time.Second, "how long to run before shutting down")
	tick := flag.Duration("tick", 10*time.Millisecond, "tick service interval")
	flag.Parse()

	if err := run(*scenario, *duration, *tick); err != nil {
		log.Fatalf("nusescript: %v", err)
	}
}

func run(scenarioPath string, duration, tick time.Duration) error {
	sc, err := luabind.Load(scenarioPath)
	if err != nil {
		return err
	}
	defer sc.Close()

	logger := log.New(os.Stderr, "nusescript: ", log.LstdFlags)
	k, err := kernel.New(sc.Config, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		k.Run()
		return nil
	})

	if sc.Config.SystemClockEnabled || sc.Config.TaskSleepEnabled || sc.Config.Scheduler == kernel.SchedulerTimeSlice || len(sc.Config.Timers) != 0 {
		g.Go(func() error {
			k.RunTickService(gctx, tick)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		k.Shutdown()
		return nil
	})

	return g.Wait()
}
