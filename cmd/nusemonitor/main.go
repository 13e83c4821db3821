// Command nusemonitor is an interactive console that drives a live
// kernel.Kernel and polls single keystrokes to show its information-query
// surface (spec §6) the way a hardware debug monitor would: 't' dumps the
// task table, 'q' quits. Terminal handling follows the teacher's own
// raw-mode stdin pattern (terminal_host.go).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/nuse-go/nuse/internal/luabind"
	"github.com/nuse-go/nuse/kernel"
)

func main() {
	scenario := flag.String("scenario", "scenarios/priority.lua", "path to a .lua scenario file")
	tick := flag.Duration("tick", 10*time.Millisecond, "tick service interval")
	flag.Parse()

	if err := run(*scenario, *tick); err != nil {
		log.Fatalf("nusemonitor: %v", err)
	}
}

func run(scenarioPath string, tick time.Duration) error {
	sc, err := luabind.Load(scenarioPath)
	if err != nil {
		return err
	}
	defer sc.Close()

	logger := log.New(os.Stderr, "nusemonitor: ", log.LstdFlags)
	k, err := kernel.New(sc.Config, logger)
	if err != nil {
		return err
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("nusemonitor: failed to set raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		k.Run()
		return nil
	})
	g.Go(func() error {
		k.RunTickService(gctx, tick)
		return nil
	})
	g.Go(func() error {
		return pollKeys(gctx, k, cancel)
	})

	return g.Wait()
}

// pollKeys reads one byte at a time from stdin (already in raw mode) and
// renders the task table on 't', quits on 'q'.
func pollKeys(ctx context.Context, k *kernel.Kernel, quit context.CancelFunc) error {
	buf := make([]byte, 1)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := os.Stdin.Read(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			continue
		}

		switch buf[0] {
		case 'q':
			k.Shutdown()
			quit()
			return nil
		case 't':
			printTaskTable(k)
		}
	}
}

func printTaskTable(k *kernel.Kernel) {
	fmt.Fprintf(os.Stderr, "\r\n-- task table (clock=%d) --\r\n", k.Clock())
	for i := 0; i < k.TaskCount(); i++ {
		st, _ := k.TaskStatusOf(i)
		count, _ := k.TaskScheduleCount(i)
		if st.State == kernel.TaskWaiting {
			fmt.Fprintf(os.Stderr, "task %d: %s on %s %d (scheduled %d times)\r\n", i, st.State, st.Class, st.Object, count)
		} else {
			fmt.Fprintf(os.Stderr, "task %d: %s (scheduled %d times)\r\n", i, st.State, count)
		}
	}
}
