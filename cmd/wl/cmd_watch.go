package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func (a *app) cmdWatch(args []string) int {
	flags := flag.NewFlagSet("watch", flag.ContinueOnError)
	replica := flags.String("replica", "", "replica ID")
	interval := flags.Int("interval", 1, "poll interval in seconds")
	jsonOut := flags.Bool("json", false, "JSON output (one items array per change)")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	replicaID, err := a.resolveReplica(*replica)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wl: %v\n", err)
		return 1
	}

	d, row, err := a.loadDocument(replicaID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wl: watch: %v\n", err)
		return 1
	}
	pollInterval := time.Duration(*interval) * time.Second

	// Handle ctrl-c gracefully.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	fmt.Fprintf(os.Stderr, "watching for remote edits (poll every %s, ctrl-c to stop)\n", pollInterval)
	if *jsonOut {
		printJSON(d.Items())
	} else {
		printItems(d.Items())
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sig:
			fmt.Fprintln(os.Stderr, "\nstopped")
			_ = a.store.SetPullCursor(replicaID, row)
			return 0
		case <-ticker.C:
			next, admitted, err := a.pull(d, row)
			if err != nil {
				fmt.Fprintf(os.Stderr, "wl: watch: %v\n", err)
				continue
			}
			row = next
			if admitted == 0 {
				continue
			}
			if *jsonOut {
				printJSON(d.Items())
			} else {
				fmt.Println()
				printItems(d.Items())
			}
		}
	}
}
