package main

import (
	"flag"
	"fmt"
	"os"
)

func (a *app) cmdSync(args []string) int {
	flags := flag.NewFlagSet("sync", flag.ContinueOnError)
	replica := flags.String("replica", "", "replica ID")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	replicaID, err := a.resolveReplica(*replica)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wl: %v\n", err)
		return 1
	}

	// 1. Rebuild from the shared table; this is the pull.
	d, row, err := a.loadDocument(replicaID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wl: sync: %v\n", err)
		return 1
	}
	if err := a.store.SetPullCursor(replicaID, row); err != nil {
		fmt.Fprintf(os.Stderr, "wl: sync: pull cursor: %v\n", err)
	}

	// 2. Push unsent local records.
	pushed, err := a.push(d, replicaID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wl: sync: %v\n", err)
		return 1
	}

	pending := d.PendingCount()
	if *jsonOut {
		printJSON(map[string]interface{}{
			"pushed":        pushed,
			"records":       d.RecordCount(),
			"items":         len(d.Items()),
			"pending":       pending,
			"max_timestamp": d.MaxTimestamp(),
		})
	} else {
		fmt.Printf("synced: %d pushed, %d records, %d items\n",
			pushed, d.RecordCount(), len(d.Items()))
		if pending > 0 {
			fmt.Fprintf(os.Stderr, "wl: %d record(s) still pending — a dependency has not arrived\n", pending)
		}
	}
	return 0
}
