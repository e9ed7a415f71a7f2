package main

import (
	"flag"
	"fmt"
	"os"
)

func (a *app) cmdLs(args []string) int {
	flags := flag.NewFlagSet("ls", flag.ContinueOnError)
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

	d, _, err := a.loadDocument(replicaID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wl: ls: %v\n", err)
		return 1
	}

	items := d.Items()
	if *jsonOut {
		printJSON(items)
	} else {
		printItems(items)
		if n := d.PendingCount(); n > 0 {
			fmt.Fprintf(os.Stderr, "wl: %d record(s) pending (missing causal dependencies)\n", n)
		}
	}
	return 0
}
