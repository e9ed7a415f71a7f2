package main

import (
	"flag"
	"fmt"
	"os"
)

func (a *app) cmdAdd(args []string) int {
	flags := flag.NewFlagSet("add", flag.ContinueOnError)
	replica := flags.String("replica", "", "replica ID")
	after := flags.Int("after", -1, "insert after display position N (0 = front, -1 = end)")
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
		fmt.Fprintf(os.Stderr, "wl: add: %v\n", err)
		return 1
	}

	items := d.Items()
	pos := *after
	if pos < 0 {
		pos = len(items)
	}
	target, err := resolveTarget(items, pos)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wl: add: %v\n", err)
		return 1
	}

	rec, err := d.InsertAfter(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wl: add: %v\n", err)
		return 1
	}
	if _, err := a.push(d, replicaID); err != nil {
		fmt.Fprintf(os.Stderr, "wl: add: %v\n", err)
		return 1
	}

	if *jsonOut {
		printJSON(map[string]interface{}{"record": rec, "items": d.Items()})
	} else {
		fmt.Printf("added %v after position %d\n", rec.ID, pos)
		printItems(d.Items())
	}
	return 0
}
