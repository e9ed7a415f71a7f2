package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
)

func (a *app) cmdRm(args []string) int {
	flags := flag.NewFlagSet("rm", flag.ContinueOnError)
	replica := flags.String("replica", "", "replica ID")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	if flags.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: wl rm <position> [--replica ID] [--json]")
		return 1
	}
	pos, err := strconv.Atoi(flags.Arg(0))
	if err != nil || pos < 1 {
		fmt.Fprintf(os.Stderr, "wl: rm: position must be a positive integer, got %q\n", flags.Arg(0))
		return 1
	}

	replicaID, err := a.resolveReplica(*replica)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wl: %v\n", err)
		return 1
	}

	d, _, err := a.loadDocument(replicaID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wl: rm: %v\n", err)
		return 1
	}

	items := d.Items()
	if pos > len(items) {
		fmt.Fprintf(os.Stderr, "wl: rm: position %d out of range (list has %d items)\n", pos, len(items))
		return 1
	}

	rec, err := d.Delete(items[pos-1].ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wl: rm: %v\n", err)
		return 1
	}
	if _, err := a.push(d, replicaID); err != nil {
		fmt.Fprintf(os.Stderr, "wl: rm: %v\n", err)
		return 1
	}

	if *jsonOut {
		printJSON(map[string]interface{}{"record": rec, "items": d.Items()})
	} else {
		fmt.Printf("removed position %d (tombstone %v)\n", pos, rec.ID)
		printItems(d.Items())
	}
	return 0
}
