package main

import (
	"flag"
	"fmt"
	"os"
)

func (a *app) cmdLog(args []string) int {
	flags := flag.NewFlagSet("log", flag.ContinueOnError)
	since := flags.Int64("since", 0, "show records after this rowid")
	limit := flags.Int("limit", 100, "maximum records to show")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	recs, _, err := a.store.ListRecordsSince(*since, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wl: log: %v\n", err)
		return 1
	}

	if *jsonOut {
		printJSON(recs)
		return 0
	}
	if len(recs) == 0 {
		fmt.Println("no records")
		return 0
	}
	for _, rec := range recs {
		kind := "insert"
		if rec.IsTombstone() {
			kind = "delete"
		}
		fmt.Printf("%-6s %-24v cause=%v\n", kind, rec.ID, rec.Cause)
	}
	return 0
}
