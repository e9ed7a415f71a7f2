package main

import (
	"flag"
	"fmt"
	"os"
	"time"
)

func (a *app) cmdStatus(args []string) int {
	flags := flag.NewFlagSet("status", flag.ContinueOnError)
	replica := flags.String("replica", "", "replica ID (optional)")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	// Best-effort replica resolution (status works without one).
	replicaID, _ := a.resolveReplica(*replica)

	replicas, err := a.store.ListReplicas()
	if err != nil {
		fmt.Fprintf(os.Stderr, "wl: status: %v\n", err)
		return 1
	}

	var itemCount, pendingCount int
	var maxTS int64
	if replicaID != "" {
		d, _, err := a.loadDocument(replicaID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "wl: status: %v\n", err)
			return 1
		}
		itemCount = len(d.Items())
		pendingCount = d.PendingCount()
		maxTS = d.MaxTimestamp()
	}

	if *jsonOut {
		result := map[string]interface{}{
			"replicas": replicas,
			"records":  a.store.CountRecords(),
		}
		if replicaID != "" {
			pullRow, pushIdx := a.store.GetCursors(replicaID)
			result["items"] = itemCount
			result["pending"] = pendingCount
			result["max_timestamp"] = maxTS
			result["pull_cursor"] = pullRow
			result["push_cursor"] = pushIdx
		}
		printJSON(result)
		return 0
	}

	fmt.Println("replicas:")
	for _, r := range replicas {
		marker := ""
		if r.ID == replicaID {
			marker = " <-- you"
		}
		fmt.Printf("  %s %-38s clock=%-5d last_seen=%s%s\n",
			presenceIndicator(r.LastSeen), r.ID, r.Clock,
			r.LastSeen.Format("15:04:05"), marker)
	}
	fmt.Printf("records: %d\n", a.store.CountRecords())
	if replicaID != "" {
		pullRow, pushIdx := a.store.GetCursors(replicaID)
		fmt.Printf("items: %d   pending: %d   max_timestamp: %d\n",
			itemCount, pendingCount, maxTS)
		fmt.Printf("cursors: pull_row=%d push_idx=%d\n", pullRow, pushIdx)
		if pendingCount > 0 {
			fmt.Fprintf(os.Stderr, "wl: %d record(s) pending — run 'wl sync' on the replica that created their causes\n", pendingCount)
		}
	}
	return 0
}

// presenceIndicator returns a short text indicator based on last_seen time.
//   - "[+]" — seen within 2 minutes
//   - "[~]" — seen within 10 minutes
//   - "[-]" — not seen for 10+ minutes
func presenceIndicator(lastSeen time.Time) string {
	since := time.Since(lastSeen)
	switch {
	case since < 2*time.Minute:
		return "[+]"
	case since < 10*time.Minute:
		return "[~]"
	default:
		return "[-]"
	}
}
