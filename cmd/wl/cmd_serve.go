package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/notcome/weavelist/pkg/flush"
)

// cmdServe runs a long-lived replica: it polls the shared table for remote
// edits, streams the projection to WebSocket subscribers on every change,
// and persists cursor/clock bookkeeping through the coalescing flusher so
// bursts of admitted records cost one write, not one per record.
func (a *app) cmdServe(args []string) int {
	flags := flag.NewFlagSet("serve", flag.ContinueOnError)
	replica := flags.String("replica", "", "replica ID")
	addr := flags.String("addr", ":8089", "listen address")
	interval := flags.Int("interval", 1, "poll interval in seconds")
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
		fmt.Fprintf(os.Stderr, "wl: serve: %v\n", err)
		return 1
	}

	var rowMu sync.Mutex
	flusher := flush.New(func() {
		rowMu.Lock()
		r := row
		rowMu.Unlock()
		if err := a.store.SetPullCursor(replicaID, r); err != nil {
			fmt.Fprintf(os.Stderr, "wl: serve: flush: %v\n", err)
			return
		}
		_ = a.store.UpdateReplicaClock(replicaID, d.MaxTimestamp())
	})

	h := newHub()
	go h.run()

	snapshot := func() []byte {
		b, _ := json.Marshal(d.Items())
		return b
	}
	unsubscribe := d.Subscribe(func() {
		h.broadcast <- snapshot()
		flusher.Trigger()
	})
	defer unsubscribe()

	go func() {
		ticker := time.NewTicker(time.Duration(*interval) * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			rowMu.Lock()
			r := row
			rowMu.Unlock()
			next, _, err := a.pull(d, r)
			if err != nil {
				fmt.Fprintf(os.Stderr, "wl: serve: pull: %v\n", err)
				continue
			}
			rowMu.Lock()
			row = next
			rowMu.Unlock()
		}
	}()

	http.HandleFunc("/ws", h.handleWS(snapshot))
	fmt.Fprintf(os.Stderr, "wl: serving projection on ws://%s/ws (replica %s)\n",
		*addr, shortID(replicaID))
	if err := http.ListenAndServe(*addr, nil); err != nil {
		fmt.Fprintf(os.Stderr, "wl: serve: %v\n", err)
		return 1
	}
	flusher.Wait()
	return 0
}
