package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/notcome/weavelist/pkg/doc"
	"github.com/notcome/weavelist/pkg/model"
	"github.com/notcome/weavelist/pkg/store"
)

const (
	defaultDir = ".weavelist"
	defaultDB  = ".weavelist/weavelist.db"
)

// app holds shared state for all CLI subcommands.
type app struct {
	store     *store.Store
	replicaID string // default replica from WEAVELIST_REPLICA
}

// newApp opens the database and resolves the default replica identity.
// Creates the .weavelist/ directory if using the default DB path.
func newApp() (*app, error) {
	dbPath := envOr("WEAVELIST_DB", defaultDB)
	if dbPath == defaultDB {
		if err := os.MkdirAll(defaultDir, 0755); err != nil {
			return nil, fmt.Errorf("cannot create %s: %w", defaultDir, err)
		}
	}
	s, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open database %q: %w", dbPath, err)
	}
	return &app{
		store:     s,
		replicaID: envOr("WEAVELIST_REPLICA", ""),
	}, nil
}

// Close releases the database connection.
func (a *app) Close() { a.store.Close() }

// resolveReplica returns the replica ID from the flag (if non-empty),
// falling back to the WEAVELIST_REPLICA environment variable.
func (a *app) resolveReplica(flagVal string) (string, error) {
	if flagVal != "" {
		return flagVal, nil
	}
	if a.replicaID != "" {
		return a.replicaID, nil
	}
	return "", fmt.Errorf("no replica ID: pass --replica or set WEAVELIST_REPLICA (run 'wl init' first)")
}

// loadDocument rebuilds the document from every record in the shared
// table. Records are ingested through the pending buffer, so the load is
// insensitive to the order rows were written in. Returns the document and
// the rowid high-water mark the load covered.
func (a *app) loadDocument(replicaID string) (*doc.Document, int64, error) {
	d, err := doc.New(replicaID)
	if err != nil {
		return nil, 0, err
	}
	var row int64
	for {
		recs, next, err := a.store.ListRecordsSince(row, 500)
		if err != nil {
			return nil, row, fmt.Errorf("load records: %w", err)
		}
		if len(recs) == 0 {
			break
		}
		if _, err := d.Ingest(recs); err != nil {
			return nil, row, fmt.Errorf("rebuild weave: %w", err)
		}
		row = next
	}
	return d, row, nil
}

// pull tails the shared table from sinceRow, ingests what it finds, and
// returns the new cursor plus how many records were admitted.
func (a *app) pull(d *doc.Document, sinceRow int64) (int64, int, error) {
	admitted := 0
	row := sinceRow
	for {
		recs, next, err := a.store.ListRecordsSince(row, 500)
		if err != nil {
			return row, admitted, err
		}
		if len(recs) == 0 {
			return row, admitted, nil
		}
		n, err := d.Ingest(recs)
		if err != nil {
			return row, admitted, err
		}
		admitted += n
		row = next
	}
}

// push uploads the local yarn suffix beyond the stored push cursor and
// advances the cursor only after the write succeeded.
func (a *app) push(d *doc.Document, replicaID string) (int, error) {
	_, pushIdx := a.store.GetCursors(replicaID)
	recs := d.Unsent(pushIdx)
	if len(recs) == 0 {
		return 0, nil
	}
	if _, err := a.store.PutRecords(recs); err != nil {
		return 0, fmt.Errorf("push records: %w", err)
	}
	if err := a.store.SetPushCursor(replicaID, pushIdx+len(recs)); err != nil {
		return len(recs), fmt.Errorf("advance push cursor: %w", err)
	}
	_ = a.store.UpdateReplicaClock(replicaID, d.MaxTimestamp())
	return len(recs), nil
}

// resolveTarget maps a display position to the record the new edit should
// follow: 0 means the front (the sentinel), n means after the n-th visible
// item.
func resolveTarget(items []model.Item, after int) (model.RecordID, error) {
	if after < 0 || after > len(items) {
		return model.RecordID{}, fmt.Errorf("position %d out of range (list has %d items)", after, len(items))
	}
	if after == 0 {
		return model.SentinelID(), nil
	}
	return items[after-1].ID, nil
}

// printItems writes the projection in display order, one line per item.
func printItems(items []model.Item) {
	if len(items) == 0 {
		fmt.Println("(empty list)")
		return
	}
	for i, it := range items {
		fmt.Printf("%3d. %s  by %s  (%v)\n",
			i+1, it.CreatedAt.Format("2006-01-02 15:04:05"), shortID(it.Author), it.ID)
	}
}

// shortID truncates long replica IDs (UUIDs) for human-readable output.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
