// Package doc ties the weave, the pending buffer, and the Lamport clock
// into a single serialized owner.
//
// All mutation — local edit allocation and remote ingestion — funnels
// through one mutex, because the weave's sibling-chain splice is not safe
// under concurrent structural mutation and because two local edits racing
// for the same yarn slot would break the gap-free append invariant. The
// local replica is the sole writer for its own author identifier, so no
// cross-process coordination is needed, only this in-process lock.
//
// Ingestion never blocks on I/O and never rejects a temporarily
// out-of-order record: records buffer in the pending queue and every
// successful merge triggers another reconciliation pass to fixpoint.
// Change observers register a callback; callbacks run outside the lock
// after any mutation that changed the weave.
package doc

import (
	"fmt"
	"sync"
	"time"

	"github.com/notcome/weavelist/pkg/clock"
	"github.com/notcome/weavelist/pkg/model"
	"github.com/notcome/weavelist/pkg/pending"
	"github.com/notcome/weavelist/pkg/weave"
)

// Document is the shared mutable list state owned by one replica.
type Document struct {
	mu      sync.Mutex
	author  string
	w       *weave.Weave
	buf     *pending.Buffer
	clk     *clock.Clock
	subs    map[int]func()
	nextSub int
}

// New returns an empty document (sentinel only) writing as the given
// author. The author identifier must be non-empty; the empty identifier is
// reserved for the sentinel.
func New(author string) (*Document, error) {
	if author == "" {
		return nil, fmt.Errorf("empty author identifier is reserved for the sentinel")
	}
	return &Document{
		author: author,
		w:      weave.New(),
		buf:    pending.NewBuffer(),
		clk:    &clock.Clock{},
		subs:   make(map[int]func()),
	}, nil
}

// Author returns the local replica's author identifier.
func (d *Document) Author() string { return d.author }

// InsertAfter creates a fresh local record inserted causally after target,
// merges it immediately, and returns it for upload. The target must
// already be merged.
func (d *Document) InsertAfter(target model.RecordID) (model.Record, error) {
	now := time.Now().UTC()
	return d.localRecord(target, &now)
}

// Delete creates a local tombstone for target, merges it immediately, and
// returns it for upload. The target must already be merged.
func (d *Document) Delete(target model.RecordID) (model.Record, error) {
	return d.localRecord(target, nil)
}

func (d *Document) localRecord(target model.RecordID, createdAt *time.Time) (model.Record, error) {
	d.mu.Lock()
	if !d.w.Contains(target) {
		d.mu.Unlock()
		return model.Record{}, fmt.Errorf("local edit targets %v: %w", target, weave.ErrCauseMissing)
	}
	d.clk.Witness(d.w.MaxTimestamp())
	rec := model.Record{
		ID: model.RecordID{
			Author:    d.author,
			Index:     d.w.NextIndex(d.author),
			Timestamp: d.clk.Tick(),
		},
		Cause:     target,
		CreatedAt: createdAt,
	}
	if err := d.w.Insert(rec); err != nil {
		d.mu.Unlock()
		return model.Record{}, err
	}
	// A local merge can unblock buffered remote records whose cause was
	// this author's yarn.
	if _, err := d.buf.Apply(d.w); err != nil {
		d.mu.Unlock()
		return model.Record{}, err
	}
	subs := d.snapshotSubs()
	d.mu.Unlock()

	notify(subs)
	return rec, nil
}

// Ingest hands a batch of remote records to the pending buffer and runs
// reconciliation to fixpoint. Duplicates, already-merged records, and empty
// batches are no-ops, so at-least-once delivery is safe. Returns the number
// of records admitted into the weave.
func (d *Document) Ingest(recs []model.Record) (int, error) {
	d.mu.Lock()
	d.buf.Add(recs...)
	admitted, err := d.buf.Apply(d.w)
	if err != nil {
		d.mu.Unlock()
		return admitted, err
	}
	d.clk.Witness(d.w.MaxTimestamp())
	var subs []func()
	if admitted > 0 {
		subs = d.snapshotSubs()
	}
	d.mu.Unlock()

	notify(subs)
	return admitted, nil
}

// Unsent returns the local author's records beyond sinceIndex, in yarn
// order, for the transport to upload. The caller owns the cursor and must
// advance it only after a confirmed durable write.
func (d *Document) Unsent(sinceIndex int) []model.Record {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.w.YarnSuffix(d.author, sinceIndex)
}

// Items returns the current visible projection.
func (d *Document) Items() []model.Item {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.w.Items()
}

// PendingCount returns the number of records still awaiting their causal
// dependencies. A count that never drains across syncs indicates a
// permanently missing dependency upstream.
func (d *Document) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Len()
}

// RecordCount returns the number of merged records, excluding the sentinel.
func (d *Document) RecordCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.w.Len()
}

// NextIndex returns the yarn slot the local author's next record will take.
func (d *Document) NextIndex() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.w.NextIndex(d.author)
}

// MaxTimestamp returns the largest timestamp merged so far.
func (d *Document) MaxTimestamp() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.w.MaxTimestamp()
}

// Subscribe registers fn to run after every mutation that changed the
// weave. Callbacks run outside the document lock, in no particular order.
// The returned function removes the registration.
func (d *Document) Subscribe(fn func()) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextSub
	d.nextSub++
	d.subs[id] = fn
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.subs, id)
	}
}

func (d *Document) snapshotSubs() []func() {
	subs := make([]func(), 0, len(d.subs))
	for _, fn := range d.subs {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func()) {
	for _, fn := range subs {
		fn()
	}
}
