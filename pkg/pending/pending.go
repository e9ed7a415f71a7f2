// Package pending buffers records that arrived before their dependencies.
//
// A record fails admission when its cause has not been merged yet or when
// an earlier record from the same author is still missing. Such records
// are never rejected: they wait here, keyed by author and ordered by yarn
// index, and are replayed after every successful merge until a full sweep
// admits nothing. A record whose dependency never arrives stays buffered
// indefinitely and is visible through Len — a data-integrity signal for
// the caller, not a fault.
package pending

import (
	"sort"

	"github.com/notcome/weavelist/pkg/model"
	"github.com/notcome/weavelist/pkg/weave"
)

// Buffer holds per-author queues of records awaiting admission.
// Not goroutine-safe; the document owner serializes all access.
type Buffer struct {
	queues map[string][]model.Record
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{queues: make(map[string][]model.Record)}
}

// Add appends records to their authors' queues and re-sorts each touched
// queue by yarn index. The transport may deliver in any order; sorting here
// keeps each queue a FIFO in causal (index) terms.
func (b *Buffer) Add(recs ...model.Record) {
	touched := make(map[string]bool)
	for _, rec := range recs {
		b.queues[rec.ID.Author] = append(b.queues[rec.ID.Author], rec)
		touched[rec.ID.Author] = true
	}
	for author := range touched {
		q := b.queues[author]
		sort.SliceStable(q, func(i, j int) bool {
			return q[i].ID.Index < q[j].ID.Index
		})
	}
}

// Len returns the number of buffered records. A count that never drains is
// the stuck-pending signal from records with permanently missing causes.
func (b *Buffer) Len() int {
	n := 0
	for _, q := range b.queues {
		n += len(q)
	}
	return n
}

// Apply replays buffered records against the weave until a fixpoint:
// sweeps run repeatedly because admitting one author's record can unblock
// another author's record whose cause pointed at it. Within a sweep, each
// author's queue is drained from the front while records are either already
// merged (dropped) or admissible; the first record that cannot commit stops
// that author's scan, since later records of the same author cannot commit
// before it. Returns the number of records admitted.
func (b *Buffer) Apply(w *weave.Weave) (int, error) {
	admitted := 0
	for {
		n, err := b.sweep(w)
		admitted += n
		if err != nil {
			return admitted, err
		}
		if n == 0 {
			return admitted, nil
		}
	}
}

func (b *Buffer) sweep(w *weave.Weave) (int, error) {
	admitted := 0
	for author, q := range b.queues {
		i := 0
		for i < len(q) {
			rec := q[i]
			if w.Contains(rec.ID) {
				i++
				continue
			}
			if !w.CanCommit(rec) {
				break
			}
			if err := w.Insert(rec); err != nil {
				return admitted, err
			}
			admitted++
			i++
		}
		if i == len(q) {
			delete(b.queues, author)
		} else if i > 0 {
			b.queues[author] = q[i:]
		}
	}
	return admitted, nil
}
