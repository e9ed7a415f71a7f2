// Package weave implements the causal tree at the heart of weavelist.
//
// The weave stores every record ever merged, grouped into per-author
// append-only yarns. Each record attaches under its cause, forming an n-ary
// tree encoded left-child/right-sibling. Sibling lists are kept sorted by a
// deterministic comparator that depends only on the two records compared,
// so concurrent edits at the same position converge to one agreed
// arrangement on every replica regardless of merge order.
//
// Nodes reference each other by (author, index) pairs resolved through the
// yarns, never by pointers. Structure only grows: a merged record is never
// moved or removed, and deletions are new tombstone records.
package weave

import (
	"errors"
	"fmt"

	"github.com/notcome/weavelist/pkg/model"
)

// Admission errors returned by Insert. These are contract violations on the
// caller's side: CanCommit must hold before Insert is called.
var (
	ErrAlreadyMerged = errors.New("record already merged")
	ErrYarnGap       = errors.New("record index is not the author's next yarn slot")
	ErrCauseMissing  = errors.New("record cause is not in the weave")
)

// ref locates a node as (author, index into that author's yarn).
// A negative index means "no node".
type ref struct {
	author string
	index  int
}

var noRef = ref{index: -1}

func (r ref) valid() bool { return r.index >= 0 }

func refOf(id model.RecordID) ref { return ref{author: id.Author, index: id.Index} }

// node wraps one record plus its tree links. firstChild points at the
// earliest-ordered record caused by this one; nextSibling at the next-ordered
// record sharing the same cause.
type node struct {
	rec         model.Record
	firstChild  ref
	nextSibling ref
}

// Weave is the causal tree. Not goroutine-safe; the document owner
// serializes all access.
type Weave struct {
	yarns        map[string][]node
	maxTimestamp int64
}

// New returns a weave containing only the sentinel record.
func New() *Weave {
	w := &Weave{yarns: make(map[string][]node)}
	sentinel := model.Sentinel()
	w.yarns[sentinel.ID.Author] = []node{{
		rec:         sentinel,
		firstChild:  noRef,
		nextSibling: noRef,
	}}
	return w
}

func (w *Weave) nodeAt(r ref) *node {
	return &w.yarns[r.author][r.index]
}

// Contains reports whether the identified record has been merged: the
// author's yarn must already cover the record's index slot.
func (w *Weave) Contains(id model.RecordID) bool {
	return id.Index < len(w.yarns[id.Author])
}

// NextIndex returns the index the author's next record must carry: the
// current yarn length.
func (w *Weave) NextIndex(author string) int {
	return len(w.yarns[author])
}

// MaxTimestamp returns the largest timestamp of any merged record.
func (w *Weave) MaxTimestamp() int64 { return w.maxTimestamp }

// Len returns the number of merged records, excluding the sentinel.
func (w *Weave) Len() int {
	n := 0
	for _, yarn := range w.yarns {
		n += len(yarn)
	}
	return n - 1
}

// CanCommit reports whether the record is admissible right now: not yet
// merged, the author's next gap-free yarn slot, and a merged cause.
func (w *Weave) CanCommit(rec model.Record) bool {
	return !w.Contains(rec.ID) &&
		len(w.yarns[rec.ID.Author]) == rec.ID.Index &&
		w.Contains(rec.Cause)
}

// Insert merges an admissible record into the weave: the node is appended
// to its author's yarn and spliced into its cause's sibling chain at the
// position the comparator dictates. Calling Insert on a record that fails
// CanCommit is a contract violation; the weave is left untouched and a
// typed error is returned.
func (w *Weave) Insert(rec model.Record) error {
	switch {
	case w.Contains(rec.ID):
		return fmt.Errorf("insert %v: %w", rec.ID, ErrAlreadyMerged)
	case len(w.yarns[rec.ID.Author]) != rec.ID.Index:
		return fmt.Errorf("insert %v: %w", rec.ID, ErrYarnGap)
	case !w.Contains(rec.Cause):
		return fmt.Errorf("insert %v: %w", rec.ID, ErrCauseMissing)
	}

	// Walk the cause's sibling chain to the first position where the new
	// record sorts before the existing child.
	cause := refOf(rec.Cause)
	prev := noRef
	next := w.nodeAt(cause).firstChild
	for next.valid() {
		if shouldComeBefore(rec, w.nodeAt(next).rec) {
			break
		}
		prev = next
		next = w.nodeAt(next).nextSibling
	}

	newRef := refOf(rec.ID)
	w.yarns[rec.ID.Author] = append(w.yarns[rec.ID.Author], node{
		rec:         rec,
		firstChild:  noRef,
		nextSibling: next,
	})
	if prev.valid() {
		w.nodeAt(prev).nextSibling = newRef
	} else {
		w.nodeAt(cause).firstChild = newRef
	}

	if rec.ID.Timestamp > w.maxTimestamp {
		w.maxTimestamp = rec.ID.Timestamp
	}
	return nil
}

// YarnSuffix returns copies of the author's records beyond sinceIndex, in
// yarn order. The sentinel author's sentinel slot is never included.
func (w *Weave) YarnSuffix(author string, sinceIndex int) []model.Record {
	yarn := w.yarns[author]
	start := sinceIndex
	if author == "" && start < 1 {
		start = 1
	}
	if start < 0 {
		start = 0
	}
	if start >= len(yarn) {
		return nil
	}
	recs := make([]model.Record, 0, len(yarn)-start)
	for _, n := range yarn[start:] {
		recs = append(recs, n.rec)
	}
	return recs
}

// shouldComeBefore is the deterministic total order over records sharing a
// cause. It reads only the two records' own fields, so every replica sorts
// the same sibling list identically:
//
//  1. the sentinel sorts first;
//  2. same author: larger index first (newer local edit nearest the parent);
//  3. a tombstone sorts before a non-tombstone;
//  4. larger timestamp first;
//  5. tie-break on ascending author identifier.
func shouldComeBefore(a, b model.Record) bool {
	switch {
	case a.ID.IsSentinel():
		return true
	case b.ID.IsSentinel():
		return false
	case a.ID.Author == b.ID.Author:
		return a.ID.Index > b.ID.Index
	case a.IsTombstone() != b.IsTombstone():
		return a.IsTombstone()
	case a.ID.Timestamp != b.ID.Timestamp:
		return a.ID.Timestamp > b.ID.Timestamp
	default:
		return a.ID.Author < b.ID.Author
	}
}
