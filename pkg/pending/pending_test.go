package pending

import (
	"testing"
	"time"

	"github.com/notcome/weavelist/pkg/model"
	"github.com/notcome/weavelist/pkg/weave"
)

func rid(author string, idx int, ts int64) model.RecordID {
	return model.RecordID{Author: author, Index: idx, Timestamp: ts}
}

func ins(author string, idx int, ts int64, cause model.RecordID) model.Record {
	created := time.Unix(ts, 0).UTC()
	return model.Record{ID: rid(author, idx, ts), Cause: cause, CreatedAt: &created}
}

func apply(t *testing.T, b *Buffer, w *weave.Weave) int {
	t.Helper()
	n, err := b.Apply(w)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	return n
}

func TestApply_EmptyBuffer(t *testing.T) {
	b := NewBuffer()
	if n := apply(t, b, weave.New()); n != 0 {
		t.Fatalf("empty buffer admitted %d, want 0", n)
	}
}

func TestApply_AdmissibleRecord(t *testing.T) {
	w := weave.New()
	b := NewBuffer()
	x := ins("alice", 0, 1, model.SentinelID())
	b.Add(x)
	if n := apply(t, b, w); n != 1 {
		t.Fatalf("admitted %d, want 1", n)
	}
	if !w.Contains(x.ID) {
		t.Fatal("record not merged")
	}
	if b.Len() != 0 {
		t.Fatalf("buffer should drain, has %d", b.Len())
	}
}

// A record whose cause has not arrived stays buffered; items are
// unaffected until the dependency merges (causal gating).
func TestApply_HoldsRecordUntilCauseArrives(t *testing.T) {
	w := weave.New()
	b := NewBuffer()
	x := ins("alice", 0, 1, model.SentinelID())
	z := ins("bob", 0, 2, x.ID)

	b.Add(z)
	if n := apply(t, b, w); n != 0 {
		t.Fatalf("z admitted before its cause: %d", n)
	}
	if b.Len() != 1 {
		t.Fatalf("pending count: got %d, want 1", b.Len())
	}
	if len(w.Items()) != 0 {
		t.Fatal("z visible before its cause merged")
	}

	b.Add(x)
	if n := apply(t, b, w); n != 2 {
		t.Fatalf("after cause arrived: admitted %d, want 2", n)
	}
	if b.Len() != 0 {
		t.Fatalf("buffer should drain, has %d", b.Len())
	}
}

// Out-of-order delivery within one author: Add re-sorts by index, so the
// whole yarn admits in one pass.
func TestApply_ReordersWithinAuthor(t *testing.T) {
	w := weave.New()
	b := NewBuffer()
	a0 := ins("alice", 0, 1, model.SentinelID())
	a1 := ins("alice", 1, 2, a0.ID)
	a2 := ins("alice", 2, 3, a1.ID)

	b.Add(a2, a0, a1)
	if n := apply(t, b, w); n != 3 {
		t.Fatalf("admitted %d, want 3", n)
	}
}

// Admitting one author's record can unblock another author's: the fixpoint
// loop must keep sweeping until nothing moves.
func TestApply_CrossAuthorFixpoint(t *testing.T) {
	w := weave.New()
	b := NewBuffer()
	a0 := ins("alice", 0, 1, model.SentinelID())
	b0 := ins("bob", 0, 2, a0.ID)
	c0 := ins("carol", 0, 3, b0.ID)

	b.Add(c0, b0, a0)
	if n := apply(t, b, w); n != 3 {
		t.Fatalf("chained authors: admitted %d, want 3", n)
	}
	if b.Len() != 0 {
		t.Fatalf("buffer should drain, has %d", b.Len())
	}
}

// Already-merged records in the buffer are dropped, not re-inserted.
func TestApply_SkipsAlreadyMerged(t *testing.T) {
	w := weave.New()
	b := NewBuffer()
	x := ins("alice", 0, 1, model.SentinelID())
	if err := w.Insert(x); err != nil {
		t.Fatalf("insert: %v", err)
	}

	b.Add(x)
	if n := apply(t, b, w); n != 0 {
		t.Fatalf("duplicate admitted %d, want 0", n)
	}
	if b.Len() != 0 {
		t.Fatalf("duplicate should be dropped, buffer has %d", b.Len())
	}
}

// A record with a permanently missing dependency stays pending and is
// observable via Len — never silently dropped.
func TestLen_StuckRecordStaysVisible(t *testing.T) {
	w := weave.New()
	b := NewBuffer()
	orphan := ins("bob", 0, 5, rid("ghost", 0, 4))

	b.Add(orphan)
	apply(t, b, w)
	apply(t, b, w)
	if b.Len() != 1 {
		t.Fatalf("stuck record count: got %d, want 1", b.Len())
	}
}

// A blocked record stops its author's queue without blocking other authors.
func TestApply_BlockedAuthorDoesNotBlockOthers(t *testing.T) {
	w := weave.New()
	b := NewBuffer()
	orphan := ins("bob", 0, 5, rid("ghost", 0, 4))
	x := ins("alice", 0, 1, model.SentinelID())

	b.Add(orphan, x)
	if n := apply(t, b, w); n != 1 {
		t.Fatalf("admitted %d, want 1", n)
	}
	if !w.Contains(x.ID) {
		t.Fatal("alice's record should merge despite bob's stuck record")
	}
	if b.Len() != 1 {
		t.Fatalf("pending: got %d, want 1", b.Len())
	}
}
