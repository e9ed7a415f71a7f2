package weave

import (
	"testing"

	"github.com/notcome/weavelist/pkg/model"
)

func TestItems_EmptyWeave(t *testing.T) {
	w := New()
	if items := w.Items(); len(items) != 0 {
		t.Fatalf("empty weave: got %d items, want 0", len(items))
	}
}

func TestItems_CarriesRecordFields(t *testing.T) {
	w := New()
	x := ins("alice", 0, 1, model.SentinelID())
	mustInsert(t, w, x)
	items := w.Items()
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	it := items[0]
	if it.ID != x.ID || it.Author != "alice" || !it.CreatedAt.Equal(*x.CreatedAt) {
		t.Fatalf("item fields: got %+v", it)
	}
}

// Scenario B: deleting X leaves only Y.
func TestItems_TombstoneCollapsesTarget(t *testing.T) {
	w := New()
	x := ins("a1", 0, 1, model.SentinelID())
	y := ins("a2", 0, 2, model.SentinelID())
	del := tomb("a1", 1, 3, x.ID)
	mustInsert(t, w, x, y, del)
	wantItems(t, w, y.ID)
}

// Tombstone locality: deleting X removes exactly X. A child inserted under
// X survives, positioned where X's descendants go.
func TestItems_ChildOfDeletedNodeSurvives(t *testing.T) {
	w := New()
	x := ins("a1", 0, 1, model.SentinelID())
	y := ins("a2", 0, 2, model.SentinelID())
	z := ins("a2", 1, 3, x.ID)
	del := tomb("a1", 1, 4, x.ID)
	mustInsert(t, w, x, y, z, del)
	wantItems(t, w, y.ID, z.ID)
}

// Two concurrent deletes of the same target collapse exactly one slot.
func TestItems_DoubleDeleteCollapsesOnce(t *testing.T) {
	w := New()
	x := ins("a1", 0, 1, model.SentinelID())
	y := ins("a2", 0, 2, model.SentinelID())
	d1 := tomb("a1", 1, 3, x.ID)
	d2 := tomb("a2", 1, 4, x.ID)
	mustInsert(t, w, x, y, d1, d2)
	wantItems(t, w, y.ID)
}

func TestItems_DoubleDeleteEitherMergeOrder(t *testing.T) {
	x := ins("a1", 0, 1, model.SentinelID())
	y := ins("a2", 0, 2, model.SentinelID())
	d1 := tomb("a1", 1, 3, x.ID)
	d2 := tomb("a2", 1, 4, x.ID)

	w1 := New()
	mustInsert(t, w1, x, y, d1, d2)
	w2 := New()
	mustInsert(t, w2, y, x, d2, d1)
	wantItems(t, w1, y.ID)
	wantItems(t, w2, y.ID)
}

// Deleting a node and its child in the same history empties both levels.
func TestItems_NestedDeletes(t *testing.T) {
	w := New()
	x := ins("a1", 0, 1, model.SentinelID())
	z := ins("a2", 0, 2, x.ID)
	delZ := tomb("a2", 1, 3, z.ID)
	delX := tomb("a1", 1, 4, x.ID)
	mustInsert(t, w, x, z, delZ, delX)
	wantItems(t, w)
}

func TestItems_DeleteMiddleOfThree(t *testing.T) {
	w := New()
	a := ins("a1", 0, 1, model.SentinelID())
	b := ins("a2", 0, 2, model.SentinelID())
	c := ins("a3", 0, 3, model.SentinelID())
	// Display order before delete: c, b, a.
	del := tomb("a2", 1, 4, b.ID)
	mustInsert(t, w, a, b, c, del)
	wantItems(t, w, c.ID, a.ID)
}

// Re-running the projection without a mutation is idempotent.
func TestItems_PureFunctionOfState(t *testing.T) {
	w := New()
	x := ins("a1", 0, 1, model.SentinelID())
	y := ins("a2", 0, 2, model.SentinelID())
	del := tomb("a1", 1, 3, x.ID)
	mustInsert(t, w, x, y, del)

	first := itemIDs(w.Items())
	second := itemIDs(w.Items())
	if len(first) != len(second) {
		t.Fatalf("projection not stable: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("projection not stable at %d: %v vs %v", i, first, second)
		}
	}
}

// A deeper tree: insertions chained under each other project in pre-order.
func TestItems_ChainedInsertsPreOrder(t *testing.T) {
	w := New()
	a := ins("a1", 0, 1, model.SentinelID())
	b := ins("a1", 1, 2, a.ID)
	c := ins("a1", 2, 3, b.ID)
	mustInsert(t, w, a, b, c)
	wantItems(t, w, a.ID, b.ID, c.ID)
}
