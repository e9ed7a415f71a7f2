package weave

import "github.com/notcome/weavelist/pkg/model"

// Items derives the visible list from the weave: a pre-order walk over the
// tree starting at the sentinel's children, following each node's
// firstChild then nextSibling chain in the order Insert maintains.
//
// A non-tombstone node emits an Item and recurses into its children. A
// tombstone collapses exactly one slot: it removes the most recently
// emitted Item, unless an earlier tombstone in the same sibling list
// already collapsed one — then it does nothing. Tombstones are never
// recursed into. Because tombstones sort before non-tombstones among
// siblings, a delete lands before its target's other children and removes
// the target itself, not a sibling.
//
// Items is a pure function of weave state: re-running it without a
// mutation yields the identical sequence.
func (w *Weave) Items() []model.Item {
	var items []model.Item
	w.project(w.nodeAt(refOf(model.SentinelID())).firstChild, &items)
	return items
}

func (w *Weave) project(first ref, items *[]model.Item) {
	collapsed := false
	for cur := first; cur.valid(); {
		n := w.nodeAt(cur)
		if n.rec.IsTombstone() {
			if !collapsed && len(*items) > 0 {
				*items = (*items)[:len(*items)-1]
				collapsed = true
			}
		} else {
			*items = append(*items, model.Item{
				ID:        n.rec.ID,
				CreatedAt: *n.rec.CreatedAt,
				Author:    n.rec.ID.Author,
			})
			w.project(n.firstChild, items)
		}
		cur = n.nextSibling
	}
}
