// Package model defines the core domain types for weavelist.
//
// Weavelist replicates an ordered list across independent replicas using a
// causal tree (a "weave", after Grishchenko): every edit is an immutable
// record pointing at the record it causally follows. Records from one
// replica form an append-only log (a "yarn"); a deterministic comparator
// over record identifiers places concurrent edits in the same agreed order
// on every replica, with no coordinator and no locks between replicas.
package model

import (
	"fmt"
	"time"
)

// RecordID identifies one record across all replicas.
//
// Index is the record's position in its author's own append-only yarn.
// Timestamp is a Lamport-style counter used only to order concurrent edits
// from different authors; causal admission never looks at it.
type RecordID struct {
	Author    string `json:"author"`
	Index     int    `json:"index"`
	Timestamp int64  `json:"timestamp"`
}

// SentinelID is the identifier of the distinguished root record. It exists
// in every weave from creation and is never produced by a user edit.
func SentinelID() RecordID {
	return RecordID{Author: "", Index: 0, Timestamp: 0}
}

// IsSentinel reports whether id names the root record.
func (id RecordID) IsSentinel() bool { return id == SentinelID() }

func (id RecordID) String() string {
	if id.IsSentinel() {
		return "root"
	}
	return fmt.Sprintf("%s/%d@t%d", id.Author, id.Index, id.Timestamp)
}

// Record is one atomic edit. A nil CreatedAt marks the record a tombstone:
// it deletes the item its cause produced instead of inserting a new one.
// Records are immutable once created.
type Record struct {
	ID        RecordID   `json:"id"`
	Cause     RecordID   `json:"cause"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// IsTombstone reports whether the record deletes its cause's item.
func (r Record) IsTombstone() bool { return r.CreatedAt == nil }

// Sentinel returns the root record: its own cause, no content.
func Sentinel() Record {
	return Record{ID: SentinelID(), Cause: SentinelID()}
}

// Item is one visible list element in display order, as produced by the
// projection. Tombstoned elements never appear.
type Item struct {
	ID        RecordID  `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Author    string    `json:"author"`
}

// Replica is a registered replica identity in the shared store. Each
// process writes records under exactly one replica ID.
type Replica struct {
	ID         string    `json:"id"`
	Clock      int64     `json:"clock"`
	Registered time.Time `json:"registered_at"`
	LastSeen   time.Time `json:"last_seen_at"`
}
