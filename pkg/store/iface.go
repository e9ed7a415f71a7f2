// iface.go defines the StoreInterface for dependency injection and testing.
//
// The concrete *Store type satisfies this interface. Code that depends on
// the store (e.g., the cmd layer's sync loop) can accept StoreInterface
// instead of *Store, enabling mock injection in tests.
package store

import "github.com/notcome/weavelist/pkg/model"

// StoreInterface defines the full set of store operations.
// The concrete *Store type implements this interface.
type StoreInterface interface {
	// Close closes the database connection.
	Close() error

	// --- Replicas ---

	// RegisterReplica creates or updates a replica. Idempotent.
	RegisterReplica(id string) (*model.Replica, error)

	// GetReplica retrieves a replica by ID.
	GetReplica(id string) (*model.Replica, error)

	// UpdateReplicaClock persists the replica's Lamport clock.
	UpdateReplicaClock(id string, clk int64) error

	// ListReplicas returns all registered replicas ordered by ID.
	ListReplicas() ([]model.Replica, error)

	// --- Cursors ---

	// GetCursors returns the replica's pull and push cursors (zeros if unset).
	GetCursors(replicaID string) (pullRow int64, pushIdx int)

	// SetPullCursor advances the replica's pull cursor.
	SetPullCursor(replicaID string, pullRow int64) error

	// SetPushCursor advances the replica's push cursor.
	SetPushCursor(replicaID string, pushIdx int) error

	// --- Records ---

	// PutRecords writes records, ignoring ones already present.
	PutRecords(recs []model.Record) (int, error)

	// ListRecordsSince returns records with rowid > sinceRow.
	ListRecordsSince(sinceRow int64, limit int) ([]model.Record, int64, error)

	// CountRecords returns the total number of records.
	CountRecords() int64

	// MaxRow returns the highest records rowid, or 0 if empty.
	MaxRow() int64
}

// Compile-time check that *Store implements StoreInterface.
var _ StoreInterface = (*Store)(nil)
