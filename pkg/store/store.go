// Package store manages all SQLite persistence for weavelist.
//
// SQLite in WAL mode doubles as the exchange medium: instead of a remote
// sync service, replicas read and write a shared database file. Records
// are immutable and keyed by (author, timestamp), so writes use INSERT OR
// IGNORE and at-least-once delivery between replicas is harmless. The
// database IS the communication channel.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/notcome/weavelist/pkg/model"

	_ "modernc.org/sqlite"
)

// Store manages all SQLite operations with WAL mode for concurrent access
// by multiple replica processes.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database and initializes the schema.
func New(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(60000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// retryOnContention wraps retryOp from retry.go with the default config.
// All store write operations should use this to handle transient SQLite
// errors (BUSY, LOCKED, IOERR_SHORT_READ) under concurrent replica access.
func retryOnContention(fn func() error) error {
	return retryOp(defaultRetryConfig, fn)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS replicas (
		id         TEXT PRIMARY KEY,
		clock      INTEGER NOT NULL DEFAULT 0,
		registered TEXT NOT NULL,
		last_seen  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS records (
		author       TEXT NOT NULL,
		ts           INTEGER NOT NULL,
		idx          INTEGER NOT NULL,
		cause_author TEXT NOT NULL,
		cause_ts     INTEGER NOT NULL,
		cause_idx    INTEGER NOT NULL,
		created_at   TEXT,
		PRIMARY KEY (author, ts)
	);

	CREATE INDEX IF NOT EXISTS idx_records_author_idx ON records(author, idx);

	CREATE TABLE IF NOT EXISTS cursors (
		replica_id TEXT PRIMARY KEY REFERENCES replicas(id),
		pull_row   INTEGER NOT NULL DEFAULT 0,
		push_idx   INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ---------------------------------------------------------------------------
// Replicas
// ---------------------------------------------------------------------------

// RegisterReplica creates or updates a replica. Idempotent via ON CONFLICT.
func (s *Store) RegisterReplica(id string) (*model.Replica, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	err := retryOnContention(func() error {
		_, err := s.db.Exec(
			`INSERT INTO replicas (id, clock, registered, last_seen)
			 VALUES (?, 0, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET last_seen = excluded.last_seen`,
			id, now, now,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetReplica(id)
}

// GetReplica retrieves a replica by ID.
func (s *Store) GetReplica(id string) (*model.Replica, error) {
	row := s.db.QueryRow(
		`SELECT id, clock, registered, last_seen FROM replicas WHERE id = ?`, id,
	)
	return scanReplica(row)
}

// UpdateReplicaClock persists the replica's current Lamport clock.
func (s *Store) UpdateReplicaClock(id string, clk int64) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return retryOnContention(func() error {
		_, err := s.db.Exec(
			`UPDATE replicas SET clock = ?, last_seen = ? WHERE id = ?`,
			clk, now, id,
		)
		return err
	})
}

// ListReplicas returns all registered replicas ordered by ID.
func (s *Store) ListReplicas() ([]model.Replica, error) {
	rows, err := s.db.Query(
		`SELECT id, clock, registered, last_seen FROM replicas ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var replicas []model.Replica
	for rows.Next() {
		var r model.Replica
		var regStr, lsStr string
		if err := rows.Scan(&r.ID, &r.Clock, &regStr, &lsStr); err != nil {
			return nil, err
		}
		var parseErr error
		r.Registered, parseErr = time.Parse(time.RFC3339Nano, regStr)
		if parseErr != nil {
			return nil, fmt.Errorf("parse registered time for replica %s: %w", r.ID, parseErr)
		}
		r.LastSeen, parseErr = time.Parse(time.RFC3339Nano, lsStr)
		if parseErr != nil {
			return nil, fmt.Errorf("parse last_seen time for replica %s: %w", r.ID, parseErr)
		}
		replicas = append(replicas, r)
	}
	return replicas, rows.Err()
}

func scanReplica(row *sql.Row) (*model.Replica, error) {
	var r model.Replica
	var regStr, lsStr string
	if err := row.Scan(&r.ID, &r.Clock, &regStr, &lsStr); err != nil {
		return nil, err
	}
	var parseErr error
	r.Registered, parseErr = time.Parse(time.RFC3339Nano, regStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parse registered time for replica %s: %w", r.ID, parseErr)
	}
	r.LastSeen, parseErr = time.Parse(time.RFC3339Nano, lsStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parse last_seen time for replica %s: %w", r.ID, parseErr)
	}
	return &r, nil
}

// ---------------------------------------------------------------------------
// Cursors
// ---------------------------------------------------------------------------

// GetCursors returns the replica's pull cursor (records rowid high-water
// mark) and push cursor (local yarn index confirmed written). Zero values
// if unset.
func (s *Store) GetCursors(replicaID string) (pullRow int64, pushIdx int) {
	_ = s.db.QueryRow(
		`SELECT pull_row, push_idx FROM cursors WHERE replica_id = ?`, replicaID,
	).Scan(&pullRow, &pushIdx)
	return pullRow, pushIdx
}

// SetPullCursor advances the replica's pull cursor.
func (s *Store) SetPullCursor(replicaID string, pullRow int64) error {
	return retryOnContention(func() error {
		_, err := s.db.Exec(
			`INSERT INTO cursors (replica_id, pull_row) VALUES (?, ?)
			 ON CONFLICT(replica_id) DO UPDATE SET pull_row = excluded.pull_row`,
			replicaID, pullRow,
		)
		return err
	})
}

// SetPushCursor advances the replica's push cursor. Callers must only do
// this after the records up to pushIdx are confirmed durably written.
func (s *Store) SetPushCursor(replicaID string, pushIdx int) error {
	return retryOnContention(func() error {
		_, err := s.db.Exec(
			`INSERT INTO cursors (replica_id, push_idx) VALUES (?, ?)
			 ON CONFLICT(replica_id) DO UPDATE SET push_idx = excluded.push_idx`,
			replicaID, pushIdx,
		)
		return err
	})
}

// ---------------------------------------------------------------------------
// Records
// ---------------------------------------------------------------------------

// PutRecords writes records to the shared table. Records are immutable and
// keyed by (author, ts), so re-writing an existing record is a no-op.
// Returns the number of records that were actually new.
func (s *Store) PutRecords(recs []model.Record) (int, error) {
	inserted := 0
	for _, rec := range recs {
		var created sql.NullString
		if rec.CreatedAt != nil {
			created = sql.NullString{
				String: rec.CreatedAt.UTC().Format(time.RFC3339Nano),
				Valid:  true,
			}
		}
		err := retryOnContention(func() error {
			res, err := s.db.Exec(
				`INSERT OR IGNORE INTO records
				 (author, ts, idx, cause_author, cause_ts, cause_idx, created_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				rec.ID.Author, rec.ID.Timestamp, rec.ID.Index,
				rec.Cause.Author, rec.Cause.Timestamp, rec.Cause.Index,
				created,
			)
			if err != nil {
				return err
			}
			if n, err := res.RowsAffected(); err == nil && n > 0 {
				inserted++
			}
			return nil
		})
		if err != nil {
			return inserted, fmt.Errorf("put record %v: %w", rec.ID, err)
		}
	}
	return inserted, nil
}

// ListRecordsSince returns records with rowid > sinceRow in arrival order,
// along with the new cursor position (unchanged if nothing matched). This
// tails the shared table without assuming any delivery order across
// authors; the pending buffer sorts out causality.
func (s *Store) ListRecordsSince(sinceRow int64, limit int) ([]model.Record, int64, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := s.db.Query(
		`SELECT rowid, author, ts, idx, cause_author, cause_ts, cause_idx, created_at
		 FROM records WHERE rowid > ?
		 ORDER BY rowid ASC LIMIT ?`,
		sinceRow, limit,
	)
	if err != nil {
		return nil, sinceRow, err
	}
	defer rows.Close()

	cursor := sinceRow
	var recs []model.Record
	for rows.Next() {
		var rowID int64
		var rec model.Record
		var created sql.NullString
		if err := rows.Scan(&rowID,
			&rec.ID.Author, &rec.ID.Timestamp, &rec.ID.Index,
			&rec.Cause.Author, &rec.Cause.Timestamp, &rec.Cause.Index,
			&created); err != nil {
			return nil, sinceRow, err
		}
		if created.Valid {
			t, parseErr := time.Parse(time.RFC3339Nano, created.String)
			if parseErr != nil {
				return nil, sinceRow, fmt.Errorf("parse created_at for record %v: %w", rec.ID, parseErr)
			}
			rec.CreatedAt = &t
		}
		recs = append(recs, rec)
		cursor = rowID
	}
	return recs, cursor, rows.Err()
}

// CountRecords returns the total number of records in the shared table.
func (s *Store) CountRecords() int64 {
	var count int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM records`).Scan(&count); err != nil {
		return 0
	}
	return count
}

// MaxRow returns the highest records rowid, or 0 if the table is empty.
func (s *Store) MaxRow() int64 {
	var row int64
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(rowid), 0) FROM records`).Scan(&row); err != nil {
		return 0
	}
	return row
}
