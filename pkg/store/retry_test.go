package store

import (
	"errors"
	"testing"
	"time"
)

func TestIsTransientSQLiteErr_Nil(t *testing.T) {
	if isTransientSQLiteErr(nil) {
		t.Fatal("nil error is not transient")
	}
}

func TestIsTransientSQLiteErr_Patterns(t *testing.T) {
	cases := []struct {
		msg       string
		transient bool
	}{
		{"database is locked (5) (SQLITE_BUSY)", true},
		{"database table is locked (6) (SQLITE_LOCKED)", true},
		{"disk I/O error (522) (SQLITE_IOERR_SHORT_READ)", true},
		{"UNIQUE constraint failed: records.author, records.ts", false},
		{"no such table: records", false},
	}
	for _, tc := range cases {
		if got := isTransientSQLiteErr(errors.New(tc.msg)); got != tc.transient {
			t.Fatalf("isTransientSQLiteErr(%q) = %v, want %v", tc.msg, got, tc.transient)
		}
	}
}

func TestRetryOp_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := retryOp(defaultRetryConfig, func() error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Fatalf("got err=%v calls=%d, want nil/1", err, calls)
	}
}

func TestRetryOp_NonTransientReturnsImmediately(t *testing.T) {
	calls := 0
	permanent := errors.New("no such table: records")
	err := retryOp(defaultRetryConfig, func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) || calls != 1 {
		t.Fatalf("got err=%v calls=%d, want permanent/1", err, calls)
	}
}

func TestRetryOp_RetriesTransientThenSucceeds(t *testing.T) {
	cfg := retryConfig{maxRetries: 3, baseDelay: time.Millisecond, maxDelay: 5 * time.Millisecond}
	calls := 0
	err := retryOp(cfg, func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("got err=%v calls=%d, want nil/3", err, calls)
	}
}

func TestRetryOp_ExhaustsRetries(t *testing.T) {
	cfg := retryConfig{maxRetries: 2, baseDelay: time.Millisecond, maxDelay: 5 * time.Millisecond}
	calls := 0
	err := retryOp(cfg, func() error {
		calls++
		return errors.New("database is locked")
	})
	if err == nil || calls != 3 {
		t.Fatalf("got err=%v calls=%d, want err/3 (initial + 2 retries)", err, calls)
	}
}

func TestBackoffDelay_CappedAtMax(t *testing.T) {
	cfg := retryConfig{maxRetries: 5, baseDelay: 10 * time.Millisecond, maxDelay: 25 * time.Millisecond}
	d := backoffDelay(cfg, 4)
	if d > cfg.maxDelay+cfg.baseDelay {
		t.Fatalf("delay %v exceeds max %v plus jitter bound %v", d, cfg.maxDelay, cfg.baseDelay)
	}
}
