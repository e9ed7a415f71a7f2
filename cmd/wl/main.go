// Command wl is the weavelist CLI — an offline-first replicated ordered
// list built on a causal-tree CRDT, with a shared SQLite database as the
// exchange medium between replicas.
package main

import (
	"fmt"
	"os"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "--help", "-h", "help":
		printUsage()
		return
	case "--version", "-v", "version":
		fmt.Println("wl", version)
		return
	}

	a, err := newApp()
	if err != nil {
		fatal("%v", err)
	}
	defer a.Close()

	switch os.Args[1] {
	// Setup
	case "init":
		os.Exit(a.cmdInit(os.Args[2:]))

	// Editing
	case "add":
		os.Exit(a.cmdAdd(os.Args[2:]))
	case "rm":
		os.Exit(a.cmdRm(os.Args[2:]))

	// Reading
	case "ls":
		os.Exit(a.cmdLs(os.Args[2:]))
	case "log":
		os.Exit(a.cmdLog(os.Args[2:]))
	case "status":
		os.Exit(a.cmdStatus(os.Args[2:]))

	// Sync
	case "sync":
		os.Exit(a.cmdSync(os.Args[2:]))
	case "watch":
		os.Exit(a.cmdWatch(os.Args[2:]))
	case "serve":
		os.Exit(a.cmdServe(os.Args[2:]))

	default:
		fmt.Fprintf(os.Stderr, "wl: unknown command %q\n", os.Args[1])
		fmt.Fprintln(os.Stderr, "Run 'wl --help' for usage.")
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`wl — replicated ordered list (causal-tree CRDT)

Each replica edits the list independently, offline if it likes. Edits are
immutable records in a shared SQLite database; every replica converges to
the same order once it has seen the same records.

Usage:
  wl <command> [flags]

Setup:
  init [--replica ID]       Register this replica (generates an ID if omitted)

Editing:
  add [--after N]           Insert an item after position N (0 = front, default = end)
  rm <N>                    Delete the item at position N

Reading:
  ls                        Print the list
  log [--since N]           Dump raw records in arrival order
  status                    Replicas, counts, cursors, pending records

Sync:
  sync                      Pull new records, reconcile, push unsent
  watch [--interval N]      Poll for remote edits, reprint on change
  serve [--addr A]          Stream the list to WebSocket subscribers

Environment:
  WEAVELIST_DB       SQLite database path (default: .weavelist/weavelist.db)
  WEAVELIST_REPLICA  Default replica ID (avoids passing --replica every time)

All commands support --json for machine-readable output.
All commands support --replica <id> to override WEAVELIST_REPLICA.

Exit codes:
  0  success
  1  error
`)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "wl: "+format+"\n", args...)
	os.Exit(1)
}
