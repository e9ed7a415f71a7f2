package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
)

func (a *app) cmdInit(args []string) int {
	flags := flag.NewFlagSet("init", flag.ContinueOnError)
	replica := flags.String("replica", "", "replica ID (generated if omitted)")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	replicaID := *replica
	if replicaID == "" {
		replicaID = a.replicaID
	}
	if replicaID == "" {
		replicaID = uuid.NewString()
	}

	r, err := a.store.RegisterReplica(replicaID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wl: init: %v\n", err)
		return 1
	}

	if *jsonOut {
		printJSON(r)
	} else {
		fmt.Printf("registered replica %s\n", r.ID)
		if os.Getenv("WEAVELIST_REPLICA") != r.ID {
			fmt.Printf("hint: export WEAVELIST_REPLICA=%s\n", r.ID)
		}
	}
	return 0
}
