package main

import (
	"context"
	"flag"
	"fmt"
	"os"

)

func runHealth() {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "Print the raw status as JSON")
	verbose := verboseFlag(fs)
	fs.Parse(os.Args[1:])

	e := setup(*verbose)
	defer shutdown()

	h, err := e.api.Health(context.Background())
	if err != nil {
		fatal("%s unreachable: %v", e.api.BaseURL(), err)
	}

	if *asJSON {
		printJSON(h)
		return
	}
	fmt.Printf("Service:       %s\n", e.api.BaseURL())
	fmt.Printf("Status:        %s\n", h.Status)
	fmt.Printf("Models loaded: %v\n", h.ModelsLoaded)
	if h.Timestamp != "" {
		fmt.Printf("Server time:   %s\n", h.Timestamp)
	}
}
