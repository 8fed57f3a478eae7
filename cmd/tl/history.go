package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/abelbrown/truthlens/internal/history"
	"github.com/abelbrown/truthlens/internal/render"
)

func runHistory() {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	page := fs.Int("page", 1, "Service history page")
	local := fs.Bool("local", false, "Only list the local cache")
	asJSON := fs.Bool("json", false, "Print entries and stats as JSON")
	verbose := verboseFlag(fs)
	fs.Parse(os.Args[1:])

	e := setup(*verbose)
	defer shutdown()

	st := e.openStore()
	if st != nil {
		defer st.Close()
	}
	co := e.coordinator(st, !*local)

	entries, stats, err := co.History(context.Background(), *page)
	if err != nil {
		fatal("%v", err)
	}

	if *asJSON {
		printJSON(struct {
			Stats   history.Stats   `json:"stats"`
			Entries []history.Entry `json:"entries"`
		}{stats, entries})
		return
	}

	fmt.Println(render.Stats(stats))
	fmt.Println()
	fmt.Println(render.HistoryTable(entries, e.cfg.UI.MaxWidth, -1))
}

func runShow() {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	local := fs.Bool("local", false, "Look the id up in the local cache")
	asJSON := fs.Bool("json", false, "Print the view model as JSON")
	verbose := verboseFlag(fs)
	fs.Parse(os.Args[1:])

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: tl show [--local] [--json] <id>")
		os.Exit(1)
	}
	id := fs.Arg(0)

	e := setup(*verbose)
	defer shutdown()

	st := e.openStore()
	if st != nil {
		defer st.Close()
	}

	// Service ids are integers; cache ids are uuids or their prefixes.
	origin := history.Remote
	if _, err := strconv.Atoi(id); err != nil || *local {
		origin = history.Local
	}

	co := e.coordinator(st, origin == history.Remote)
	vm, err := co.Open(context.Background(), history.Entry{ID: id, Origin: origin})
	if err != nil {
		fatal("%v", err)
	}

	if *asJSON {
		printJSON(vm)
		return
	}
	fmt.Println(render.Result(*vm, e.cfg.UI.MaxWidth))
}

func runClearCache() {
	fs := flag.NewFlagSet("clear-cache", flag.ExitOnError)
	verbose := verboseFlag(fs)
	fs.Parse(os.Args[1:])

	e := setup(*verbose)
	defer shutdown()

	st := e.openStore()
	if st == nil {
		fatal("local cache is disabled")
	}
	defer st.Close()

	n, err := st.Clear()
	if err != nil {
		fatal("clear cache: %v", err)
	}
	fmt.Printf("Deleted %d cached analyses\n", n)
}
