package main

import (
	"cmp"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/abelbrown/truthlens/internal/analysis"
	"github.com/abelbrown/truthlens/internal/lifecycle"
	"github.com/abelbrown/truthlens/internal/render"
)

// failureJSON is the --json shape of a failed analysis.
type failureJSON struct {
	Error   lifecycle.Reason `json:"error"`
	Status  int              `json:"status,omitempty"`
	Message string           `json:"message"`
}

func runAnalyze() {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	tabName := fs.String("tab", "text", "Input kind: text, url or image")
	urlFlag := fs.String("url", "", "Article URL to analyze (implies --tab url)")
	imageFlag := fs.String("image", "", "Image URL to verify (implies --tab image)")
	asJSON := fs.Bool("json", false, "Print the view model as JSON")
	verbose := verboseFlag(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: tl analyze [--tab text|url|image] [--url URL] [--image URL] [--json] [content...]")
		fmt.Fprintln(os.Stderr, "       echo text | tl analyze")
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[1:])

	e := setup(*verbose)
	defer shutdown()

	tab, err := analysis.ParseTab(*tabName)
	if err != nil {
		fatal("%v", err)
	}
	switch {
	case *urlFlag != "":
		tab = analysis.TabURL
	case *imageFlag != "":
		tab = analysis.TabImage
	}

	positional := strings.Join(fs.Args(), " ")
	fields := analysis.FormFields{URL: *urlFlag, ImageURL: *imageFlag}
	switch tab {
	case analysis.TabText:
		fields.Text = positional
		if fields.Text == "" {
			fields.Text = readStdin()
		}
	case analysis.TabURL:
		fields.URL = cmp.Or(fields.URL, positional)
	case analysis.TabImage:
		fields.ImageURL = cmp.Or(fields.ImageURL, positional)
	}

	req, err := analysis.NormalizeInput(tab, fields)
	if err != nil {
		fatal("%v", err)
	}

	st := e.openStore()
	if st != nil {
		defer st.Close()
	}
	co := e.coordinator(st, false)

	// Ctrl-C cancels the request instead of killing the process.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	snap, err := co.Analyze(ctx, req)
	if err != nil {
		var f *lifecycle.Failure
		if !errors.As(err, &f) {
			fatal("%v", err)
		}
		if *asJSON {
			printJSON(failureJSON{Error: f.Reason, Status: f.Status, Message: f.Message})
		} else {
			fmt.Fprintln(os.Stderr, render.Failure(f.Message, e.cfg.UI.MaxWidth))
		}
		shutdown()
		os.Exit(1)
	}

	if *asJSON {
		printJSON(snap.View)
		return
	}
	fmt.Println(render.Result(*snap.View, e.cfg.UI.MaxWidth))
}
