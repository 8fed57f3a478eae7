package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"

	"github.com/abelbrown/truthlens/internal/client"
	"github.com/abelbrown/truthlens/internal/config"
	"github.com/abelbrown/truthlens/internal/coord"
	"github.com/abelbrown/truthlens/internal/lifecycle"
	"github.com/abelbrown/truthlens/internal/logging"
	"github.com/abelbrown/truthlens/internal/otel"
	"github.com/abelbrown/truthlens/internal/session"
	"github.com/abelbrown/truthlens/internal/store"
)

// env is everything a subcommand needs, built from config and the session.
type env struct {
	cfg   *config.Config
	api   *client.Client
	sess  *session.Session
	creds lifecycle.Credentials
}

// events is the analysis event log, nil when it could not be opened.
var events *otel.Logger

// verboseFlag registers -v on fs.
func verboseFlag(fs *flag.FlagSet) *bool {
	return fs.Bool("v", false, "Log debug output to stderr")
}

// setup initializes logging and loads config and session, or exits.
func setup(verbose bool) *env {
	if verbose {
		logging.InitWriter(os.Stderr, log.DebugLevel)
	} else if err := logging.Init(""); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to initialize logging: %v\n", err)
	}

	if path, err := otel.DefaultPath(); err == nil {
		if events, err = otel.OpenFile(path); err != nil {
			logging.Warn("event log disabled", "error", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("load config: %v", err)
	}

	sess, err := session.Load(session.Path())
	if err != nil {
		logging.Warn("failed to load session", "error", err)
	}

	var creds lifecycle.Credentials = sess
	if cfg.Token != "" {
		creds = session.Static(cfg.Token)
	}

	return &env{
		cfg:   cfg,
		api:   client.New(cfg.API.BaseURL, client.WithRequestsPerMinute(cfg.API.RequestsPerMinute)),
		sess:  sess,
		creds: creds,
	}
}

// openStore opens the local cache, or returns nil when it is disabled or
// cannot be opened.
func (e *env) openStore() *store.Store {
	if !e.cfg.History.LocalCache {
		return nil
	}
	if err := os.MkdirAll(config.Dir(), 0755); err != nil {
		logging.Warn("failed to create data directory", "error", err)
		return nil
	}
	st, err := store.Open(filepath.Join(config.Dir(), "history.db"))
	if err != nil {
		logging.Warn("local cache disabled", "error", err)
		return nil
	}
	return st
}

// coordinator wires the controller, service and cache. remote=false keeps
// the service history out.
func (e *env) coordinator(st *store.Store, remote bool) *coord.Coordinator {
	cfg := coord.Config{
		Cache:    st,
		Creds:    e.creds,
		PageSize: e.cfg.History.PageSize,
	}
	if remote {
		cfg.Remote = e.api
	}
	ctrl := lifecycle.New(e.api,
		lifecycle.WithTimeout(e.cfg.Timeout()),
		lifecycle.WithObserver(otel.LifecycleObserver(events, "cli")),
	)
	return coord.New(ctrl, cfg)
}

// readStdin returns piped input, or "" when stdin is a terminal.
func readStdin() string {
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return ""
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fatal("read stdin: %v", err)
	}
	return string(data)
}

// prompt asks for a value on the terminal.
func prompt(label string) string {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		fatal("read %s: %v", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line)
}

// printJSON writes v indented to stdout.
func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatal("encode: %v", err)
	}
}

// shutdown flushes the event log and closes the log file.
func shutdown() {
	events.Close()
	logging.Close()
}

// fatal prints to stderr, flushes the logs and exits 1.
func fatal(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logging.Error(msg)
	shutdown()
	fmt.Fprintln(os.Stderr, "error: "+msg)
	os.Exit(1)
}
