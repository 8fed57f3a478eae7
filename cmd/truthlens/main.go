// Command truthlens is the interactive TruthLens client.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/truthlens/internal/analysis"
	"github.com/abelbrown/truthlens/internal/client"
	"github.com/abelbrown/truthlens/internal/config"
	"github.com/abelbrown/truthlens/internal/coord"
	"github.com/abelbrown/truthlens/internal/lifecycle"
	"github.com/abelbrown/truthlens/internal/logging"
	"github.com/abelbrown/truthlens/internal/otel"
	"github.com/abelbrown/truthlens/internal/session"
	"github.com/abelbrown/truthlens/internal/store"
	"github.com/abelbrown/truthlens/internal/ui"
)

func main() {
	tabFlag := flag.String("tab", "", "Initial input: text, url or image")
	flag.Parse()

	// Initialize logging
	if err := logging.Init(""); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	defer logging.Close()

	// Analysis event log (JSONL), read back with 'tl events'
	var events *otel.Logger
	if path, err := otel.DefaultPath(); err == nil {
		if events, err = otel.OpenFile(path); err != nil {
			logging.Warn("Event log disabled", "error", err)
		}
	}
	defer events.Close()
	events.Info(otel.KindStartup, "tui", "version "+logging.Version)

	cfg, err := config.Load()
	if err != nil {
		fatal("Failed to load config: %v", err)
	}

	tabName := cfg.UI.DefaultTab
	if *tabFlag != "" {
		tabName = *tabFlag
	}
	tab, err := analysis.ParseTab(tabName)
	if err != nil {
		fatal("Error: %v", err)
	}

	// Session: TRUTHLENS_TOKEN wins over the saved login
	sess, err := session.Load(session.Path())
	if err != nil {
		logging.Warn("Failed to load session", "error", err)
	}
	var creds lifecycle.Credentials = sess
	if cfg.Token != "" {
		creds = session.Static(cfg.Token)
	}
	user := sess.DisplayName()
	if sess.Expired() {
		logging.Info("Saved session has expired, continuing anonymously")
		user = ""
	}

	api := client.New(cfg.API.BaseURL, client.WithRequestsPerMinute(cfg.API.RequestsPerMinute))
	ctrl := lifecycle.New(api,
		lifecycle.WithTimeout(cfg.Timeout()),
		lifecycle.WithObserver(otel.LifecycleObserver(events, "tui")),
	)
	logging.Info("Analysis service configured", "url", api.BaseURL(), "timeout", cfg.Timeout())

	var st *store.Store
	if cfg.History.LocalCache {
		if err := os.MkdirAll(config.Dir(), 0755); err != nil {
			fatal("Failed to create data directory: %v", err)
		}
		dbPath := filepath.Join(config.Dir(), "history.db")
		st, err = store.Open(dbPath)
		if err != nil {
			logging.Warn("Local cache disabled", "path", dbPath, "error", err)
			st = nil
		} else {
			defer st.Close()
			logging.Info("Store initialized", "path", dbPath)
		}
	}

	co := coord.New(ctrl, coord.Config{
		Remote:   api,
		Cache:    st,
		Creds:    creds,
		PageSize: cfg.History.PageSize,
	})

	var copyText func(string) error
	if !clipboard.Unsupported {
		copyText = clipboard.WriteAll
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := ui.NewApp(co.Commands(ctx, copyText), ui.Options{
		Tab:      tab,
		User:     user,
		MaxWidth: cfg.UI.MaxWidth,
		HideHelp: !cfg.UI.ShowHelp,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())

	logging.Info("Starting UI")
	if _, err := p.Run(); err != nil {
		logging.Error("Application error", "error", err)
		fatal("Error: %v", err)
	}

	// Drop any in-flight analysis before the store closes.
	ctrl.Cancel()
	events.Info(otel.KindShutdown, "tui", "")
	logging.Info("TruthLens exiting normally")
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
