// Package coord connects the analysis controller to the service's history,
// the local cache and the TUI.
package coord

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/truthlens/internal/analysis"
	"github.com/abelbrown/truthlens/internal/client"
	"github.com/abelbrown/truthlens/internal/history"
	"github.com/abelbrown/truthlens/internal/lifecycle"
	"github.com/abelbrown/truthlens/internal/logging"
	"github.com/abelbrown/truthlens/internal/store"
	"github.com/abelbrown/truthlens/internal/ui"
)

// defaultPageSize is used when Config.PageSize is zero.
const defaultPageSize = 10

// ErrNoHistory is returned when there is neither a session nor a local cache
// to list analyses from.
var ErrNoHistory = errors.New("sign in or enable the local cache to keep a history")

// remote is the service history API (interface for testing).
type remote interface {
	History(ctx context.Context, token string, page, perPage int) (client.HistoryPage, error)
	HistoryDetail(ctx context.Context, token string, id int) (client.HistoryItem, error)
}

// cache is the local analysis store (interface for testing).
type cache interface {
	Save(rec store.Record) (string, error)
	Recent(limit int) ([]store.Record, error)
	Get(id string) (store.Record, error)
}

// Config wires optional collaborators. Leave a field nil to disable it.
type Config struct {
	Remote   *client.Client
	Cache    *store.Store
	Creds    lifecycle.Credentials
	PageSize int
}

// Coordinator runs analyses through the controller, remembers successful
// ones locally and assembles history from both places.
type Coordinator struct {
	ctrl     *lifecycle.Controller
	remote   remote // nil: no service history
	cache    cache  // nil: no local cache
	creds    lifecycle.Credentials
	pageSize int
	now      func() time.Time
}

// New creates a Coordinator around ctrl.
func New(ctrl *lifecycle.Controller, cfg Config) *Coordinator {
	c := &Coordinator{
		ctrl:     ctrl,
		creds:    cfg.Creds,
		pageSize: cfg.PageSize,
		now:      time.Now,
	}
	// Avoid storing typed nils in the interfaces.
	if cfg.Remote != nil {
		c.remote = cfg.Remote
	}
	if cfg.Cache != nil {
		c.cache = cfg.Cache
	}
	if c.pageSize <= 0 {
		c.pageSize = defaultPageSize
	}
	return c
}

func (c *Coordinator) token() string {
	if c.creds == nil {
		return ""
	}
	return c.creds.BearerToken()
}

// Analyze submits req and waits for the outcome.
func (c *Coordinator) Analyze(ctx context.Context, req analysis.Request) (lifecycle.Snapshot, error) {
	snap, err := c.ctrl.Submit(ctx, req, c.creds)
	if err == nil {
		c.remember(snap)
	}
	return snap, err
}

// remember caches a successful analysis. Failures are logged, never surfaced.
func (c *Coordinator) remember(snap lifecycle.Snapshot) {
	if c.cache == nil || snap.State != lifecycle.Succeeded || snap.Response == nil {
		return
	}
	rec, err := store.RecordFrom(snap.Request, *snap.Response, c.now())
	if err != nil {
		logging.Warn("coord: not caching analysis", "error", err)
		return
	}
	id, err := c.cache.Save(rec)
	if err != nil {
		logging.Warn("coord: failed to cache analysis", "error", err)
		return
	}
	logging.Debug("coord: cached analysis", "id", id, "type", rec.ContentType)
}

// History lists service and cached analyses, newest first, with dashboard
// stats. page is 1-based and only applies to the service listing. A service
// error is returned only when there is no cache to fall back on.
func (c *Coordinator) History(ctx context.Context, page int) ([]history.Entry, history.Stats, error) {
	token := c.token()
	useRemote := c.remote != nil && token != ""
	if !useRemote && c.cache == nil {
		return nil, history.Stats{}, ErrNoHistory
	}

	var (
		remoteEntries []history.Entry
		localEntries  []history.Entry
		remoteTotal   int
		remoteErr     error
		localErr      error
	)

	var g errgroup.Group
	if useRemote {
		g.Go(func() error {
			p, err := c.remote.History(ctx, token, page, c.pageSize)
			if err != nil {
				remoteErr = err
				return nil
			}
			remoteEntries = history.FromRemote(p.Analyses)
			remoteTotal = p.Total
			return nil
		})
	}
	if c.cache != nil {
		g.Go(func() error {
			recs, err := c.cache.Recent(c.pageSize)
			if err != nil {
				localErr = err
				return nil
			}
			localEntries = history.FromLocal(recs)
			return nil
		})
	}
	_ = g.Wait() // errors are reported per side

	if remoteErr != nil {
		if c.cache == nil || localErr != nil {
			return nil, history.Stats{}, fmt.Errorf("load history: %w", remoteErr)
		}
		logging.Warn("coord: service history unavailable, showing cached analyses", "error", remoteErr)
	}
	if localErr != nil {
		if !useRemote || remoteErr != nil {
			return nil, history.Stats{}, fmt.Errorf("load cached history: %w", localErr)
		}
		logging.Warn("coord: local history unavailable", "error", localErr)
	}

	entries := history.Merge(remoteEntries, localEntries)
	total := 0
	if remoteTotal > 0 {
		// Service total plus whatever only exists locally.
		total = remoteTotal + len(entries) - len(remoteEntries)
	}
	return entries, history.Summarize(entries, total, c.now()), nil
}

// Open fetches the stored result behind e and rebuilds its view model.
func (c *Coordinator) Open(ctx context.Context, e history.Entry) (*analysis.ViewModel, error) {
	var resp analysis.Response
	switch e.Origin {
	case history.Remote:
		if c.remote == nil {
			return nil, errors.New("service history is not available")
		}
		id, err := strconv.Atoi(e.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid analysis id %q", e.ID)
		}
		item, err := c.remote.HistoryDetail(ctx, c.token(), id)
		if err != nil {
			return nil, err
		}
		if resp, err = item.Result(); err != nil {
			return nil, err
		}
	case history.Local:
		if c.cache == nil {
			return nil, errors.New("local cache is disabled")
		}
		rec, err := c.cache.Get(e.ID)
		if err != nil {
			return nil, err
		}
		if resp, err = rec.Response(); err != nil {
			return nil, fmt.Errorf("cached analysis %s: %w", rec.ID, err)
		}
	default:
		return nil, fmt.Errorf("unknown history origin %q", e.Origin)
	}

	vm := analysis.BuildViewModel(resp)
	for _, w := range vm.Warnings {
		logging.Warn("data quality", "id", e.ID, "origin", e.Origin, "clamped", w)
	}
	for _, sk := range vm.Skipped {
		logging.Warn("section suppressed", "id", e.ID, "origin", e.Origin, "kind", sk.Kind, "reason", sk.Reason)
	}
	return &vm, nil
}

// Commands adapts the Coordinator to the TUI. copyText is optional.
func (c *Coordinator) Commands(ctx context.Context, copyText func(string) error) ui.Commands {
	cmds := ui.Commands{
		Start: func(req analysis.Request) (uint64, tea.Cmd, error) {
			sub, err := c.ctrl.Start(ctx, req, c.creds)
			if err != nil {
				return 0, nil, err
			}
			return sub.Seq(), func() tea.Msg {
				snap, err := sub.Run()
				if err == nil {
					c.remember(snap)
				}
				return ui.AnalysisResolved{Snapshot: snap, Err: err}
			}, nil
		},
		Cancel: c.ctrl.Cancel,
		Reset:  c.ctrl.Reset,
		LoadHistory: func() tea.Cmd {
			return func() tea.Msg {
				entries, stats, err := c.History(ctx, 1)
				return ui.HistoryLoaded{Entries: entries, Stats: stats, Err: err}
			}
		},
		OpenHistory: func(e history.Entry) tea.Cmd {
			return func() tea.Msg {
				vm, err := c.Open(ctx, e)
				return ui.HistoryOpened{Entry: e, View: vm, Err: err}
			}
		},
	}
	if copyText != nil {
		cmds.Copy = func(text string) tea.Cmd {
			return func() tea.Msg {
				return ui.SharedToClipboard{Err: copyText(text)}
			}
		}
	}
	return cmds
}
