// Package ui provides the Bubble Tea TUI for TruthLens.
package ui

import (
	"github.com/abelbrown/truthlens/internal/analysis"
	"github.com/abelbrown/truthlens/internal/history"
	"github.com/abelbrown/truthlens/internal/lifecycle"
)

// AnalysisResolved is sent when a submission's Run returns. Err is
// lifecycle.ErrSuperseded for responses that lost the race and must be
// ignored.
type AnalysisResolved struct {
	Snapshot lifecycle.Snapshot
	Err      error
}

// HistoryLoaded is sent when the history listing is ready.
type HistoryLoaded struct {
	Entries []history.Entry
	Stats   history.Stats
	Err     error
}

// HistoryOpened is sent when a stored analysis has been fetched and rebuilt.
type HistoryOpened struct {
	Entry history.Entry
	View  *analysis.ViewModel
	Err   error
}

// SharedToClipboard is sent after the share text was copied.
type SharedToClipboard struct {
	Err error
}
