// Package otel records what happened to each analysis as JSONL events.
//
// Events are typed structs serialized one per line. The Logger writes
// events asynchronously via a buffered channel and background drain
// goroutine, so the UI never waits on disk.
package otel

import (
	"encoding/json"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Submission lifecycle
	KindSubmit    EventKind = "analysis.submit"
	KindSucceeded EventKind = "analysis.succeeded"
	KindFailed    EventKind = "analysis.failed"
	KindReset     EventKind = "analysis.reset"

	// System events
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
)

// Event is one observability record. Every field except Kind and Time is
// optional.
type Event struct {
	Time        time.Time     `json:"t"`
	Level       Level         `json:"level,omitempty"`
	Kind        EventKind     `json:"kind"`
	Comp        string        `json:"comp,omitempty"`       // "tui", "cli", "lifecycle"
	SessionID   string        `json:"session_id,omitempty"` // same for the whole process
	Seq         uint64        `json:"seq,omitempty"`        // submission sequence number
	ContentType string        `json:"content_type,omitempty"`
	Dur         time.Duration `json:"-"`                // not serialized directly
	DurMs       float64       `json:"dur_ms,omitempty"` // computed from Dur at marshal time
	Score       *float64      `json:"score,omitempty"`
	Grade       string        `json:"grade,omitempty"`
	Sections    int           `json:"sections,omitempty"`
	Reason      string        `json:"reason,omitempty"`
	Status      int           `json:"status,omitempty"`
	Msg         string        `json:"msg,omitempty"`
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	a := struct {
		Alias
	}{Alias: Alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
