package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abelbrown/truthlens/internal/otel"
)

// eventRecord mirrors otel.Event for JSON decoding. Decoding into a local
// type keeps old log lines readable as the event schema evolves.
type eventRecord struct {
	Time        time.Time `json:"t"`
	Level       string    `json:"level"`
	Kind        string    `json:"kind"`
	Comp        string    `json:"comp"`
	SessionID   string    `json:"session_id"`
	Seq         uint64    `json:"seq"`
	ContentType string    `json:"content_type"`
	DurMs       float64   `json:"dur_ms"`
	Score       *float64  `json:"score"`
	Grade       string    `json:"grade"`
	Sections    int       `json:"sections"`
	Reason      string    `json:"reason"`
	Status      int       `json:"status"`
	Msg         string    `json:"msg"`
}

// levelRank returns a numeric rank for filtering (higher = more severe).
func levelRank(level string) int {
	switch level {
	case "info":
		return 1
	case "warn":
		return 2
	case "error":
		return 3
	}
	return 0
}

func runEvents() {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	tail := fs.Int("tail", 50, "Number of recent lines to show")
	follow := fs.Bool("f", false, "Follow mode (like tail -f)")
	kind := fs.String("kind", "", "Filter by event kind prefix (e.g. 'analysis.failed')")
	level := fs.String("level", "", "Minimum level: debug, info, warn, error")
	session := fs.String("session", "", "Filter by session ID")
	rawJSON := fs.Bool("json", false, "Output raw JSON lines")
	fs.Parse(os.Args[1:])

	logPath, err := otel.DefaultPath()
	if err != nil {
		fatal("%v", err)
	}
	f, err := os.Open(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		fmt.Fprintf(os.Stderr, "  Event log not found at %s\n", logPath)
		fmt.Fprintf(os.Stderr, "  Run an analysis first to generate events.\n")
		os.Exit(1)
	}
	defer f.Close()

	minLevel := levelRank(*level)
	match := func(ev eventRecord) bool {
		if *kind != "" && !strings.HasPrefix(ev.Kind, *kind) {
			return false
		}
		if *level != "" && levelRank(ev.Level) < minLevel {
			return false
		}
		if *session != "" && ev.SessionID != *session {
			return false
		}
		return true
	}
	format := func(ev eventRecord, raw []byte) string {
		if *rawJSON {
			return string(raw)
		}
		return formatEvent(ev)
	}

	for _, l := range readTailLines(f, *tail, match) {
		fmt.Println(format(l.ev, l.raw))
	}
	if !*follow {
		return
	}

	// Poll for lines appended after the tail.
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				time.Sleep(100 * time.Millisecond)
				continue
			}
			return
		}
		line = trimLine(line)
		if len(line) == 0 {
			continue
		}
		var ev eventRecord
		if json.Unmarshal(line, &ev) != nil {
			continue
		}
		if match(ev) {
			fmt.Println(format(ev, line))
		}
	}
}

func formatEvent(ev eventRecord) string {
	lvl := strings.ToUpper(ev.Level)
	if lvl == "" {
		lvl = "?"
	}
	parts := []string{fmt.Sprintf("%s %-5s [%-9s] %-18s", ev.Time.Local().Format("2006-01-02 15:04:05"), lvl, ev.Comp, ev.Kind)}

	if ev.Seq > 0 {
		parts = append(parts, fmt.Sprintf("#%d", ev.Seq))
	}
	if ev.ContentType != "" {
		parts = append(parts, ev.ContentType)
	}
	if ev.Score != nil {
		parts = append(parts, fmt.Sprintf("score=%.1f", *ev.Score))
	}
	if ev.Grade != "" {
		parts = append(parts, "grade="+ev.Grade)
	}
	if ev.Sections > 0 {
		parts = append(parts, fmt.Sprintf("sections=%d", ev.Sections))
	}
	if ev.Reason != "" {
		parts = append(parts, "reason="+ev.Reason)
	}
	if ev.Status > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", ev.Status))
	}
	if ev.DurMs > 0 {
		parts = append(parts, fmt.Sprintf("(%.*fms)", durPrecision(ev.DurMs), ev.DurMs))
	}
	if ev.Msg != "" {
		parts = append(parts, "- "+ev.Msg)
	}
	return strings.Join(parts, " ")
}

type parsedLine struct {
	ev  eventRecord
	raw []byte
}

// readTailLines returns the last n lines of f matching the filter.
func readTailLines(f io.Reader, n int, match func(eventRecord) bool) []parsedLine {
	if n <= 0 {
		return nil
	}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)

	ring := make([]parsedLine, 0, n)
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev eventRecord
		if json.Unmarshal(raw, &ev) != nil || !match(ev) {
			continue
		}
		// scanner reuses its buffer
		line := parsedLine{ev: ev, raw: append([]byte(nil), raw...)}
		if len(ring) < n {
			ring = append(ring, line)
		} else {
			copy(ring, ring[1:])
			ring[n-1] = line
		}
	}
	return ring
}

func trimLine(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

func durPrecision(ms float64) int {
	if ms >= 100 {
		return 0
	}
	if ms >= 1 {
		return 1
	}
	return 2
}
