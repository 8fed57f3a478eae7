package main

import (
	"strings"
	"testing"
)

const sampleLog = `{"t":"2026-10-17T10:00:00Z","level":"info","kind":"analysis.submit","comp":"cli","session_id":"a","seq":1,"content_type":"text"}
not json
{"t":"2026-10-17T10:00:02Z","level":"info","kind":"analysis.succeeded","comp":"cli","session_id":"a","seq":1,"score":0,"grade":"F","dur_ms":2000}
{"t":"2026-10-17T10:01:00Z","level":"warn","kind":"analysis.failed","comp":"tui","session_id":"b","seq":1,"reason":"timeout","msg":"too slow"}
`

func TestReadTailLines(t *testing.T) {
	all := func(eventRecord) bool { return true }

	lines := readTailLines(strings.NewReader(sampleLog), 2, all)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].ev.Kind != "analysis.succeeded" || lines[1].ev.Kind != "analysis.failed" {
		t.Errorf("tail kept the wrong lines: %s, %s", lines[0].ev.Kind, lines[1].ev.Kind)
	}

	warn := func(ev eventRecord) bool { return levelRank(ev.Level) >= levelRank("warn") }
	lines = readTailLines(strings.NewReader(sampleLog), 10, warn)
	if len(lines) != 1 || lines[0].ev.SessionID != "b" {
		t.Errorf("level filter returned %+v", lines)
	}

	if got := readTailLines(strings.NewReader(sampleLog), 0, all); got != nil {
		t.Errorf("tail 0 should return nothing, got %d", len(got))
	}
}

func TestFormatEvent(t *testing.T) {
	lines := readTailLines(strings.NewReader(sampleLog), 10, func(eventRecord) bool { return true })

	ok := formatEvent(lines[1].ev)
	for _, want := range []string{"INFO", "analysis.succeeded", "#1", "score=0.0", "grade=F", "(2000ms)"} {
		if !strings.Contains(ok, want) {
			t.Errorf("%q missing %q", ok, want)
		}
	}

	failed := formatEvent(lines[2].ev)
	for _, want := range []string{"WARN", "reason=timeout", "- too slow"} {
		if !strings.Contains(failed, want) {
			t.Errorf("%q missing %q", failed, want)
		}
	}
}
