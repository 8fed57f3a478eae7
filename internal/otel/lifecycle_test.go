package otel

import (
	"bytes"
	"context"
	"testing"

	"github.com/abelbrown/truthlens/internal/analysis"
	"github.com/abelbrown/truthlens/internal/client"
	"github.com/abelbrown/truthlens/internal/lifecycle"
)

type stubAnalyzer struct {
	resp analysis.Response
	err  error
}

func (s stubAnalyzer) Analyze(ctx context.Context, req analysis.Request, token string) (analysis.Response, error) {
	return s.resp, s.err
}

func TestLifecycleObserverSuccess(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	resp := analysis.Response{OverallTrustScore: &analysis.TrustScore{Score: 92, Grade: "A"}}
	ctrl := lifecycle.New(stubAnalyzer{resp: resp}, lifecycle.WithObserver(LifecycleObserver(l, "cli")))

	if _, err := ctrl.Submit(context.Background(), analysis.Request{Text: "claim"}, nil); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	l.Close()

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("expected submit and succeeded events, got %d", len(lines))
	}
	if lines[0]["kind"] != "analysis.submit" || lines[0]["content_type"] != "text" {
		t.Errorf("first event = %v", lines[0])
	}
	done := lines[1]
	if done["kind"] != "analysis.succeeded" || done["score"] != float64(92) || done["grade"] != "A" {
		t.Errorf("second event = %v", done)
	}
	if done["seq"] != lines[0]["seq"] {
		t.Errorf("events should share a seq: %v vs %v", done["seq"], lines[0]["seq"])
	}
	if done["comp"] != "cli" {
		t.Errorf("comp = %v", done["comp"])
	}
}

func TestLifecycleObserverFailure(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	err := &client.StatusError{Status: 503, Message: "Models are loading"}
	ctrl := lifecycle.New(stubAnalyzer{err: err}, lifecycle.WithObserver(LifecycleObserver(l, "tui")))
	ctrl.Submit(context.Background(), analysis.Request{URL: "https://example.com"}, nil)
	l.Close()

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("got %d events", len(lines))
	}
	failed := lines[1]
	if failed["kind"] != "analysis.failed" || failed["level"] != "warn" {
		t.Errorf("event = %v", failed)
	}
	if failed["reason"] != string(lifecycle.ServerError) || failed["status"] != float64(503) {
		t.Errorf("reason/status = %v/%v", failed["reason"], failed["status"])
	}
	if failed["msg"] != "Models are loading" {
		t.Errorf("msg = %v", failed["msg"])
	}
}

func TestLifecycleObserverReset(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	ctrl := lifecycle.New(stubAnalyzer{}, lifecycle.WithObserver(LifecycleObserver(l, "tui")))
	ctrl.Reset()
	l.Close()

	lines := decodeLines(t, &buf)
	if len(lines) != 1 || lines[0]["kind"] != "analysis.reset" {
		t.Errorf("events = %v", lines)
	}
}
