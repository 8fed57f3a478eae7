package otel

import (
	"sync"
	"time"

	"github.com/abelbrown/truthlens/internal/lifecycle"
)

// LifecycleObserver returns a lifecycle.WithObserver callback that emits one
// event per controller transition. Durations are measured from submit; the
// controller allows only one outstanding submission, so one clock suffices.
func LifecycleObserver(l *Logger, comp string) func(lifecycle.Snapshot) {
	var mu sync.Mutex
	var started time.Time

	elapsed := func() time.Duration {
		mu.Lock()
		defer mu.Unlock()
		if started.IsZero() {
			return 0
		}
		d := time.Since(started)
		started = time.Time{}
		return d
	}

	return func(s lifecycle.Snapshot) {
		ev := Event{Comp: comp, Seq: s.Seq, ContentType: s.Request.ContentType()}

		switch s.State {
		case lifecycle.Submitting:
			mu.Lock()
			started = time.Now()
			mu.Unlock()
			ev.Level, ev.Kind = LevelInfo, KindSubmit

		case lifecycle.Succeeded:
			ev.Level, ev.Kind = LevelInfo, KindSucceeded
			ev.Dur = elapsed()
			if s.Response != nil && s.Response.OverallTrustScore != nil {
				score := s.Response.OverallTrustScore.Score
				ev.Score = &score
				ev.Grade = s.Response.OverallTrustScore.Grade
			}
			if s.View != nil {
				ev.Sections = len(s.View.Sections)
			}

		case lifecycle.Failed:
			ev.Level, ev.Kind = LevelWarn, KindFailed
			ev.Dur = elapsed()
			if s.Failure != nil {
				ev.Reason = string(s.Failure.Reason)
				ev.Status = s.Failure.Status
				ev.Msg = s.Failure.Message
			}

		case lifecycle.Idle:
			ev.Level, ev.Kind = LevelDebug, KindReset
			elapsed()
		}

		l.Emit(ev)
	}
}
