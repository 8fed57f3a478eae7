package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abelbrown/truthlens/internal/analysis"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	st, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func response(score float64, grade string) analysis.Response {
	return analysis.Response{
		OverallTrustScore: &analysis.TrustScore{Score: score, Grade: grade, Recommendation: "rec"},
		SourceValidation:  &analysis.SourceValidation{Domain: "bbc.com", Tier: "high", Warnings: []string{}},
	}
}

func mustRecord(t *testing.T, req analysis.Request, resp analysis.Response, at time.Time) Record {
	t.Helper()
	rec, err := RecordFrom(req, resp, at)
	if err != nil {
		t.Fatalf("RecordFrom failed: %v", err)
	}
	return rec
}

func TestOpen(t *testing.T) {
	st := openMemory(t)

	var name string
	err := st.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='analyses'").Scan(&name)
	if err != nil {
		t.Fatalf("analyses table not created: %v", err)
	}
}

func TestRecordFrom(t *testing.T) {
	long := strings.Repeat("é", PreviewLen+50)
	rec := mustRecord(t, analysis.Request{Text: long}, response(72.5, "B"), time.Now())

	if rec.ContentType != "text" {
		t.Errorf("ContentType = %q", rec.ContentType)
	}
	if n := len([]rune(rec.Preview)); n != PreviewLen {
		t.Errorf("preview has %d runes, want %d", n, PreviewLen)
	}
	if rec.TrustScore != 72.5 || rec.Grade != "B" {
		t.Errorf("score fields = %v %q", rec.TrustScore, rec.Grade)
	}
	if rec.ID == "" || rec.ContentHash == "" {
		t.Error("id and hash must be set")
	}

	if _, err := RecordFrom(analysis.Request{Text: "x"}, analysis.Response{}, time.Now()); !errors.Is(err, analysis.ErrMissingTrustScore) {
		t.Errorf("incomplete response error = %v", err)
	}
}

func TestContentHashDistinguishesType(t *testing.T) {
	a := ContentHash(analysis.Request{Text: "https://bbc.com"})
	b := ContentHash(analysis.Request{URL: "https://bbc.com"})
	if a == b {
		t.Error("same content under different tabs must hash differently")
	}
	if a != ContentHash(analysis.Request{Text: "https://bbc.com"}) {
		t.Error("hash must be stable")
	}
}

func TestSaveAndGet(t *testing.T) {
	st := openMemory(t)
	now := time.Now().Truncate(time.Second)

	rec := mustRecord(t, analysis.Request{URL: "https://bbc.com"}, response(88, "A"), now)
	id, err := st.Save(rec)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if id != rec.ID {
		t.Errorf("Save returned id %q, want %q", id, rec.ID)
	}

	got, err := st.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Preview != "https://bbc.com" || got.Grade != "A" || !got.CreatedAt.Equal(now) {
		t.Errorf("Get returned %+v", got)
	}

	resp, err := got.Response()
	if err != nil {
		t.Fatalf("Response() failed: %v", err)
	}
	if resp.SourceValidation == nil || resp.SourceValidation.Domain != "bbc.com" {
		t.Errorf("stored result lost sections: %+v", resp)
	}

	byPrefix, err := st.Get(id[:8])
	if err != nil || byPrefix.ID != id {
		t.Errorf("Get(prefix) = %+v, %v", byPrefix, err)
	}

	if _, err := st.Get("does-not-exist"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSaveSameContentReplaces(t *testing.T) {
	st := openMemory(t)
	req := analysis.Request{Text: "same article"}
	t0 := time.Now().Add(-time.Hour)

	first, err := st.Save(mustRecord(t, req, response(40, "F"), t0))
	if err != nil {
		t.Fatal(err)
	}
	second, err := st.Save(mustRecord(t, req, response(65, "C"), t0.Add(time.Minute)))
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		t.Errorf("re-analysis should keep id %q, got %q", first, second)
	}
	n, _ := st.Count()
	if n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
	got, _ := st.Get(first)
	if got.Grade != "C" {
		t.Errorf("grade = %q, want the newer result", got.Grade)
	}
}

func TestRecentOrderAndLimit(t *testing.T) {
	st := openMemory(t)
	base := time.Now()

	for i := 0; i < 5; i++ {
		rec := mustRecord(t, analysis.Request{Text: fmt.Sprintf("article %d", i)}, response(float64(50+i), "D"), base.Add(time.Duration(i)*time.Minute))
		if _, err := st.Save(rec); err != nil {
			t.Fatal(err)
		}
	}

	recs, err := st.Recent(3)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("Recent(3) returned %d", len(recs))
	}
	if recs[0].Preview != "article 4" || recs[2].Preview != "article 2" {
		t.Errorf("wrong order: %q .. %q", recs[0].Preview, recs[2].Preview)
	}

	removed, err := st.Clear()
	if err != nil || removed != 5 {
		t.Errorf("Clear() = %d, %v", removed, err)
	}
	if recs, _ := st.Recent(10); len(recs) != 0 {
		t.Errorf("Recent after Clear returned %d", len(recs))
	}
}

func TestConcurrentAccess(t *testing.T) {
	st := openMemory(t)
	now := time.Now()
	var wg sync.WaitGroup

	// testing.T methods are not goroutine-safe
	errCh := make(chan error, 20)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			rec, err := RecordFrom(analysis.Request{Text: fmt.Sprintf("w%d", n)}, response(70, "B"), now)
			if err != nil {
				errCh <- err
				return
			}
			if _, err := st.Save(rec); err != nil {
				errCh <- fmt.Errorf("Save failed for writer %d: %v", n, err)
			}
		}(i)
	}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := st.Recent(100); err != nil {
				errCh <- fmt.Errorf("Recent failed: %v", err)
			}
		}()
	}

	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Error(err)
	}

	if n, _ := st.Count(); n != 10 {
		t.Errorf("expected 10 records, got %d", n)
	}
}
