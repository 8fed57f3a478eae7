package history

import (
	"testing"
	"time"

	"github.com/abelbrown/truthlens/internal/client"
	"github.com/abelbrown/truthlens/internal/store"
)

func ptr(v float64) *float64 { return &v }

func TestFromRemoteAndLocal(t *testing.T) {
	at := time.Date(2026, 10, 3, 8, 0, 0, 0, time.UTC)
	remote := FromRemote([]client.HistoryItem{
		{ID: 12, ContentType: "url", ContentPreview: "https://bbc.com", TrustScore: ptr(90), Grade: "A", CreatedAt: client.Timestamp{Time: at}},
	})
	if remote[0].ID != "12" || remote[0].Origin != Remote || *remote[0].TrustScore != 90 {
		t.Errorf("FromRemote = %+v", remote[0])
	}

	local := FromLocal([]store.Record{{ID: "abc", ContentType: "text", Preview: "hi", TrustScore: 40, Grade: "F", CreatedAt: at}})
	if local[0].Origin != Local || *local[0].TrustScore != 40 {
		t.Errorf("FromLocal = %+v", local[0])
	}
}

func TestMerge(t *testing.T) {
	t0 := time.Date(2026, 10, 10, 12, 0, 0, 0, time.UTC)
	remote := []Entry{
		{ID: "1", Origin: Remote, ContentType: "url", Preview: "https://bbc.com", CreatedAt: t0},
		{ID: "2", Origin: Remote, ContentType: "text", Preview: "old", CreatedAt: t0.Add(-48 * time.Hour)},
	}
	local := []Entry{
		// mirror of remote 1
		{ID: "a", Origin: Local, ContentType: "url", Preview: "https://bbc.com", CreatedAt: t0.Add(30 * time.Second)},
		// same content analysed again much later
		{ID: "b", Origin: Local, ContentType: "url", Preview: "https://bbc.com", CreatedAt: t0.Add(time.Hour)},
		{ID: "c", Origin: Local, ContentType: "image", Preview: "https://x/y.png", CreatedAt: t0.Add(-time.Hour)},
	}

	got := Merge(remote, local)
	wantIDs := []string{"b", "1", "c", "2"}
	if len(got) != len(wantIDs) {
		t.Fatalf("Merge returned %d entries, want %d: %+v", len(got), len(wantIDs), got)
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Errorf("entry %d = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	entries := []Entry{
		{TrustScore: ptr(90), CreatedAt: now.Add(-24 * time.Hour)},
		{TrustScore: ptr(61), CreatedAt: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)},
		{TrustScore: ptr(30), CreatedAt: time.Date(2026, 9, 30, 23, 0, 0, 0, time.UTC)},
		// same month, previous year
		{TrustScore: nil, CreatedAt: time.Date(2025, 10, 17, 0, 0, 0, 0, time.UTC)},
	}

	st := Summarize(entries, 0, now)
	if st.Total != 4 {
		t.Errorf("Total = %d, want 4", st.Total)
	}
	if st.ThisMonth != 2 {
		t.Errorf("ThisMonth = %d, want 2", st.ThisMonth)
	}
	if st.Average != 60 {
		t.Errorf("Average = %v, want 60 (round of 181/3)", st.Average)
	}

	if got := Summarize(entries, 57, now).Total; got != 57 {
		t.Errorf("reported total should win, got %d", got)
	}
	if empty := Summarize(nil, 0, now); empty != (Stats{}) {
		t.Errorf("empty Summarize = %+v", empty)
	}
}
