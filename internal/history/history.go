// Package history merges the account's remote analyses with the local cache
// and computes the dashboard figures.
package history

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/abelbrown/truthlens/internal/client"
	"github.com/abelbrown/truthlens/internal/store"
)

// Origin says where an entry came from.
type Origin string

const (
	Remote Origin = "remote"
	Local  Origin = "local"
)

// Entry is one row of the history table.
type Entry struct {
	ID          string    `json:"id"`
	Origin      Origin    `json:"origin"`
	ContentType string    `json:"content_type"`
	Preview     string    `json:"preview"`
	TrustScore  *float64  `json:"trust_score"`
	Grade       string    `json:"grade"`
	CreatedAt   time.Time `json:"created_at"`
}

// FromRemote converts a page of service history.
func FromRemote(items []client.HistoryItem) []Entry {
	out := make([]Entry, 0, len(items))
	for _, it := range items {
		out = append(out, Entry{
			ID:          strconv.Itoa(it.ID),
			Origin:      Remote,
			ContentType: it.ContentType,
			Preview:     it.ContentPreview,
			TrustScore:  it.TrustScore,
			Grade:       it.Grade,
			CreatedAt:   it.CreatedAt.Time,
		})
	}
	return out
}

// FromLocal converts cached records.
func FromLocal(recs []store.Record) []Entry {
	out := make([]Entry, 0, len(recs))
	for _, r := range recs {
		score := r.TrustScore
		out = append(out, Entry{
			ID:          r.ID,
			Origin:      Local,
			ContentType: r.ContentType,
			Preview:     r.Preview,
			TrustScore:  &score,
			Grade:       r.Grade,
			CreatedAt:   r.CreatedAt,
		})
	}
	return out
}

// sameWindow is how close a local and remote copy of one analysis can be.
const sameWindow = 2 * time.Minute

// Merge combines both sources newest first. A local entry that mirrors a
// remote one (same type and preview, saved within sameWindow) is dropped.
func Merge(remote, local []Entry) []Entry {
	out := slices.Clone(remote)
	for _, l := range local {
		if !mirrored(l, remote) {
			out = append(out, l)
		}
	}
	slices.SortStableFunc(out, func(a, b Entry) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

func mirrored(l Entry, remote []Entry) bool {
	for _, r := range remote {
		if r.ContentType != l.ContentType || r.Preview != l.Preview {
			continue
		}
		d := r.CreatedAt.Sub(l.CreatedAt)
		if d < 0 {
			d = -d
		}
		if d <= sameWindow {
			return true
		}
	}
	return false
}

// Stats are the dashboard figures.
type Stats struct {
	Total     int     `json:"total"`
	ThisMonth int     `json:"this_month"`
	Average   float64 `json:"average"` // rounded, 0 with no scored entries
}

// Summarize computes Stats over entries. total overrides the count when the
// service reports more rows than were fetched; pass 0 to count entries.
func Summarize(entries []Entry, total int, now time.Time) Stats {
	st := Stats{Total: cmp.Or(total, len(entries))}

	y, m, _ := now.Date()
	var sum float64
	var scored int
	for _, e := range entries {
		ey, em, _ := e.CreatedAt.In(now.Location()).Date()
		if ey == y && em == m {
			st.ThisMonth++
		}
		if e.TrustScore != nil {
			sum += *e.TrustScore
			scored++
		}
	}
	if scored > 0 {
		st.Average = math.Round(sum / float64(scored))
	}
	return st
}
