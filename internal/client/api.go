package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/abelbrown/truthlens/internal/analysis"
	"github.com/abelbrown/truthlens/internal/session"
)

// Analyze submits one request. The overall score is not checked here.
func (c *Client) Analyze(ctx context.Context, req analysis.Request, token string) (analysis.Response, error) {
	data, err := c.do(ctx, http.MethodPost, "/api/analyze", token, req)
	if err != nil {
		return analysis.Response{}, err
	}
	resp, err := analysis.DecodeResponse(data)
	if err != nil {
		return analysis.Response{}, fmt.Errorf("client: %w: %v", ErrMalformed, err)
	}
	return resp, nil
}

// Health is the service health report.
type Health struct {
	Status       string `json:"status"`
	ModelsLoaded bool   `json:"models_loaded"`
	Timestamp    string `json:"timestamp"`
}

// Health queries GET /api/health.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	probe := *c
	probe.http = c.probe
	err := probe.doJSON(ctx, http.MethodGet, "/api/health", "", nil, &h)
	return h, err
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (*session.Session, error) {
	var s session.Session
	body := credentials{Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", "", body, &s); err != nil {
		return nil, err
	}
	if s.Token == "" {
		return nil, fmt.Errorf("client: login: %w: no token", ErrMalformed)
	}
	return &s, nil
}

// Signup registers a new account and returns its session.
func (c *Client) Signup(ctx context.Context, email, password, name string) (*session.Session, error) {
	var s session.Session
	body := credentials{Email: email, Password: password, Name: name}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/signup", "", body, &s); err != nil {
		return nil, err
	}
	if s.Token == "" {
		return nil, fmt.Errorf("client: signup: %w: no token", ErrMalformed)
	}
	return &s, nil
}

// Me returns the account behind token.
func (c *Client) Me(ctx context.Context, token string) (session.User, error) {
	var out struct {
		User session.User `json:"user"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/api/auth/me", token, nil, &out)
	return out.User, err
}

// Timestamp parses the service's ISO-8601 times, which may lack a zone.
// Zone-less values are taken as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: cannot parse %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// HistoryItem is one stored analysis. AnalysisResult is only populated by
// HistoryDetail.
type HistoryItem struct {
	ID             int             `json:"id"`
	ContentType    string          `json:"content_type"`
	ContentPreview string          `json:"content_preview"`
	TrustScore     *float64        `json:"trust_score"`
	Grade          string          `json:"grade"`
	CreatedAt      Timestamp       `json:"created_at"`
	AnalysisResult json.RawMessage `json:"analysis_result,omitempty"`
}

// Result decodes the stored analysis payload.
func (h HistoryItem) Result() (analysis.Response, error) {
	if len(h.AnalysisResult) == 0 || string(h.AnalysisResult) == "null" {
		return analysis.Response{}, fmt.Errorf("client: analysis %d has no stored result", h.ID)
	}
	resp, err := analysis.DecodeResponse(h.AnalysisResult)
	if err != nil {
		return analysis.Response{}, fmt.Errorf("client: analysis %d: %w: %v", h.ID, ErrMalformed, err)
	}
	return resp, nil
}

// HistoryPage is one page of the signed-in user's history.
type HistoryPage struct {
	Analyses []HistoryItem `json:"analyses"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	Pages    int           `json:"pages"`
}

// History lists the user's analyses, newest first.
func (c *Client) History(ctx context.Context, token string, page, perPage int) (HistoryPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	path := "/api/history"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out HistoryPage
	err := c.doJSON(ctx, http.MethodGet, path, token, nil, &out)
	return out, err
}

// HistoryDetail fetches one analysis including its stored result.
func (c *Client) HistoryDetail(ctx context.Context, token string, id int) (HistoryItem, error) {
	var out HistoryItem
	err := c.doJSON(ctx, http.MethodGet, "/api/history/"+strconv.Itoa(id), token, nil, &out)
	return out, err
}
