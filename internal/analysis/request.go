// Package analysis is the UI-agnostic core shared by the TUI and the CLI:
// input normalization, the analysis wire schema, view-model construction and
// the pure presentation rules derived from it.
package analysis

import (
	"fmt"
	"strings"
)

// Tab identifies which input the user is filling in.
type Tab string

const (
	TabText  Tab = "text"
	TabURL   Tab = "url"
	TabImage Tab = "image"
)

// Tabs lists the input tabs in display order.
var Tabs = []Tab{TabText, TabURL, TabImage}

// Label returns the human-readable tab title.
func (t Tab) Label() string {
	switch t {
	case TabText:
		return "Text Analysis"
	case TabURL:
		return "URL Check"
	case TabImage:
		return "Image Verify"
	}
	return string(t)
}

// Next returns the tab after t, wrapping around.
func (t Tab) Next() Tab {
	for i, tab := range Tabs {
		if tab == t {
			return Tabs[(i+1)%len(Tabs)]
		}
	}
	return TabText
}

// Prev returns the tab before t, wrapping around.
func (t Tab) Prev() Tab {
	for i, tab := range Tabs {
		if tab == t {
			return Tabs[(i+len(Tabs)-1)%len(Tabs)]
		}
	}
	return TabText
}

// ParseTab converts a string into a Tab.
func ParseTab(s string) (Tab, error) {
	switch Tab(strings.ToLower(strings.TrimSpace(s))) {
	case TabText:
		return TabText, nil
	case TabURL:
		return TabURL, nil
	case TabImage:
		return TabImage, nil
	}
	return "", fmt.Errorf("unknown input tab %q (want text, url or image)", s)
}

// FormFields holds the raw values of all three inputs. Only the one matching
// the active tab is sent.
type FormFields struct {
	Text     string
	URL      string
	ImageURL string
}

// Request is a single analysis submission. The wire form always carries all
// three keys; the inactive ones are empty strings.
type Request struct {
	Text     string `json:"text"`
	URL      string `json:"url"`
	ImageURL string `json:"image_url"`
}

// NormalizeInput builds the Request for the active tab. The active field is
// trimmed; the other two are always "". URLs are not validated here.
func NormalizeInput(tab Tab, fields FormFields) (Request, error) {
	switch tab {
	case TabText:
		return Request{Text: strings.TrimSpace(fields.Text)}, nil
	case TabURL:
		return Request{URL: strings.TrimSpace(fields.URL)}, nil
	case TabImage:
		return Request{ImageURL: strings.TrimSpace(fields.ImageURL)}, nil
	}
	return Request{}, fmt.Errorf("unknown input tab %q", tab)
}

// Empty reports whether there is nothing to analyze.
func (r Request) Empty() bool {
	return r.Text == "" && r.URL == "" && r.ImageURL == ""
}

// ContentType returns "text", "url" or "image" for the populated field.
func (r Request) ContentType() string {
	switch {
	case r.Text != "":
		return "text"
	case r.URL != "":
		return "url"
	case r.ImageURL != "":
		return "image"
	}
	return ""
}

// Content returns the populated field's value.
func (r Request) Content() string {
	switch {
	case r.Text != "":
		return r.Text
	case r.URL != "":
		return r.URL
	}
	return r.ImageURL
}

// Preview returns at most max runes of the submitted content.
func (r Request) Preview(max int) string {
	runes := []rune(r.Content())
	if max <= 0 || len(runes) <= max {
		return string(runes)
	}
	return string(runes[:max])
}

// Example is a canned input offered per tab.
type Example struct {
	Label   string
	Content string
}

// Examples returns the sample inputs for a tab.
func Examples(tab Tab) []Example {
	switch tab {
	case TabText:
		return []Example{
			{Label: "Real News", Content: "Scientists at MIT published groundbreaking research in Nature journal regarding renewable energy."},
			{Label: "Fake News", Content: "BREAKING: Miracle cure discovered! Doctors HATE this! Share before they remove it!"},
		}
	case TabURL:
		return []Example{
			{Label: "BBC News", Content: "https://www.bbc.com/news"},
			{Label: "Reuters", Content: "https://www.reuters.com"},
		}
	case TabImage:
		return []Example{
			{Label: "Test Image", Content: "https://picsum.photos/800/600"},
		}
	}
	return nil
}
