package clipper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// DefaultMaxChars bounds the text handed to the planner prompt.
const DefaultMaxChars = 6000

// Clipper fetches inspiration pages and reduces them to readable text.
type Clipper struct {
	httpClient *http.Client
	maxChars   int
}

// NewClipper creates a new Clipper instance.
func NewClipper() *Clipper {
	return &Clipper{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		maxChars:   DefaultMaxChars,
	}
}

// FetchText downloads url and returns the text of its body without
// scripts, navigation and ads.
func (c *Clipper) FetchText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "ai-trip-planner/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, header, footer, iframe, noscript, form, ads, .ads, #ads").Remove()

	body := doc.Find("article")
	if body.Length() == 0 {
		body = doc.Find("body")
	}

	var parts []string
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		parts = append(parts, title)
	}
	if text := strings.Join(strings.Fields(body.Text()), " "); text != "" {
		parts = append(parts, text)
	}

	return truncate(strings.Join(parts, "\n"), c.maxChars), nil
}

func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	s = s[:limit]
	for !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
