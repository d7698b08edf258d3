package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// webSearch queries the Brave search API when a key is configured, and
// falls back to scraping DuckDuckGo's HTML results otherwise. Network and
// timeout failures surface as distinct error strings, never as panics.
func (ts *toolset) webSearch(ctx context.Context, query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return "Error: Empty query"
	}
	ts.logger.Info("web_search called", zap.String("query", query))

	if ts.config != nil && ts.config.BraveAPIKey != "" {
		return ts.braveSearch(ctx, query)
	}
	return ts.duckDuckGoSearch(ctx, query)
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Title string `json:"title"`
			URL   string `json:"url"`
		} `json:"results"`
	} `json:"web"`
}

func (ts *toolset) braveSearch(ctx context.Context, query string) string {
	endpoint := fmt.Sprintf("https://api.search.brave.com/res/v1/web/search?q=%s&count=3", url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", ts.config.BraveAPIKey)

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			ts.logger.Error("Brave search timeout", zap.Error(err))
			return "Error: Search request timed out"
		}
		ts.logger.Error("Brave search request error", zap.Error(err))
		return fmt.Sprintf("Error: Network request failed - %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Error: Search API returned HTTP %d", resp.StatusCode)
	}

	var data braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		ts.logger.Error("Brave search response format error", zap.Error(err))
		return "Error: Invalid response format from search API"
	}

	if len(data.Web.Results) == 0 {
		return "No results found."
	}
	lines := make([]string, 0, len(data.Web.Results))
	for _, r := range data.Web.Results {
		lines = append(lines, fmt.Sprintf("%s: %s", r.Title, r.URL))
	}
	return strings.Join(lines, "\n")
}

// duckDuckGoSearch is the keyless fallback: fetch the HTML results page and
// extract result anchors.
func (ts *toolset) duckDuckGoSearch(ctx context.Context, query string) string {
	searchURL := fmt.Sprintf("https://html.duckduckgo.com/html/?q=%s", url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "text/html")

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return "Error: Search request timed out"
		}
		return fmt.Sprintf("Error: Network request failed - %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Error: Search returned HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "Error: Invalid response format from search"
	}

	results := ParseDuckDuckGoResults(doc, 3)
	if len(results) == 0 {
		return "No results found."
	}
	return strings.Join(results, "\n")
}

// ParseDuckDuckGoResults extracts up to limit "Title: URL" lines from a
// DuckDuckGo HTML results document.
func ParseDuckDuckGoResults(doc *goquery.Document, limit int) []string {
	var results []string
	doc.Find("a.result__a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		title := strings.TrimSpace(s.Text())
		href, _ := s.Attr("href")
		href = unwrapDuckDuckGoURL(href)
		if title != "" {
			results = append(results, fmt.Sprintf("%s: %s", title, href))
		}
		return len(results) < limit
	})
	return results
}

// unwrapDuckDuckGoURL strips DuckDuckGo's redirect wrapper from result links
func unwrapDuckDuckGoURL(raw string) string {
	if idx := strings.Index(raw, "uddg="); idx != -1 {
		wrapped := raw[idx+5:]
		if amp := strings.Index(wrapped, "&"); amp != -1 {
			wrapped = wrapped[:amp]
		}
		if decoded, err := url.QueryUnescape(wrapped); err == nil {
			return decoded
		}
	}
	return raw
}

func isTimeout(err error) bool {
	var timeoutErr interface{ Timeout() bool }
	return errors.As(err, &timeoutErr) && timeoutErr.Timeout()
}
