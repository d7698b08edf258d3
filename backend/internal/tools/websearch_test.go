package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"rico-bot/backend/internal/identity"
	"rico-bot/backend/internal/memory"
	"rico-bot/backend/internal/store"
	"rico-bot/backend/pkg/config"
	"rico-bot/backend/pkg/logger"
)

// rewriteTransport redirects every outbound request to the test server
type rewriteTransport struct {
	target *url.URL
}

func (t rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = t.target.Scheme
	req.URL.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func newSearchToolset(serverURL string, braveKey string) *toolset {
	target, _ := url.Parse(serverURL)
	return &toolset{
		memory:     memory.NewManager(store.NewMemStore(), nil),
		identity:   identity.NewRegistry(nil),
		config:     &config.Config{BraveAPIKey: braveKey},
		httpClient: &http.Client{Transport: rewriteTransport{target: target}},
		logger:     logger.Get(),
	}
}

func TestWebSearchEmptyQuery(t *testing.T) {
	ts := newTestToolset()
	if got := ts.webSearch(context.Background(), "   "); got != "Error: Empty query" {
		t.Errorf("Expected empty-query error, got %q", got)
	}
}

func TestBraveSearchFormatsResults(t *testing.T) {
	var gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Subscription-Token")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"web":{"results":[
			{"title":"Go","url":"https://go.dev"},
			{"title":"Go docs","url":"https://go.dev/doc"}
		]}}`))
	}))
	defer server.Close()

	ts := newSearchToolset(server.URL, "brave-key")
	got := ts.webSearch(context.Background(), "golang")

	if gotToken != "brave-key" {
		t.Errorf("API key not sent, got header %q", gotToken)
	}
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 result lines, got %q", got)
	}
	if lines[0] != "Go: https://go.dev" {
		t.Errorf("Unexpected line format: %q", lines[0])
	}
}

func TestBraveSearchNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"web":{"results":[]}}`))
	}))
	defer server.Close()

	ts := newSearchToolset(server.URL, "brave-key")
	if got := ts.webSearch(context.Background(), "zzz"); got != "No results found." {
		t.Errorf("Expected no-results message, got %q", got)
	}
}

func TestBraveSearchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	ts := newSearchToolset(server.URL, "brave-key")
	if got := ts.webSearch(context.Background(), "golang"); got != "Error: Search API returned HTTP 429" {
		t.Errorf("Expected HTTP status error, got %q", got)
	}
}

func TestBraveSearchBadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	ts := newSearchToolset(server.URL, "brave-key")
	if got := ts.webSearch(context.Background(), "golang"); got != "Error: Invalid response format from search API" {
		t.Errorf("Expected format error, got %q", got)
	}
}

func TestDuckDuckGoFallbackWithoutKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>
			<a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev&rut=x">The Go Programming Language</a>
			<a class="result__a" href="https://go.dev/doc">Documentation</a>
		</body></html>`))
	}))
	defer server.Close()

	ts := newSearchToolset(server.URL, "")
	got := ts.webSearch(context.Background(), "golang")

	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 results, got %q", got)
	}
	if lines[0] != "The Go Programming Language: https://go.dev" {
		t.Errorf("Redirect wrapper not unwrapped: %q", lines[0])
	}
}

func TestParseDuckDuckGoResultsLimit(t *testing.T) {
	html := `<html><body>
		<a class="result__a" href="https://a.example">A</a>
		<a class="result__a" href="https://b.example">B</a>
		<a class="result__a" href="https://c.example">C</a>
		<a class="result__a" href="https://d.example">D</a>
	</body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	results := ParseDuckDuckGoResults(doc, 3)
	if len(results) != 3 {
		t.Errorf("Expected limit of 3, got %d", len(results))
	}
}

func TestUnwrapDuckDuckGoURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev&rut=abc", "https://go.dev"},
		{"https://plain.example/page", "https://plain.example/page"},
		{"//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2Fdoc", "https://go.dev/doc"},
	}
	for _, tt := range tests {
		if got := unwrapDuckDuckGoURL(tt.in); got != tt.want {
			t.Errorf("unwrapDuckDuckGoURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
