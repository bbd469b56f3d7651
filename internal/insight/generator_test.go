package insight

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestTruncateTitle(t *testing.T) {
	if got := TruncateTitle("  A   short\n title  "); got != "A short title" {
		t.Fatalf("expected collapsed whitespace, got %q", got)
	}

	long := strings.Repeat("a", 250)
	got := TruncateTitle(long)
	if len([]rune(got)) != 200 {
		t.Fatalf("expected 200 runes, got %d", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsized title, got %q", got)
	}

	exact := strings.Repeat("b", 200)
	if got := TruncateTitle(exact); got != exact {
		t.Fatalf("a 200 rune title must pass through unchanged, got %q", got)
	}
}

func TestSplitGenerated(t *testing.T) {
	title, content := splitGenerated("The headline\nAnd the body\nwith more lines")
	if title != "The headline" {
		t.Fatalf("expected title 'The headline', got %q", title)
	}
	if content != "And the body\nwith more lines" {
		t.Fatalf("unexpected content %q", content)
	}

	title, content = splitGenerated("only one line")
	if title != "only one line" || content != "" {
		t.Fatalf("expected empty content for a single line, got %q / %q", title, content)
	}
}

func TestCompleteNoAPIKey(t *testing.T) {
	g := &Generator{client: http.DefaultClient}

	if _, err := g.complete(context.Background(), "prompt"); err == nil {
		t.Fatal("complete() was expected to fail without an API key, but didnt!")
	}
}

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 1 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		json.NewEncoder(w).Encode(generateResponse{
			Candidates: []struct {
				Content generateContent `json:"content"`
			}{
				{Content: generateContent{Parts: []generatePart{{Text: "Title line\nBody line"}}}},
			},
		})
	}))
	defer srv.Close()

	g := &Generator{
		apiKey:   "test-key",
		endpoint: srv.URL,
		client:   &http.Client{Timeout: 5 * time.Second},
	}

	text, err := g.complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("complete() error = %v", err)
	}
	if text != "Title line\nBody line" {
		t.Fatalf("unexpected completion %q", text)
	}
}

func TestCompleteUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := &Generator{
		apiKey:   "test-key",
		endpoint: srv.URL,
		client:   http.DefaultClient,
	}

	if _, err := g.complete(context.Background(), "prompt"); err == nil {
		t.Fatal("complete() was expected to fail on an upstream error, but didnt!")
	}
}

func TestGenerateFallsBack(t *testing.T) {
	g := &Generator{client: http.DefaultClient}

	title, content := g.generate(context.Background(), Metrics{Username: "testuser"})
	if title != "Essential Financial Wellness Tips" {
		t.Fatalf("expected the fallback title, got %q", title)
	}
	if content == "" {
		t.Fatal("expected fallback content")
	}
}
