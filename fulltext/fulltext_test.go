package fulltext_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arxiv-daily/config"
	"arxiv-daily/fulltext"
	"arxiv-daily/models"
)

const paperHTML = `<!DOCTYPE html>
<html>
<head><title>Sparse Mixture-of-Experts</title></head>
<body>
<article>
<h1>Sparse Mixture-of-Experts for Long Context Reasoning</h1>
<p>1. Introduction</p>
<p>Long context reasoning remains difficult for dense transformer models
because attention cost grows quadratically with sequence length, and most
deployed systems therefore truncate their inputs aggressively.</p>
<p>2. Related Work</p>
<p>Earlier mixture-of-experts systems route tokens to a small subset of
feed-forward experts, trading parameter count against per-token compute.</p>
<p>3. Method</p>
<p>We introduce a router that conditions expert choice on a compressed
summary of the preceding context window, trained jointly with the experts
on a curriculum of increasing sequence lengths.</p>
<p>4. Experiments</p>
<p>We evaluate on five long-context benchmarks.</p>
<p>5. Conclusion</p>
<p>Context-conditioned routing improves long-range reasoning at constant
inference cost and transfers across model scales.</p>
</article>
</body>
</html>`

func TestExtractKeySections(t *testing.T) {
	text := strings.Join([]string{
		"Some preamble",
		"1. Introduction",
		"Long context reasoning is hard.",
		"2. Related Work",
		"Earlier MoE systems route tokens.",
		"3. Method",
		"We condition the router on context.",
		"4. Experiments",
		"We evaluate on five benchmarks.",
		"5. Conclusion",
		"Routing on context helps.",
	}, "\n")

	got := fulltext.ExtractKeySections(text)

	assert.Contains(t, got, "=== Introduction ===")
	assert.Contains(t, got, "Long context reasoning is hard.")
	assert.Contains(t, got, "=== Related Work ===")
	assert.Contains(t, got, "=== Method ===")
	assert.Contains(t, got, "=== Conclusion ===")
	assert.Contains(t, got, "Routing on context helps.")
	// The Experiments section is not a key section.
	assert.NotContains(t, got, "five benchmarks")

	// Section order is fixed.
	intro := strings.Index(got, "=== Introduction ===")
	conclusion := strings.Index(got, "=== Conclusion ===")
	assert.Less(t, intro, conclusion)
}

func TestExtractKeySectionsTruncatesOnRuneBoundary(t *testing.T) {
	text := "1. Introduction\nab\n" + strings.Repeat("é", 9000)

	got := fulltext.ExtractKeySections(text)

	assert.True(t, utf8.ValidString(got))
	assert.Contains(t, got, "[truncated]")
}

func TestExtractKeySectionsNoneFound(t *testing.T) {
	assert.Equal(t, "", fulltext.ExtractKeySections("just a flat abstract with no headings"))
}

func TestExtractTextFromPaperHTML(t *testing.T) {
	text, err := fulltext.ExtractText(paperHTML)
	require.NoError(t, err)
	assert.Contains(t, text, "quadratically with sequence length")
}

func TestEnrichCombinesAbstractAndSections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2401.00001v1", r.URL.Path)
		w.Write([]byte(paperHTML))
	}))
	defer srv.Close()

	e := fulltext.NewWithBaseURL(config.FullTextConfig{Enabled: true, MaxChars: 20000}, srv.URL)
	paper := models.Paper{PaperID: "2401.00001", Abstract: "We study sparse expert routing."}

	text, err := e.Enrich(context.Background(), paper)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "=== Abstract ===\nWe study sparse expert routing."))
	assert.Contains(t, text, "compressed")
}

func TestEnrichUpstream404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	e := fulltext.NewWithBaseURL(config.FullTextConfig{MaxChars: 20000}, srv.URL)
	_, err := e.Enrich(context.Background(), models.Paper{PaperID: "2401.00001"})
	assert.Error(t, err)
}
