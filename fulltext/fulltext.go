package fulltext

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/advancedlogic/GoOse/pkg/goose"
	readability "github.com/go-shiori/go-readability"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"

	"arxiv-daily/config"
	"arxiv-daily/models"
)

// Enricher adds extracted full text to a paper. Tests use a fake.
type Enricher interface {
	Enrich(ctx context.Context, paper models.Paper) (string, error)
}

// HTMLEnricher pulls the arXiv HTML rendition of a paper and extracts
// readable text with a readability -> trafilatura -> goose chain.
type HTMLEnricher struct {
	cfg     config.FullTextConfig
	baseURL string
	client  *http.Client
}

func New(cfg config.FullTextConfig) *HTMLEnricher {
	return NewWithBaseURL(cfg, "https://arxiv.org/html")
}

// NewWithBaseURL is used by tests to point the enricher at a local server.
func NewWithBaseURL(cfg config.FullTextConfig, baseURL string) *HTMLEnricher {
	return &HTMLEnricher{
		cfg:     cfg,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Enrich returns the paper's abstract followed by the key sections of its
// HTML rendition, capped at MaxChars. Errors leave the paper usable with
// its abstract only; the caller logs and continues.
func (e *HTMLEnricher) Enrich(ctx context.Context, paper models.Paper) (string, error) {
	htmlStr, err := e.fetchHTML(ctx, paper.PaperID)
	if err != nil {
		return "", err
	}

	text, err := ExtractText(htmlStr)
	if err != nil {
		return "", err
	}

	if sections := ExtractKeySections(text); sections != "" {
		text = sections
	}
	text = truncateRunes(text, e.cfg.MaxChars)

	return "=== Abstract ===\n" + paper.Abstract + "\n\n" + text, nil
}

func (e *HTMLEnricher) fetchHTML(ctx context.Context, paperID string) (string, error) {
	url := e.baseURL + "/" + paperID + "v1"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch html rendition: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch html rendition: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// ExtractText runs the extractor chain over raw HTML. Readability is the
// main parser; trafilatura and goose are fallbacks for pages it rejects.
func ExtractText(htmlStr string) (string, error) {
	if text, err := parseWithReadability(htmlStr); err == nil && text != "" {
		return text, nil
	}
	if text, err := parseWithTrafilatura(htmlStr); err == nil && text != "" {
		return text, nil
	}
	return parseWithGoose(htmlStr)
}

func parseWithReadability(htmlStr string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return "", err
	}

	article, err := readability.FromDocument(doc, nil)
	if err != nil {
		return "", err
	}
	return article.TextContent, nil
}

func parseWithTrafilatura(htmlStr string) (string, error) {
	article, err := trafilatura.Extract(strings.NewReader(htmlStr), trafilatura.Options{})
	if err != nil {
		return "", err
	}
	return article.ContentText, nil
}

func parseWithGoose(htmlStr string) (string, error) {
	g := goose.New()
	article, err := g.ExtractFromRawHTML(htmlStr, "")
	if err != nil {
		return "", err
	}
	return article.CleanedText, nil
}
