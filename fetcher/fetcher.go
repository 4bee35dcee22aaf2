package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"arxiv-daily/config"
	"arxiv-daily/models"
)

const DefaultBaseURL = "https://export.arxiv.org/api/query"

// searchWindow is how many entries one query may return. It is wider than
// the per-run processing cap so a run can skip already seen papers and
// still fill the cap.
const searchWindow = 288

// Fetcher returns candidate papers for one run. The production
// implementation is Client; tests use a fake.
type Fetcher interface {
	Search(ctx context.Context) ([]models.Paper, error)
}

// Client queries the arXiv API and parses the Atom response.
type Client struct {
	cfg     config.SearchConfig
	baseURL string
	parser  *gofeed.Parser

	// Now is injectable for tests; nil means time.Now.
	Now func() time.Time
}

func New(cfg config.SearchConfig) *Client {
	return NewWithBaseURL(cfg, DefaultBaseURL)
}

// NewWithBaseURL is used by tests to point the client at a local server.
func NewWithBaseURL(cfg config.SearchConfig, baseURL string) *Client {
	fp := gofeed.NewParser()
	fp.Client = &http.Client{Timeout: 30 * time.Second}

	return &Client{
		cfg:     cfg,
		baseURL: strings.TrimRight(baseURL, "/"),
		parser:  fp,
	}
}

// Search runs one arXiv API query and returns the papers in upstream
// order. Network or parse errors are fatal for the run.
func (c *Client) Search(ctx context.Context) ([]models.Paper, error) {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	query := BuildQuery(c.cfg, now().UTC())

	params := url.Values{}
	params.Set("search_query", query)
	params.Set("start", "0")
	params.Set("max_results", fmt.Sprintf("%d", searchWindow))
	params.Set("sortBy", c.cfg.SortBy)
	params.Set("sortOrder", c.cfg.SortOrder)

	feedURL := c.baseURL + "?" + params.Encode()
	config.Logger.Debugf("arxiv query: %s", query)

	feed, err := c.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch arxiv feed: %w", err)
	}

	var papers []models.Paper
	for _, item := range feed.Items {
		papers = append(papers, itemToPaper(item))
	}
	return papers, nil
}

// BuildQuery assembles the arXiv search expression: a submittedDate
// window, the keyword expression scoped to the configured field, and the
// category OR-chain, AND-joined.
func BuildQuery(cfg config.SearchConfig, now time.Time) string {
	var parts []string

	if cfg.DaysBack > 0 {
		end := now.Format("20060102")
		start := now.AddDate(0, 0, -cfg.DaysBack).Format("20060102")
		parts = append(parts, fmt.Sprintf("submittedDate:[%s TO %s]", start, end))
	}

	if cfg.Query != "" {
		switch cfg.Scope {
		case "title":
			parts = append(parts, "ti:"+cfg.Query)
		case "abstract":
			parts = append(parts, "abs:"+cfg.Query)
		case "author":
			parts = append(parts, "au:"+cfg.Query)
		default:
			parts = append(parts, cfg.Query)
		}
	}

	var cats []string
	for _, cat := range cfg.Categories {
		if cat == "" {
			continue
		}
		if cfg.IncludeCrossListed {
			cats = append(cats, "cat:"+cat)
		} else {
			cats = append(cats, "primary_cat:"+cat)
		}
	}
	if len(cats) > 0 {
		parts = append(parts, "("+strings.Join(cats, " OR ")+")")
	}

	if len(parts) == 0 {
		return "*:*"
	}
	return strings.Join(parts, " AND ")
}

func itemToPaper(item *gofeed.Item) models.Paper {
	entryID := item.GUID
	if entryID == "" {
		entryID = item.Link
	}
	paperID := models.ExtractPaperID(entryID)

	var authors []string
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			authors = append(authors, a.Name)
		}
	}

	var published, updated time.Time
	if item.PublishedParsed != nil {
		published = *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		updated = *item.UpdatedParsed
	}

	p := models.Paper{
		PaperID:         paperID,
		Title:           cleanWhitespace(item.Title),
		Abstract:        cleanWhitespace(item.Description),
		Authors:         authors,
		PrimaryCategory: arxivExtension(item, "primary_category"),
		Categories:      item.Categories,
		Published:       published,
		Updated:         updated,
		EntryURL:        "https://arxiv.org/abs/" + paperID,
		PDFURL:          "https://arxiv.org/pdf/" + paperID,
		Comment:         arxivExtensionValue(item, "comment"),
	}
	if p.PrimaryCategory == "" && len(p.Categories) > 0 {
		p.PrimaryCategory = p.Categories[0]
	}
	return p
}

// arxivExtension reads the term attribute of an arxiv-namespace element,
// e.g. <arxiv:primary_category term="cs.AI"/>.
func arxivExtension(item *gofeed.Item, name string) string {
	exts, ok := item.Extensions["arxiv"]
	if !ok {
		return ""
	}
	for _, ext := range exts[name] {
		if term, ok := ext.Attrs["term"]; ok {
			return term
		}
	}
	return ""
}

// arxivExtensionValue reads the text content of an arxiv-namespace
// element, e.g. <arxiv:comment>12 pages</arxiv:comment>.
func arxivExtensionValue(item *gofeed.Item, name string) string {
	exts, ok := item.Extensions["arxiv"]
	if !ok {
		return ""
	}
	for _, ext := range exts[name] {
		if ext.Value != "" {
			return ext.Value
		}
	}
	return ""
}

// cleanWhitespace collapses the newline-wrapped text arXiv returns in
// titles and abstracts into single-line strings.
func cleanWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
