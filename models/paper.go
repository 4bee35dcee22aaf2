package models

import (
	"strings"
	"time"
)

// Paper is a fetched arXiv paper's metadata. Immutable once fetched.
type Paper struct {
	// PaperID is the arXiv identifier without version suffix,
	// e.g. "2401.00794".
	PaperID string `bson:"paper_id" json:"paper_id"`

	Title           string    `bson:"title" json:"title"`
	Abstract        string    `bson:"abstract" json:"abstract"`
	Authors         []string  `bson:"authors" json:"authors"`
	PrimaryCategory string    `bson:"primary_category" json:"primary_category"`
	Categories      []string  `bson:"categories" json:"categories"`
	Published       time.Time `bson:"published" json:"published"`
	Updated         time.Time `bson:"updated" json:"updated"`

	// EntryURL is the abs page, PDFURL the pdf rendition.
	EntryURL string `bson:"entry_url" json:"entry_url"`
	PDFURL   string `bson:"pdf_url" json:"pdf_url"`

	Comment string `bson:"comment,omitempty" json:"comment,omitempty"`

	// FullText is the extracted HTML-rendition text when enrichment
	// succeeded; empty means abstract-only.
	FullText string `bson:"-" json:"-"`
}

func (p Paper) AuthorsCSV() string {
	return strings.Join(p.Authors, ", ")
}

// ExtractPaperID normalizes an arXiv entry id to the bare paper id.
// Accepts "http://arxiv.org/abs/2401.00794v1", "arxiv:2401.00794v2"
// or an already bare id, and strips the version suffix.
func ExtractPaperID(entryID string) string {
	id := entryID
	if i := strings.Index(id, "arxiv.org/abs/"); i >= 0 {
		id = id[i+len("arxiv.org/abs/"):]
	}
	id = strings.TrimPrefix(id, "arxiv:")

	// Strip a trailing version marker such as v1, v12.
	if i := strings.LastIndex(id, "v"); i > 0 {
		digitsOnly := true
		for _, r := range id[i+1:] {
			if r < '0' || r > '9' {
				digitsOnly = false
				break
			}
		}
		if digitsOnly && i+1 < len(id) {
			id = id[:i]
		}
	}
	return id
}
