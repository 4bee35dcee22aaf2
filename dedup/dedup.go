package dedup

import (
	"context"
	"sort"

	"arxiv-daily/models"
)

// SeenSet is the set of paper identifiers already summarized in earlier
// runs. It is loaded at the start of a run, extended after successful
// summarization and saved once at the end.
type SeenSet map[string]struct{}

func NewSeenSet(ids ...string) SeenSet {
	s := make(SeenSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s SeenSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

func (s SeenSet) Add(id string) {
	s[id] = struct{}{}
}

// IDs returns the identifiers in sorted order for stable persistence.
func (s SeenSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Filter returns the subsequence of papers whose identifiers are not in
// seen, preserving input order. Pure: neither argument is modified.
func Filter(papers []models.Paper, seen SeenSet) []models.Paper {
	var out []models.Paper
	for _, p := range papers {
		if seen.Contains(p.PaperID) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Store persists the SeenSet across runs.
type Store interface {
	Load(ctx context.Context) (SeenSet, error)
	Save(ctx context.Context, seen SeenSet) error
}
