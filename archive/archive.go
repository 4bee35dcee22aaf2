package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"arxiv-daily/models"
)

// DateFormat is the archive day key layout.
const DateFormat = "2006-01-02"

const indexFileName = "index.json"

// Day is one dated collection of summaries. Collections are append-only:
// a run may add to today's collection but never rewrites another date.
type Day struct {
	Date    string                `json:"date"`
	Entries []models.PaperSummary `json:"entries"`

	// TrendOverview is the model-written synthesis of the day's papers,
	// shown at the top of the day page and the mail report.
	TrendOverview string `json:"trend_overview,omitempty"`
}

// Store is the dated summary archive.
type Store interface {
	// AppendDay merges entries into the collection for date. Entries
	// whose paper id is already present on that date are dropped.
	AppendDay(ctx context.Context, date string, entries []models.PaperSummary) error

	// SetTrend stores the trend overview for date, keeping the entries.
	SetTrend(ctx context.Context, date string, overview string) error

	// Day loads one dated collection. A missing date yields an empty Day.
	Day(ctx context.Context, date string) (*Day, error)

	// Dates returns the archive index: all dates with a collection,
	// ascending.
	Dates(ctx context.Context) ([]string, error)
}

// FileStore keeps one JSON file per date plus an index file under
// {dataDir}/archive. This directory is the source the site renderer and
// the preview server read from.
type FileStore struct {
	dir string
}

func NewFileStore(dataDir string) *FileStore {
	return &FileStore{dir: filepath.Join(dataDir, "archive")}
}

func (s *FileStore) dayPath(date string) string {
	return filepath.Join(s.dir, date+".json")
}

func (s *FileStore) AppendDay(_ context.Context, date string, entries []models.PaperSummary) error {
	if _, err := time.Parse(DateFormat, date); err != nil {
		return fmt.Errorf("invalid archive date %q: %w", date, err)
	}

	day, err := s.loadDay(date)
	if err != nil {
		return err
	}

	existing := make(map[string]bool, len(day.Entries))
	for _, e := range day.Entries {
		existing[e.Paper.PaperID] = true
	}
	for _, e := range entries {
		if existing[e.Paper.PaperID] {
			continue
		}
		existing[e.Paper.PaperID] = true
		day.Entries = append(day.Entries, e)
	}

	if err := writeJSONAtomic(s.dayPath(date), day); err != nil {
		return err
	}
	return s.addToIndex(date)
}

func (s *FileStore) SetTrend(_ context.Context, date string, overview string) error {
	if _, err := time.Parse(DateFormat, date); err != nil {
		return fmt.Errorf("invalid archive date %q: %w", date, err)
	}

	day, err := s.loadDay(date)
	if err != nil {
		return err
	}
	day.TrendOverview = overview
	return writeJSONAtomic(s.dayPath(date), day)
}

func (s *FileStore) Day(_ context.Context, date string) (*Day, error) {
	return s.loadDay(date)
}

func (s *FileStore) Dates(_ context.Context) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, indexFileName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var dates []string
	if err := json.Unmarshal(data, &dates); err != nil {
		return nil, fmt.Errorf("decode archive index: %w", err)
	}
	return dates, nil
}

func (s *FileStore) loadDay(date string) (*Day, error) {
	data, err := os.ReadFile(s.dayPath(date))
	if os.IsNotExist(err) {
		return &Day{Date: date}, nil
	}
	if err != nil {
		return nil, err
	}

	var day Day
	if err := json.Unmarshal(data, &day); err != nil {
		return nil, fmt.Errorf("decode archive day %s: %w", date, err)
	}
	return &day, nil
}

func (s *FileStore) addToIndex(date string) error {
	dates, err := s.Dates(context.Background())
	if err != nil {
		return err
	}
	for _, d := range dates {
		if d == date {
			return nil
		}
	}
	dates = append(dates, date)
	sort.Strings(dates)
	return writeJSONAtomic(filepath.Join(s.dir, indexFileName), dates)
}

// writeJSONAtomic writes via temp file + rename so a crash never leaves a
// partial archive behind.
func writeJSONAtomic(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
