package dedup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const seenFileName = "processed_papers.json"

// seenDocument is the on-disk shape of the seen set.
type seenDocument struct {
	PaperIDs    []string  `json:"paper_ids"`
	LastUpdated time.Time `json:"last_updated"`
}

// FileStore keeps the seen set as a JSON document in the data dir.
type FileStore struct {
	path string
}

func NewFileStore(dataDir string) *FileStore {
	return &FileStore{path: filepath.Join(dataDir, seenFileName)}
}

// Load reads the seen set. A missing file yields an empty set so the
// first run starts from scratch.
func (s *FileStore) Load(_ context.Context) (SeenSet, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return NewSeenSet(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seen set: %w", err)
	}

	var doc seenDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode seen set: %w", err)
	}
	return NewSeenSet(doc.PaperIDs...), nil
}

// Save writes the seen set atomically: temp file then rename.
func (s *FileStore) Save(_ context.Context, seen SeenSet) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	doc := seenDocument{
		PaperIDs:    seen.IDs(),
		LastUpdated: time.Now().UTC(),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
