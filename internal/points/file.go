package points

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// FileStore emulates browser local storage: one JSON document mapping keys to
// JSON text. Saved points are the array stored under StorageKey; other keys
// in the document are preserved.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by the document at path.
// The file is created on first write.
func NewFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	s := &FileStore{path: path}
	// fail early on a corrupt document
	if _, err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

// List returns saved points in insertion order.
func (s *FileStore) List(ctx context.Context) ([]SavedPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	return decodePoints(doc)
}

// Add appends a point and rewrites the document.
func (s *FileStore) Add(ctx context.Context, p SavedPoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	pts, err := decodePoints(doc)
	if err != nil {
		return err
	}
	for _, old := range pts {
		if old.ID == p.ID {
			return fmt.Errorf("%s: %w", p.ID, ErrDuplicate)
		}
	}

	raw, err := json.Marshal(append(pts, p))
	if err != nil {
		return err
	}
	doc[StorageKey] = string(raw)

	return s.save(doc)
}

// Clear removes the saved points key.
func (s *FileStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	delete(doc, StorageKey)

	return s.save(doc)
}

// Close is a no-op; every write is already on disk.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) load() (map[string]string, error) {
	doc := make(map[string]string)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return doc, nil
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// save writes to a temp file and renames it over the document.
func (s *FileStore) save(doc map[string]string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(s.path), ".points-*.json")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	log.Trace().Str("path", s.path).Int("keys", len(doc)).Msg("Storage document written")
	return nil
}

func decodePoints(doc map[string]string) ([]SavedPoint, error) {
	raw, ok := doc[StorageKey]
	if !ok || raw == "" {
		return []SavedPoint{}, nil
	}

	var pts []SavedPoint
	if err := json.Unmarshal([]byte(raw), &pts); err != nil {
		return nil, err
	}
	if pts == nil {
		pts = []SavedPoint{}
	}
	return pts, nil
}
