package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store writes catalog entries under a root directory, one JSON document
// per repository. The path is a deterministic function of owner and repo,
// so re-processing overwrites in place and never creates duplicates.
type Store struct {
	root string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Path returns the file path for a repository's catalog entry.
func (s *Store) Path(owner, repo string) string {
	return filepath.Join(s.root, owner, repo+".json")
}

// Write persists the entry, creating the owner directory on demand. The
// write is a full overwrite via temp file and rename.
func (s *Store) Write(e *Entry) error {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("encode entry %s/%s: %w", e.Owner, e.Repo, err)
	}

	dir := filepath.Join(s.root, e.Owner)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create owner dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+e.Repo+"-*.json")
	if err != nil {
		return fmt.Errorf("create temp entry: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path(e.Owner, e.Repo)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace entry: %w", err)
	}
	return nil
}

// Read loads an entry back from disk. Used by tests and downstream tooling.
func (s *Store) Read(owner, repo string) (*Entry, error) {
	data, err := os.ReadFile(s.Path(owner, repo))
	if err != nil {
		return nil, err
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("parse entry %s/%s: %w", owner, repo, err)
	}
	return &e, nil
}
