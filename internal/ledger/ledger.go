// Package ledger persists the authoritative sync state: one entry per
// tracked repository keyed by its stable remote id, plus the time of the
// last full sync. The ledger is loaded once at process start, mutated in
// memory by the run, and flushed to disk after every batch so a crash loses
// at most one batch of progress. The design assumes a single sync process;
// no file locking is used beyond an atomic rename on write.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Entry is the last-known sync state for one repository.
type Entry struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Owner      string    `json:"owner"`
	Type       string    `json:"type"`
	UpdatedAt  time.Time `json:"updatedAt"`
	CommitHash string    `json:"commitHash,omitempty"`
	LastSynced time.Time `json:"lastSynced"`
}

// Ledger is the full id-to-state mapping.
type Ledger struct {
	LastSync time.Time        `json:"lastSync"`
	Repos    map[string]Entry `json:"repos"`
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{Repos: make(map[string]Entry)}
}

// Load reads the ledger file at path. A missing file yields an empty
// ledger, not an error; a present but unreadable file is an error so a
// corrupt ledger never silently triggers a full re-sync.
func Load(path string) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	var l Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse ledger %s: %w", path, err)
	}
	if l.Repos == nil {
		l.Repos = make(map[string]Entry)
	}
	return &l, nil
}

// Save overwrites the ledger file via a temp file and rename in the same
// directory.
func (l *Ledger) Save(path string) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close ledger: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

// Get returns the entry for id, if tracked.
func (l *Ledger) Get(id string) (Entry, bool) {
	e, ok := l.Repos[id]
	return e, ok
}

// Put records the entry under its id.
func (l *Ledger) Put(e Entry) {
	l.Repos[e.ID] = e
}

// IDs returns all tracked ids in stable order.
func (l *Ledger) IDs() []string {
	ids := make([]string, 0, len(l.Repos))
	for id := range l.Repos {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
