// Package syncer drives the detail-fetching half of the pipeline: batches
// of reconciled ids are bulk-fetched, normalized into catalog entries, and
// recorded in the ledger, with the ledger flushed after every batch.
package syncer

import (
	"context"
	"time"

	"github.com/Zig-Index/registry/internal/catalog"
	"github.com/Zig-Index/registry/internal/github"
	"github.com/Zig-Index/registry/internal/ledger"
	"github.com/Zig-Index/registry/internal/logger"
)

// NodeFetcher is the transport slice the fetcher needs.
type NodeFetcher interface {
	FetchRepoNodes(ctx context.Context, ids []string) ([]github.RepoDetail, error)
}

// EntryWriter persists catalog entries.
type EntryWriter interface {
	Write(e *catalog.Entry) error
}

// Fetcher fetches full details for a batch of ids, writes one catalog file
// per surviving repository, and updates the ledger in place.
type Fetcher struct {
	client NodeFetcher
	store  EntryWriter
	now    func() time.Time

	processed int
	skipped   int
}

// NewFetcher creates a fetcher writing through store.
func NewFetcher(client NodeFetcher, store EntryWriter) *Fetcher {
	return &Fetcher{client: client, store: store, now: time.Now}
}

// Process handles one batch. Archived or disabled repositories are skipped
// entirely: no catalog file, no ledger mutation, so a stale ledger entry
// keeps surfacing as updated until the repository drops out of discovery or
// is unarchived (an idempotent no-op, by contract). The ledger entry for a
// repository is written only after its catalog file landed on disk.
//
// Transport failures abort the whole batch and are returned to the caller,
// which owns the retry/abandon policy.
func (f *Fetcher) Process(ctx context.Context, ids []string, appTagged map[string]bool, led *ledger.Ledger) error {
	details, err := f.client.FetchRepoNodes(ctx, ids)
	if err != nil {
		return err
	}

	for i := range details {
		d := &details[i]
		if d.IsArchived || d.IsDisabled {
			logger.Debug("skipping archived or disabled repository", "repo", d.NameWithOwner)
			f.skipped++
			continue
		}

		entry := Normalize(d, appTagged[d.ID])
		if err := f.store.Write(entry); err != nil {
			logger.Error("catalog write failed", "repo", d.NameWithOwner, "err", err)
			continue
		}

		led.Put(ledger.Entry{
			ID:         d.ID,
			Name:       d.Name,
			Owner:      d.Owner.Login,
			Type:       entry.Type,
			UpdatedAt:  d.UpdatedAt,
			CommitHash: d.HeadCommit(),
			LastSynced: f.now(),
		})
		f.processed++
		logger.Debug("catalog entry written", "repo", d.NameWithOwner)
	}
	return nil
}

// Processed returns the number of catalog entries written so far.
func (f *Fetcher) Processed() int { return f.processed }

// Skipped returns the number of archived or disabled repositories skipped.
func (f *Fetcher) Skipped() int { return f.skipped }
