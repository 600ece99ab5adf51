// Package discovery finds candidate repositories through paginated search
// and classifies them against the ledger as new, updated, or removed.
package discovery

import (
	"context"
	"errors"
	"time"

	"github.com/Zig-Index/registry/internal/github"
	"github.com/Zig-Index/registry/internal/logger"
)

// resumeMargin is added to a rate-limit resume time before retrying, so a
// slightly skewed clock does not trip the limit again immediately.
const resumeMargin = 30 * time.Second

// Record is the transient identity tuple produced per discovered
// repository. It drives reconciliation and is not persisted.
type Record struct {
	ID         string
	Name       string
	Owner      string
	FullName   string
	UpdatedAt  time.Time
	CommitHash string // empty when the default branch has no commits

	// Application marks records found under the application-tagged query;
	// it feeds the category default during normalization.
	Application bool
}

// Searcher is the transport slice the engine needs.
type Searcher interface {
	SearchPage(ctx context.Context, query, cursor string) (*github.SearchPage, error)
}

// Engine pages a search query to completion.
type Engine struct {
	client    Searcher
	pagePause time.Duration
	sleep     func(context.Context, time.Duration) error
}

// NewEngine creates a discovery engine. pagePause is the delay between
// successful pages, keeping the run under the informal rate budget.
func NewEngine(client Searcher, pagePause time.Duration) *Engine {
	return &Engine{
		client:    client,
		pagePause: pagePause,
		sleep:     sleepCtx,
	}
}

// Discover pages through the search query and returns the accumulated
// records. On a rate-limit signal it sleeps past the resume time and
// retries the same page, so no records are lost or duplicated. Any other
// transport failure stops pagination and returns the partial result; only
// context cancellation is surfaced as an error.
func (e *Engine) Discover(ctx context.Context, query string) ([]Record, error) {
	var records []Record
	var cursor string

	for {
		page, err := e.client.SearchPage(ctx, query, cursor)
		if err != nil {
			var rateLimitErr *github.RateLimitError
			if errors.As(err, &rateLimitErr) {
				wait := time.Until(rateLimitErr.ResumeAt) + resumeMargin
				logger.Warn("discovery rate limited", "query", query, "resume_in", wait.Round(time.Second))
				if err := e.sleep(ctx, wait); err != nil {
					return records, err
				}
				continue // retry the same cursor
			}
			if ctx.Err() != nil {
				return records, ctx.Err()
			}
			logger.Error("discovery aborted, keeping partial results", "query", query, "count", len(records), "err", err)
			return records, nil
		}

		for i := range page.Nodes {
			records = append(records, fromIdentity(&page.Nodes[i]))
		}

		if !page.PageInfo.HasNextPage {
			return records, nil
		}
		cursor = page.PageInfo.EndCursor

		if err := e.sleep(ctx, e.pagePause); err != nil {
			return records, err
		}
	}
}

// Merge deduplicates records from multiple queries by id, keeping the first
// occurrence. Pagination already guarantees uniqueness within one query.
func Merge(lists ...[]Record) []Record {
	var merged []Record
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, r := range list {
			if seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			merged = append(merged, r)
		}
	}
	return merged
}

func fromIdentity(n *github.RepoIdentity) Record {
	return Record{
		ID:         n.ID,
		Name:       n.Name,
		Owner:      n.Owner.Login,
		FullName:   n.NameWithOwner,
		UpdatedAt:  n.UpdatedAt,
		CommitHash: n.HeadCommit(),
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
