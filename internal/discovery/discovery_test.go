package discovery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zig-Index/registry/internal/github"
)

// scriptedSearcher returns one canned response per call, in order.
type scriptedSearcher struct {
	pages   []*github.SearchPage
	errs    []error
	cursors []string // cursor seen on each call
	calls   int
}

func (s *scriptedSearcher) SearchPage(_ context.Context, _ string, cursor string) (*github.SearchPage, error) {
	s.cursors = append(s.cursors, cursor)
	i := s.calls
	s.calls++
	if err := s.errs[i]; err != nil {
		return nil, err
	}
	return s.pages[i], nil
}

func identity(id string) github.RepoIdentity {
	var n github.RepoIdentity
	n.ID = id
	n.Name = "repo-" + id
	n.Owner.Login = "owner"
	n.NameWithOwner = "owner/repo-" + id
	return n
}

func newTestEngine(s Searcher) *Engine {
	e := NewEngine(s, 0)
	e.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return e
}

func TestDiscoverPaginatesToCompletion(t *testing.T) {
	s := &scriptedSearcher{
		pages: []*github.SearchPage{
			{
				PageInfo: github.PageInfo{HasNextPage: true, EndCursor: "c1"},
				Nodes:    []github.RepoIdentity{identity("1"), identity("2")},
			},
			{
				PageInfo: github.PageInfo{HasNextPage: false},
				Nodes:    []github.RepoIdentity{identity("3")},
			},
		},
		errs: []error{nil, nil},
	}

	records, err := newTestEngine(s).Discover(context.Background(), "topic:zig-package fork:false")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"", "c1"}, s.cursors)
	assert.Equal(t, "owner/repo-1", records[0].FullName)
}

func TestDiscoverRetriesSamePageAfterRateLimit(t *testing.T) {
	s := &scriptedSearcher{
		pages: []*github.SearchPage{
			{
				PageInfo: github.PageInfo{HasNextPage: true, EndCursor: "c1"},
				Nodes:    []github.RepoIdentity{identity("1")},
			},
			nil, // rate limited
			{
				PageInfo: github.PageInfo{HasNextPage: false},
				Nodes:    []github.RepoIdentity{identity("2")},
			},
		},
		errs: []error{
			nil,
			&github.RateLimitError{ResumeAt: time.Now()},
			nil,
		},
	}

	records, err := newTestEngine(s).Discover(context.Background(), "q")
	require.NoError(t, err)

	// The throttled page is retried with the same cursor; nothing is lost
	// or duplicated.
	assert.Equal(t, []string{"", "c1", "c1"}, s.cursors)
	require.Len(t, records, 2)
	assert.Equal(t, "1", records[0].ID)
	assert.Equal(t, "2", records[1].ID)
}

func TestDiscoverReturnsPartialOnTransportError(t *testing.T) {
	s := &scriptedSearcher{
		pages: []*github.SearchPage{
			{
				PageInfo: github.PageInfo{HasNextPage: true, EndCursor: "c1"},
				Nodes:    []github.RepoIdentity{identity("1")},
			},
			nil,
		},
		errs: []error{nil, &github.TransportError{StatusCode: 502, Message: "bad gateway"}},
	}

	records, err := newTestEngine(s).Discover(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "1", records[0].ID)
}

func TestDiscoverStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &scriptedSearcher{
		pages: []*github.SearchPage{
			{
				PageInfo: github.PageInfo{HasNextPage: true, EndCursor: "c1"},
				Nodes:    []github.RepoIdentity{identity("1")},
			},
		},
		errs: []error{nil},
	}

	records, err := newTestEngine(s).Discover(ctx, "q")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, records, 1)
}
