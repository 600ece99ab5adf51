package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// newTestClient builds a client pointed at a test server, with the
// proactive throttle opened up so tests run instantly.
func newTestClient(endpoint string) *Client {
	return &Client{
		http: &http.Client{},
		limiter: &RateLimiter{
			remaining: GraphQLRateLimit,
			limit:     GraphQLRateLimit,
			bucket:    rate.NewLimiter(rate.Inf, 1),
		},
		endpoint: endpoint,
		pageSize: DefaultPageSize,
	}
}

func TestDoRateLimitedByStatusWithResetHeader(t *testing.T) {
	reset := time.Now().Add(10 * time.Minute).Unix()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(HeaderRateRemaining, "0")
		w.Header().Set(HeaderRateReset, fmt.Sprintf("%d", reset))
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Do(context.Background(), "query {}", nil, nil)

	var rateLimitErr *RateLimitError
	require.ErrorAs(t, err, &rateLimitErr)
	assert.Equal(t, time.Unix(reset, 0), rateLimitErr.ResumeAt)
	assert.True(t, IsRateLimited(err))
}

func TestDoForbiddenWithRetryAfterIsRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(HeaderRetryAfter, "60")
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	before := time.Now()
	err := newTestClient(srv.URL).Do(context.Background(), "query {}", nil, nil)

	var rateLimitErr *RateLimitError
	require.ErrorAs(t, err, &rateLimitErr)
	assert.WithinDuration(t, before.Add(time.Minute), rateLimitErr.ResumeAt, 10*time.Second)
}

func TestDoForbiddenWithoutRateHeadersIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Resource protected by organization SAML enforcement", http.StatusForbidden)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Do(context.Background(), "query {}", nil, nil)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.StatusForbidden, transportErr.StatusCode)
	assert.Contains(t, transportErr.Message, "SAML")
	assert.False(t, IsRateLimited(err))
}

func TestDoRateLimitedByStatusWithoutHeadersDefaultsToAnHour(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	before := time.Now()
	err := newTestClient(srv.URL).Do(context.Background(), "query {}", nil, nil)

	var rateLimitErr *RateLimitError
	require.ErrorAs(t, err, &rateLimitErr)
	assert.WithinDuration(t, before.Add(time.Hour), rateLimitErr.ResumeAt, time.Minute)
}

func TestDoRateLimitedByErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"data": null, "errors": [{"type": "RATE_LIMITED", "message": "API rate limit exceeded"}]}`)
	}))
	defer srv.Close()

	before := time.Now()
	err := newTestClient(srv.URL).Do(context.Background(), "query {}", nil, nil)

	var rateLimitErr *RateLimitError
	require.ErrorAs(t, err, &rateLimitErr)
	assert.WithinDuration(t, before.Add(time.Hour), rateLimitErr.ResumeAt, time.Minute)
}

func TestDoJoinsGraphQLErrorMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"errors": [{"type": "NOT_FOUND", "message": "first"}, {"message": "second"}]}`)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Do(context.Background(), "query {}", nil, nil)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Contains(t, transportErr.Message, "first; second")
	assert.False(t, IsRateLimited(err))
}

func TestDoUnexpectedStatusIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Do(context.Background(), "query {}", nil, nil)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.StatusBadGateway, transportErr.StatusCode)
}

func TestSearchPageSendsCursorAndDecodesResults(t *testing.T) {
	var body struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		fmt.Fprint(w, `{"data": {"search": {
			"pageInfo": {"hasNextPage": true, "endCursor": "c1"},
			"nodes": [{
				"id": "R_1",
				"name": "zap",
				"nameWithOwner": "zigzap/zap",
				"owner": {"login": "zigzap"},
				"updatedAt": "2025-05-01T00:00:00Z",
				"defaultBranchRef": {"target": {"oid": "abc123"}}
			}]
		}}}`)
	}))
	defer srv.Close()

	page, err := newTestClient(srv.URL).SearchPage(context.Background(), QueryPackages, "prev")
	require.NoError(t, err)

	assert.Equal(t, QueryPackages, body.Variables["searchQuery"])
	assert.Equal(t, "prev", body.Variables["cursor"])

	assert.True(t, page.PageInfo.HasNextPage)
	assert.Equal(t, "c1", page.PageInfo.EndCursor)
	require.Len(t, page.Nodes, 1)
	assert.Equal(t, "zigzap", page.Nodes[0].Owner.Login)
	assert.Equal(t, "abc123", page.Nodes[0].HeadCommit())
}

func TestSearchPageFirstPageSendsNullCursor(t *testing.T) {
	var vars map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Variables map[string]any `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		vars = body.Variables
		fmt.Fprint(w, `{"data": {"search": {"pageInfo": {"hasNextPage": false}, "nodes": []}}}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).SearchPage(context.Background(), QueryPackages, "")
	require.NoError(t, err)

	cursor, present := vars["cursor"]
	assert.True(t, present)
	assert.Nil(t, cursor)
}

func TestFetchRepoNodesDropsNullNodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"data": {"nodes": [
			null,
			{"id": "R_2", "name": "kept", "nameWithOwner": "o/kept", "owner": {"login": "o"},
			 "updatedAt": "2025-05-01T00:00:00Z", "isArchived": false}
		]}}`)
	}))
	defer srv.Close()

	details, err := newTestClient(srv.URL).FetchRepoNodes(context.Background(), []string{"R_1", "R_2"})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "R_2", details[0].ID)
	assert.Equal(t, "", details[0].HeadCommit())
}

func TestRepoDetailTopicsFlatten(t *testing.T) {
	var d RepoDetail
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "R_1",
		"repositoryTopics": {"nodes": [
			{"topic": {"name": "zig"}},
			{"topic": {"name": "http"}}
		]}
	}`), &d))
	assert.Equal(t, []string{"zig", "http"}, d.Topics())
}
