package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultPageSize is the search page size.
	DefaultPageSize = 100

	// defaultResumeDelay is used when a rate-limit condition carries no
	// usable reset information.
	defaultResumeDelay = time.Hour

	// rateLimitedErrorType is the GraphQL error code for throttling.
	rateLimitedErrorType = "RATE_LIMITED"

	graphQLEndpoint = "https://api.github.com/graphql"
)

// Client talks to the GitHub API with a shared rate limiter. All pipeline
// traffic goes over GraphQL; a REST client on the same authenticated
// transport handles credential validation.
type Client struct {
	http     *http.Client
	rest     *gh.Client
	limiter  *RateLimiter
	endpoint string
	pageSize int
}

// NewClient creates an authenticated client from a static access token.
func NewClient(ctx context.Context, token string) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout

	return &Client{
		http:     tc,
		rest:     gh.NewClient(tc),
		limiter:  NewRateLimiter(),
		endpoint: graphQLEndpoint,
		pageSize: DefaultPageSize,
	}
}

// SetPageSize overrides the search page size (1-100).
func (c *Client) SetPageSize(n int) {
	if n > 0 && n <= 100 {
		c.pageSize = n
	}
}

// Do executes one GraphQL exchange and decodes the data payload into out.
// It returns *RateLimitError when the API throttled the request and
// *TransportError for every other failure. It never retries.
func (c *Client) Do(ctx context.Context, query string, variables map[string]any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return &TransportError{Message: fmt.Sprintf("encode request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Message: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &TransportError{Message: err.Error()}
	}
	defer resp.Body.Close()

	c.limiter.UpdateFromResponse(resp)

	if resp.StatusCode == http.StatusTooManyRequests ||
		(resp.StatusCode == http.StatusForbidden && throttled(resp)) {
		return &RateLimitError{ResumeAt: resumeFromHeaders(resp)}
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &TransportError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	var envelope graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return &TransportError{Message: fmt.Sprintf("decode response: %v", err)}
	}

	if len(envelope.Errors) > 0 {
		for _, gqlErr := range envelope.Errors {
			if gqlErr.Type == rateLimitedErrorType {
				// No reset header on this path; back off a full window.
				return &RateLimitError{ResumeAt: time.Now().Add(defaultResumeDelay)}
			}
		}
		msgs := make([]string, 0, len(envelope.Errors))
		for _, gqlErr := range envelope.Errors {
			msgs = append(msgs, gqlErr.Message)
		}
		return &TransportError{Message: strings.Join(msgs, "; ")}
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return &TransportError{Message: fmt.Sprintf("decode data: %v", err)}
		}
	}
	return nil
}

// SearchPage runs one page of the repository search. An empty cursor
// requests the first page.
func (c *Client) SearchPage(ctx context.Context, query, cursor string) (*SearchPage, error) {
	vars := map[string]any{
		"searchQuery": query,
		"first":       c.pageSize,
		"cursor":      nil,
	}
	if cursor != "" {
		vars["cursor"] = cursor
	}

	var data searchData
	if err := c.Do(ctx, searchRepositoriesQuery, vars, &data); err != nil {
		return nil, err
	}
	return &data.Search, nil
}

// FetchRepoNodes bulk-fetches full details for a batch of node ids.
// Ids that no longer resolve come back as null nodes and are dropped.
func (c *Client) FetchRepoNodes(ctx context.Context, ids []string) ([]RepoDetail, error) {
	var data nodesData
	if err := c.Do(ctx, repositoryDetailsQuery, map[string]any{"ids": ids}, &data); err != nil {
		return nil, err
	}

	details := make([]RepoDetail, 0, len(data.Nodes))
	for _, node := range data.Nodes {
		if node != nil && node.ID != "" {
			details = append(details, *node)
		}
	}
	return details, nil
}

// ValidateCredentials checks the token with a REST call and returns the
// authenticated login.
func (c *Client) ValidateCredentials(ctx context.Context) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	user, resp, err := c.rest.Users.Get(ctx, "")
	if err != nil {
		return "", wrapRESTError(err, "validate credentials")
	}
	if resp != nil {
		c.limiter.UpdateFromResponse(resp.Response)
	}
	return user.GetLogin(), nil
}

// RateQuota returns the remaining GraphQL point budget for the token.
func (c *Client) RateQuota(ctx context.Context) (remaining, limit int, err error) {
	limits, _, err := c.rest.RateLimit.Get(ctx)
	if err != nil {
		return 0, 0, wrapRESTError(err, "get rate limit")
	}
	if gql := limits.GetGraphQL(); gql != nil {
		return gql.Remaining, gql.Limit, nil
	}
	return 0, 0, nil
}

// wrapRESTError converts go-github errors to the transport taxonomy.
func wrapRESTError(err error, operation string) error {
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return &TransportError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    fmt.Sprintf("%s: %s", operation, ghErr.Message),
		}
	}
	return &TransportError{Message: fmt.Sprintf("%s: %v", operation, err)}
}

// throttled reports whether a 403 carries rate-limit evidence. Forbidden
// responses without it (SAML enforcement, insufficient token scopes) are
// permanent and must not be retried as rate limits.
func throttled(resp *http.Response) bool {
	if resp.Header.Get(HeaderRetryAfter) != "" {
		return true
	}
	return resp.Header.Get(HeaderRateRemaining) == "0"
}

// resumeFromHeaders computes the resume time for a throttled response,
// falling back to a full window when no header is usable.
func resumeFromHeaders(resp *http.Response) time.Time {
	if reset := resp.Header.Get(HeaderRateReset); reset != "" {
		if val, err := strconv.ParseInt(reset, 10, 64); err == nil {
			return time.Unix(val, 0)
		}
	}
	if retry := resp.Header.Get(HeaderRetryAfter); retry != "" {
		if seconds, err := strconv.Atoi(retry); err == nil {
			return time.Now().Add(time.Duration(seconds) * time.Second)
		}
	}
	return time.Now().Add(defaultResumeDelay)
}
