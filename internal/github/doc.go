// Package github implements the rate-limit-aware transport used to talk to
// the GitHub API. The sync pipeline runs entirely on the GraphQL endpoint
// (paginated repository search plus bulk detail lookups by node id); the
// REST client is used once at startup to validate credentials and report
// the remaining quota.
//
// The transport never retries by itself. Rate-limit conditions surface as a
// distinguished *RateLimitError carrying a resume time so the discovery and
// batch layers can each apply their own backoff policy.
package github
