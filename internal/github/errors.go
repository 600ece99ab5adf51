package github

import (
	"errors"
	"fmt"
	"time"
)

// RateLimitError signals that the API throttled the request. It carries the
// time at which the caller may resume; callers sleep past ResumeAt and retry
// the same page or batch.
type RateLimitError struct {
	ResumeAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("github: rate limited, resume at %s", e.ResumeAt.Format(time.RFC3339))
}

// TransportError represents any other failed exchange with the API: network
// failures, unexpected HTTP statuses, or a GraphQL error payload.
type TransportError struct {
	StatusCode int // zero when the failure happened before a response
	Message    string
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("github: API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("github: %s", e.Message)
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}
