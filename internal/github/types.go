package github

import (
	"encoding/json"
	"time"
)

// graphQLRequest is the POST body sent to the GraphQL endpoint.
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphQLResponse is the envelope every GraphQL exchange comes back in.
// Errors may be populated even on a 200 response.
type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

type graphQLError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// PageInfo carries the search pagination cursor.
type PageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// SearchPage is one page of repository search results.
type SearchPage struct {
	PageInfo PageInfo       `json:"pageInfo"`
	Nodes    []RepoIdentity `json:"nodes"`
}

type searchData struct {
	Search SearchPage `json:"search"`
}

// RepoIdentity is the lightweight identity tuple returned by the search
// query. It carries just enough to decide whether a repository needs a full
// detail fetch.
type RepoIdentity struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	NameWithOwner string     `json:"nameWithOwner"`
	Owner         struct {
		Login string `json:"login"`
	} `json:"owner"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	DefaultBranchRef *BranchRef `json:"defaultBranchRef"`
}

// BranchRef is the head of a repository's default branch.
type BranchRef struct {
	Target struct {
		OID string `json:"oid"`
	} `json:"target"`
}

// HeadCommit returns the head commit hash, or "" when the default branch is
// empty or absent.
func (r *RepoIdentity) HeadCommit() string {
	if r.DefaultBranchRef == nil {
		return ""
	}
	return r.DefaultBranchRef.Target.OID
}

type nodesData struct {
	Nodes []*RepoDetail `json:"nodes"`
}

// RepoDetail is the full per-repository field set from the bulk detail
// query. Pointer fields are absent for repositories that lack them.
type RepoDetail struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	NameWithOwner string  `json:"nameWithOwner"`
	Description   *string `json:"description"`
	HomepageURL   *string `json:"homepageUrl"`

	StargazerCount int `json:"stargazerCount"`
	ForkCount      int `json:"forkCount"`
	Watchers       struct {
		TotalCount int `json:"totalCount"`
	} `json:"watchers"`

	IsArchived bool      `json:"isArchived"`
	IsDisabled bool      `json:"isDisabled"`
	IsFork     bool      `json:"isFork"`
	UpdatedAt  time.Time `json:"updatedAt"`

	PrimaryLanguage *struct {
		Name string `json:"name"`
	} `json:"primaryLanguage"`

	LicenseInfo *struct {
		SpdxID string `json:"spdxId"`
	} `json:"licenseInfo"`

	RepositoryTopics struct {
		Nodes []struct {
			Topic struct {
				Name string `json:"name"`
			} `json:"topic"`
		} `json:"nodes"`
	} `json:"repositoryTopics"`

	DefaultBranchRef *BranchRef  `json:"defaultBranchRef"`
	Owner            OwnerDetail `json:"owner"`

	Releases struct {
		Nodes []ReleaseNode `json:"nodes"`
	} `json:"releases"`

	Manifest    *Blob `json:"manifest"`
	ReadmeUpper *Blob `json:"readmeUpper"`
	ReadmeLower *Blob `json:"readmeLower"`
}

// Topics flattens the topic connection into plain names.
func (r *RepoDetail) Topics() []string {
	if len(r.RepositoryTopics.Nodes) == 0 {
		return nil
	}
	topics := make([]string, 0, len(r.RepositoryTopics.Nodes))
	for _, n := range r.RepositoryTopics.Nodes {
		topics = append(topics, n.Topic.Name)
	}
	return topics
}

// HeadCommit returns the head commit hash, or "" for an empty default branch.
func (r *RepoDetail) HeadCommit() string {
	if r.DefaultBranchRef == nil {
		return ""
	}
	return r.DefaultBranchRef.Target.OID
}

// OwnerDetail is the polymorphic owner shape. User-only fields (bio,
// company, follower counts) and the organization description are each
// populated only for the matching account kind.
type OwnerDetail struct {
	Login           string     `json:"login"`
	AvatarURL       string     `json:"avatarUrl"`
	Name            *string    `json:"name"`
	Bio             *string    `json:"bio"`
	OrgBio          *string    `json:"orgBio"`
	Company         *string    `json:"company"`
	Location        *string    `json:"location"`
	WebsiteURL      *string    `json:"websiteUrl"`
	TwitterUsername *string    `json:"twitterUsername"`
	CreatedAt       *time.Time `json:"createdAt"`
	Followers       *struct {
		TotalCount int `json:"totalCount"`
	} `json:"followers"`
	Following *struct {
		TotalCount int `json:"totalCount"`
	} `json:"following"`
}

// ReleaseNode is one release with its downloadable assets.
type ReleaseNode struct {
	TagName       string     `json:"tagName"`
	Name          *string    `json:"name"`
	Description   *string    `json:"description"`
	IsPrerelease  bool       `json:"isPrerelease"`
	PublishedAt   *time.Time `json:"publishedAt"`
	URL           string     `json:"url"`
	ReleaseAssets struct {
		Nodes []AssetNode `json:"nodes"`
	} `json:"releaseAssets"`
}

// AssetNode is one downloadable release asset.
type AssetNode struct {
	Name        string `json:"name"`
	DownloadURL string `json:"downloadUrl"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// Blob is a git blob fetched by path expression.
type Blob struct {
	Text string `json:"text"`
}
