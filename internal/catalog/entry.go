// Package catalog defines the normalized per-repository output document and
// the file store it is written to. Catalog files are a derived, overwritable
// projection of the latest fetch; the ledger remains the authoritative sync
// state. Each file is self-contained, so a partially completed run never
// corrupts previously written entries.
package catalog

import (
	"time"

	"github.com/Zig-Index/registry/internal/manifest"
)

// Repository types.
const (
	TypePackage     = "package"
	TypeApplication = "application"
	TypeProject     = "project"
)

// Default categories when no topic matches the whitelist.
const (
	CategoryCLI     = "cli"
	CategoryLibrary = "library"
)

// Entry is one catalog document, serialized to
// <root>/<owner>/<repo-name>.json.
type Entry struct {
	Name        string `json:"name"`
	Owner       string `json:"owner"`
	Repo        string `json:"repo"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	Category    string `json:"category,omitempty"`
	License     string `json:"license,omitempty"`
	Homepage    string `json:"homepage,omitempty"`
	Language    string `json:"language,omitempty"`
	Readme      string `json:"readme,omitempty"`

	Dependencies      []manifest.Dependency `json:"dependencies,omitempty"`
	MinimumZigVersion string                `json:"minimumZigVersion,omitempty"`

	Topics   []string `json:"topics"`
	Stars    int      `json:"stars"`
	Forks    int      `json:"forks"`
	Watchers int      `json:"watchers"`
	Fork     bool     `json:"fork"`

	UpdatedAt time.Time `json:"updatedAt"`

	OwnerProfile *OwnerProfile `json:"ownerProfile,omitempty"`
	Releases     []Release     `json:"releases"`
}

// OwnerProfile carries optional owner metadata. User accounts and
// organizations populate different subsets; absent fields are omitted.
type OwnerProfile struct {
	AvatarURL string     `json:"avatarUrl,omitempty"`
	Name      string     `json:"name,omitempty"`
	Bio       string     `json:"bio,omitempty"`
	Company   string     `json:"company,omitempty"`
	Location  string     `json:"location,omitempty"`
	Blog      string     `json:"blog,omitempty"`
	Twitter   string     `json:"twitter,omitempty"`
	Followers int        `json:"followers,omitempty"`
	Following int        `json:"following,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Release is one remote release or tag.
type Release struct {
	Tag         string     `json:"tag"`
	Name        string     `json:"name,omitempty"`
	Body        string     `json:"body,omitempty"`
	Prerelease  bool       `json:"prerelease"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	URL         string     `json:"url"`
	Assets      []Asset    `json:"assets,omitempty"`
}

// Asset is one downloadable release asset.
type Asset struct {
	Name        string `json:"name"`
	DownloadURL string `json:"downloadUrl"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType,omitempty"`
}
