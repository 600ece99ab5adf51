package syncer

import (
	"strings"

	"github.com/Zig-Index/registry/internal/catalog"
	"github.com/Zig-Index/registry/internal/github"
	"github.com/Zig-Index/registry/internal/manifest"
)

// unspecifiedLicense is the SPDX sentinel for repositories with a license
// file GitHub could not classify; it is omitted from the catalog.
const unspecifiedLicense = "NOASSERTION"

// categoryWhitelist are the topic keywords recognized as categories,
// matched case-insensitively against a repository's topics.
var categoryWhitelist = []string{
	"gamedev", "game", "graphics", "gui", "terminal", "editor",
	"web", "http", "network", "networking", "database", "storage",
	"embedded", "crypto", "cryptography", "compression", "serialization",
	"parser", "parsing", "allocator", "async", "audio", "video", "image",
	"math", "science", "simulation", "testing", "bindings", "ffi",
	"cli", "tooling", "build",
}

var categorySet = func() map[string]bool {
	set := make(map[string]bool, len(categoryWhitelist))
	for _, c := range categoryWhitelist {
		set[c] = true
	}
	return set
}()

// Normalize maps one fetched repository onto its catalog entry.
// application marks repositories discovered under the application-tagged
// query; it only influences the category default.
func Normalize(d *github.RepoDetail, application bool) *catalog.Entry {
	topics := d.Topics()
	if topics == nil {
		// Marshal as [] rather than null; downstream consumers expect lists.
		topics = []string{}
	}

	var info manifest.Info
	if d.Manifest != nil {
		info = manifest.Extract(d.Manifest.Text)
	}

	entry := &catalog.Entry{
		Name:              d.Name,
		Owner:             d.Owner.Login,
		Repo:              d.Name,
		Type:              classifyType(topics, d.Manifest != nil),
		Category:          classifyCategory(topics, application),
		Dependencies:      info.Dependencies,
		MinimumZigVersion: info.MinimumZigVersion,
		Topics:            topics,
		Stars:             d.StargazerCount,
		Forks:             d.ForkCount,
		Watchers:          d.Watchers.TotalCount,
		Fork:              d.IsFork,
		UpdatedAt:         d.UpdatedAt,
		OwnerProfile:      ownerProfile(&d.Owner),
		Releases:          releases(d.Releases.Nodes),
	}

	if d.Description != nil {
		entry.Description = *d.Description
	}
	if d.HomepageURL != nil {
		entry.Homepage = *d.HomepageURL
	}
	if d.PrimaryLanguage != nil {
		entry.Language = d.PrimaryLanguage.Name
	}
	if d.LicenseInfo != nil && d.LicenseInfo.SpdxID != "" && d.LicenseInfo.SpdxID != unspecifiedLicense {
		entry.License = d.LicenseInfo.SpdxID
	}

	// Prefer the uppercase README, fall back to lowercase, else omit.
	switch {
	case d.ReadmeUpper != nil:
		entry.Readme = d.ReadmeUpper.Text
	case d.ReadmeLower != nil:
		entry.Readme = d.ReadmeLower.Text
	}

	return entry
}

// classifyType decides the published repository type. The topic and
// manifest signals are received here but the result is currently pinned to
// "project" for every repository.
// TODO: feed the zig-package/zig-application topics and manifest presence
// into this decision instead of discarding them.
func classifyType(topics []string, hasManifest bool) string {
	return catalog.TypeProject
}

// classifyCategory scans the topic list against the whitelist; the first
// match wins. Without a match, application-tagged repositories default to
// "cli" and everything else to "library".
func classifyCategory(topics []string, application bool) string {
	for _, t := range topics {
		if t = strings.ToLower(t); categorySet[t] {
			return t
		}
	}
	if application {
		return catalog.CategoryCLI
	}
	return catalog.CategoryLibrary
}

func ownerProfile(o *github.OwnerDetail) *catalog.OwnerProfile {
	p := &catalog.OwnerProfile{
		AvatarURL: o.AvatarURL,
		CreatedAt: o.CreatedAt,
	}
	if o.Name != nil {
		p.Name = *o.Name
	}
	// Organizations carry their description where users carry a bio.
	if o.Bio != nil {
		p.Bio = *o.Bio
	} else if o.OrgBio != nil {
		p.Bio = *o.OrgBio
	}
	if o.Company != nil {
		p.Company = *o.Company
	}
	if o.Location != nil {
		p.Location = *o.Location
	}
	if o.WebsiteURL != nil {
		p.Blog = *o.WebsiteURL
	}
	if o.TwitterUsername != nil {
		p.Twitter = *o.TwitterUsername
	}
	if o.Followers != nil {
		p.Followers = o.Followers.TotalCount
	}
	if o.Following != nil {
		p.Following = o.Following.TotalCount
	}
	return p
}

func releases(nodes []github.ReleaseNode) []catalog.Release {
	out := make([]catalog.Release, 0, len(nodes))
	for _, n := range nodes {
		rel := catalog.Release{
			Tag:         n.TagName,
			Prerelease:  n.IsPrerelease,
			PublishedAt: n.PublishedAt,
			URL:         n.URL,
		}
		if n.Name != nil {
			rel.Name = *n.Name
		}
		if n.Description != nil {
			rel.Body = *n.Description
		}
		for _, a := range n.ReleaseAssets.Nodes {
			rel.Assets = append(rel.Assets, catalog.Asset{
				Name:        a.Name,
				DownloadURL: a.DownloadURL,
				Size:        a.Size,
				ContentType: a.ContentType,
			})
		}
		out = append(out, rel)
	}
	return out
}
