// Package manifest extracts dependency and version metadata from
// build.zig.zon text. It is deliberately not a full ZON parser: a
// brace-depth scan bounds the dependencies block and lightweight patterns
// pull out the fields the catalog needs. Extraction is always best-effort;
// malformed input degrades to a partial or empty result, never an error.
package manifest

import (
	"regexp"
	"strings"
)

// Dependency is one declared dependency: a remote URL (with optional
// content hash) or a local path.
type Dependency struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
	Hash string `json:"hash,omitempty"`
	Path string `json:"path,omitempty"`
}

// Info is the extracted manifest metadata.
type Info struct {
	Dependencies      []Dependency
	MinimumZigVersion string
}

var (
	minimumVersionRe = regexp.MustCompile(`\.minimum_zig_version\s*=\s*"([^"]+)"`)
	dependenciesRe   = regexp.MustCompile(`\.dependencies\s*=\s*\.\{`)
	entryNameRe      = regexp.MustCompile(`\.(?:@"([^"]+)"|([A-Za-z_][A-Za-z0-9_]*))\s*=\s*\.\{`)
	urlRe            = regexp.MustCompile(`\.url\s*=\s*"([^"]+)"`)
	hashRe           = regexp.MustCompile(`\.hash\s*=\s*"([^"]+)"`)
	pathRe           = regexp.MustCompile(`\.path\s*=\s*"([^"]+)"`)
)

// Extract pulls the dependency list and minimum Zig version out of raw
// manifest text. An empty input yields an empty Info.
func Extract(text string) Info {
	var info Info
	if text == "" {
		return info
	}

	if m := minimumVersionRe.FindStringSubmatch(text); m != nil {
		info.MinimumZigVersion = m[1]
	}

	loc := dependenciesRe.FindStringIndex(text)
	if loc == nil {
		return info
	}
	block, ok := braceSpan(text[loc[1]:])
	if !ok {
		return info
	}

	info.Dependencies = parseEntries(block)
	return info
}

// parseEntries walks `.name = .{ ... }` entries inside the dependencies
// block. Entries with neither a url nor a path are dropped.
func parseEntries(block string) []Dependency {
	var deps []Dependency

	for {
		m := entryNameRe.FindStringSubmatchIndex(block)
		if m == nil {
			return deps
		}

		var name string
		if m[2] >= 0 {
			name = block[m[2]:m[3]] // quoted form: .@"some-name"
		} else {
			name = block[m[4]:m[5]]
		}

		inner, ok := braceSpan(block[m[1]:])
		if !ok {
			// Unbalanced entry; nothing after it can be trusted.
			return deps
		}

		dep := Dependency{Name: name}
		if u := urlRe.FindStringSubmatch(inner); u != nil {
			dep.URL = u[1]
			if h := hashRe.FindStringSubmatch(inner); h != nil {
				dep.Hash = h[1]
			}
			deps = append(deps, dep)
		} else if p := pathRe.FindStringSubmatch(inner); p != nil {
			dep.Path = p[1]
			deps = append(deps, dep)
		}

		block = block[m[1]+len(inner):]
	}
}

// braceSpan returns the text up to (but not including) the brace that
// closes an already-opened block, tracking nesting depth. Quoted strings
// and line comments are skipped so braces inside them do not disturb the
// depth count.
func braceSpan(s string) (string, bool) {
	depth := 1
	inString := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			switch c {
			case '\\':
				i++ // skip escaped character
			case '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '/':
			if i+1 < len(s) && s[i+1] == '/' {
				if nl := strings.IndexByte(s[i:], '\n'); nl >= 0 {
					i += nl
				} else {
					return "", false
				}
			}
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i], true
			}
		}
	}
	return "", false
}
