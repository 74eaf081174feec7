package scan

import (
	"context"
	"path/filepath"
	"strings"
)

// Source identifies which discovery strategy produced a candidate.
type Source int

const (
	SourceKnownLocation Source = iota
	SourcePatternSearch
	SourcePackageManager
	SourceSymlinkProbe
)

func (s Source) String() string {
	switch s {
	case SourceKnownLocation:
		return "known location"
	case SourcePatternSearch:
		return "pattern search"
	case SourcePackageManager:
		return "package manager"
	case SourceSymlinkProbe:
		return "symlink probe"
	default:
		return "unknown"
	}
}

// Candidate is one filesystem entry discovery considers toolkit-related.
// Classification against the protected rule set happens later; a candidate
// carries no judgement about whether it may be removed.
type Candidate struct {
	// Path is the absolute, cleaned path of the entry.
	Path string

	// Source records the strategy that found the entry.
	Source Source

	// Description is a human-readable label shown in listings.
	Description string

	// IsDir reports whether the entry is a directory.
	IsDir bool

	// Manager and Package are set for package-manager candidates and carry
	// the uninstall route ("npm", "playwright").
	Manager string
	Package string
}

// PackageSource queries one package manager for globally installed toolkit
// packages. Implementations skip silently when the manager is not installed.
type PackageSource interface {
	Label() string
	GlobalCandidates(ctx context.Context) ([]Candidate, error)
}

// Dedupe collapses candidates that resolve to the same path. Paths compare
// case-insensitively, matching the default APFS behavior. When a plain path
// candidate collides with a package-manager one, the package-manager entry
// wins because it carries the uninstall route.
func Dedupe(candidates []Candidate) []Candidate {
	seen := make(map[string]int, len(candidates))
	var unique []Candidate
	for _, c := range candidates {
		c.Path = filepath.Clean(c.Path)
		key := strings.ToLower(c.Path)
		if i, ok := seen[key]; ok {
			if unique[i].Manager == "" && c.Manager != "" {
				unique[i] = c
			}
			continue
		}
		seen[key] = len(unique)
		unique = append(unique, c)
	}
	return unique
}
