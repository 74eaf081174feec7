package plan

import (
	"path/filepath"
	"sort"
	"strings"

	"pwsweep/internal/scan"
)

// Mode selects what an execution pass does with included items.
type Mode int

const (
	// ModeDryRun measures and reports without touching anything.
	ModeDryRun Mode = iota

	// ModeCommit performs the removals.
	ModeCommit
)

func (m Mode) String() string {
	if m == ModeCommit {
		return "commit"
	}
	return "dry-run"
}

// Outcome is what happened to one item during a pass.
type Outcome int

const (
	// OutcomeSkipped marks items shielded by a rule, or ones a commit pass
	// could not remove.
	OutcomeSkipped Outcome = iota

	// OutcomeWouldRemove marks included items during a dry run.
	OutcomeWouldRemove

	// OutcomeRemoved marks items a commit pass removed.
	OutcomeRemoved
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWouldRemove:
		return "would remove"
	case OutcomeRemoved:
		return "removed"
	default:
		return "skipped"
	}
}

// Summary totals one execution pass. Counters only ever increment during a
// pass; every pass starts from zero.
type Summary struct {
	ItemsFound   int
	ItemsRemoved int
	TotalSize    int64
}

// Item is one candidate with its classification attached.
type Item struct {
	Candidate scan.Candidate

	// Included is false when a protected rule shields the path. Excluded
	// items are never sized and never removed.
	Included bool

	// Reason names the matching rule for excluded items.
	Reason string

	// Nested is true when an included ancestor directory already covers
	// this entry. Nested items count zero bytes so totals stay honest.
	Nested bool
}

// Plan is the classified, ordered set of items one run operates on. The
// same plan drives both the dry-run and the commit pass.
type Plan struct {
	Items []Item
}

// Build classifies candidates against the rule set and orders them so that
// ancestors precede their contents. Classification happens here, before any
// sizing or removal, for every candidate without exception.
func Build(candidates []scan.Candidate, rules scan.Ruleset) *Plan {
	sorted := make([]scan.Candidate, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	p := &Plan{Items: make([]Item, 0, len(sorted))}
	var includedDirs []string

	for _, c := range sorted {
		c.Path = filepath.Clean(c.Path)
		item := Item{Candidate: c, Included: true}

		// A path that does not resolve to an absolute location cannot be
		// classified, so it may not be removed either.
		if !filepath.IsAbs(c.Path) {
			item.Included = false
			item.Reason = "path could not be resolved"
			p.Items = append(p.Items, item)
			continue
		}

		if rule, excluded := rules.Match(c.Path); excluded {
			item.Included = false
			item.Reason = rule.Reason
			p.Items = append(p.Items, item)
			continue
		}

		for _, dir := range includedDirs {
			if strings.HasPrefix(c.Path, dir+"/") {
				item.Nested = true
				break
			}
		}
		if c.IsDir && !item.Nested {
			includedDirs = append(includedDirs, c.Path)
		}
		p.Items = append(p.Items, item)
	}
	return p
}

// IncludedCount returns how many items a pass will act on.
func (p *Plan) IncludedCount() int {
	n := 0
	for _, item := range p.Items {
		if item.Included {
			n++
		}
	}
	return n
}
