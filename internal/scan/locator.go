package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"pwsweep/internal/config"
	"pwsweep/internal/logging"
)

// Discovery bundles the inputs of one candidate-location pass. The zero
// value finds nothing; DefaultDiscovery assembles the configured one.
type Discovery struct {
	Known    []config.Location
	Symlinks []string
	Roots    []config.SearchRoot
	Packages []PackageSource

	// Patterns are lowercase substrings matched against entry names.
	Patterns []string

	// Rules lets the pattern search prune protected trees instead of
	// walking them. Final classification happens again in the planner.
	Rules Ruleset

	// RootPrune names top-level directories skipped under "/";
	// AlwaysPrune names directories skipped at any depth.
	RootPrune   map[string]bool
	AlwaysPrune map[string]bool
}

// DefaultDiscovery returns the configured discovery pass. With full set,
// the pattern search additionally walks the filesystem root.
func DefaultDiscovery(full bool, packages []PackageSource) Discovery {
	return Discovery{
		Known:       config.GetKnownLocations(),
		Symlinks:    config.GetBinSymlinks(),
		Roots:       config.GetSearchRoots(full),
		Packages:    packages,
		Patterns:    config.GetNamePatterns(),
		Rules:       NewRuleset(config.GetProtectedRules()),
		RootPrune:   config.GetRootPruneNames(),
		AlwaysPrune: config.GetAlwaysPruneNames(),
	}
}

// Run executes every discovery strategy in order and returns the deduplicated
// candidates. Strategies are strictly sequential; a sweep must stay gentle on
// a disk that is often nearly full when this tool gets reached for.
func (d Discovery) Run(ctx context.Context) []Candidate {
	var found []Candidate
	found = append(found, d.probeKnown()...)
	found = append(found, d.searchRoots(ctx)...)
	found = append(found, d.probeSymlinks()...)
	found = append(found, d.queryPackages(ctx)...)
	return Dedupe(found)
}

// ─── Known Locations ─────────────────────────────────────────────────────────

// probeKnown stats each catalog location, expanding glob entries first.
// Missing locations are skipped silently; that is the common case.
func (d Discovery) probeKnown() []Candidate {
	var found []Candidate
	for _, loc := range d.Known {
		for _, path := range expandLocation(loc.Path) {
			info, err := os.Lstat(path)
			if err != nil {
				continue
			}
			found = append(found, Candidate{
				Path:        filepath.Clean(path),
				Source:      SourceKnownLocation,
				Description: loc.Description,
				IsDir:       info.IsDir(),
			})
		}
	}
	return found
}

func expandLocation(path string) []string {
	if !strings.ContainsAny(path, "*?[") {
		return []string{path}
	}
	matches, err := filepath.Glob(path)
	if err != nil {
		logging.Get().Debug().Str("glob", path).Err(err).Msg("bad location glob")
		return nil
	}
	return matches
}

// ─── Pattern Search ──────────────────────────────────────────────────────────

// searchRoots walks each configured root looking for entries whose name
// matches a toolkit pattern. Matched directories are recorded and not
// descended into; their contents are covered by the match.
func (d Discovery) searchRoots(ctx context.Context) []Candidate {
	var found []Candidate
	for _, root := range d.Roots {
		found = append(found, d.walkRoot(ctx, root)...)
	}
	return found
}

func (d Discovery) walkRoot(ctx context.Context, root config.SearchRoot) []Candidate {
	base := filepath.Clean(root.Path)
	info, err := os.Lstat(base)
	if err != nil || !info.IsDir() {
		return nil
	}

	log := logging.Get()
	var found []Candidate

	walkErr := filepath.WalkDir(base, func(path string, entry fs.DirEntry, werr error) error {
		if werr != nil {
			// Permission denied or other error — skip, don't fail.
			log.Debug().Str("path", path).Err(werr).Msg("search: skipping entry")
			return nil
		}
		if path == base {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(found) >= root.MaxMatches {
			log.Debug().Str("root", base).Int("max", root.MaxMatches).Msg("search: match cap reached")
			return fs.SkipAll
		}

		name := entry.Name()
		rel, _ := filepath.Rel(base, path)
		depth := strings.Count(rel, string(filepath.Separator)) + 1

		if entry.IsDir() {
			if d.AlwaysPrune[name] || (base == "/" && depth == 1 && d.RootPrune[name]) {
				return fs.SkipDir
			}
			if d.Rules.Excludes(path) {
				return fs.SkipDir
			}
		}

		if matchesAny(name, d.Patterns) {
			found = append(found, Candidate{
				Path:        path,
				Source:      SourcePatternSearch,
				Description: "name match in " + root.Description,
				IsDir:       entry.IsDir(),
			})
			if entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if entry.IsDir() && depth >= root.MaxDepth {
			return fs.SkipDir
		}
		return nil
	})
	if walkErr != nil {
		log.Debug().Str("root", base).Err(walkErr).Msg("search walk ended early")
	}
	return found
}

func matchesAny(name string, patterns []string) bool {
	lower := strings.ToLower(name)
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// ─── Symlink Probe ───────────────────────────────────────────────────────────

// probeSymlinks checks the launcher paths package managers link the CLI
// into. A dangling link is debris regardless of where it pointed; a healthy
// link only qualifies when its target names the toolkit.
func (d Discovery) probeSymlinks() []Candidate {
	var found []Candidate
	for _, path := range d.Symlinks {
		info, err := os.Lstat(path)
		if err != nil {
			continue
		}

		if info.Mode()&os.ModeSymlink == 0 {
			if matchesAny(filepath.Base(path), d.Patterns) && !info.IsDir() {
				found = append(found, Candidate{
					Path:        path,
					Source:      SourceSymlinkProbe,
					Description: "launcher binary",
				})
			}
			continue
		}

		target, rerr := os.Readlink(path)
		if rerr != nil {
			found = append(found, Candidate{
				Path:        path,
				Source:      SourceSymlinkProbe,
				Description: "unreadable launcher symlink",
			})
			continue
		}
		if _, serr := os.Stat(path); serr != nil {
			found = append(found, Candidate{
				Path:        path,
				Source:      SourceSymlinkProbe,
				Description: "dangling launcher symlink",
			})
			continue
		}
		if matchesAny(target, d.Patterns) {
			found = append(found, Candidate{
				Path:        path,
				Source:      SourceSymlinkProbe,
				Description: "launcher symlink",
			})
		}
	}
	return found
}

// ─── Package Managers ────────────────────────────────────────────────────────

// queryPackages asks each detected package manager for globally installed
// toolkit packages. A manager that is missing or fails to answer is skipped;
// its installs still surface through the filesystem strategies.
func (d Discovery) queryPackages(ctx context.Context) []Candidate {
	var found []Candidate
	for _, src := range d.Packages {
		cands, err := src.GlobalCandidates(ctx)
		if err != nil {
			logging.Get().Warn().Str("manager", src.Label()).Err(err).Msg("package query failed, skipping")
			continue
		}
		found = append(found, cands...)
	}
	return found
}
