package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// Location is a well-known filesystem path probed during discovery. Path may
// contain glob metacharacters (nvm and pnpm keep per-version directories),
// which the locator expands before probing.
type Location struct {
	// Path is the absolute path or glob to probe.
	Path string

	// Description is a human-readable label shown in listings.
	Description string

	// Category groups related locations ("cache", "global", "data").
	Category string
}

// SearchRoot bounds one recursive pattern-search walk.
type SearchRoot struct {
	// Path is the directory the walk starts from.
	Path string

	// Description is a human-readable label for logs.
	Description string

	// MaxDepth is the number of path components below Path the walk may
	// descend. Zero means the root itself only.
	MaxDepth int

	// MaxMatches aborts the walk once this many candidates were found.
	MaxMatches int
}

// Rule is one protected-path rule. Classification is a literal prefix check
// against Prefix, so a rule shields the directory and everything below it.
type Rule struct {
	Prefix string
	Reason string
}

// homeDir returns the current user's home directory.
func homeDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return os.Getenv("HOME")
}

// nvmDir returns the nvm installation root, honoring $NVM_DIR.
func nvmDir() string {
	if d := os.Getenv("NVM_DIR"); d != "" {
		return d
	}
	return filepath.Join(homeDir(), ".nvm")
}

// pnpmHome returns the pnpm home directory, honoring $PNPM_HOME.
func pnpmHome() string {
	if d := os.Getenv("PNPM_HOME"); d != "" {
		return d
	}
	return filepath.Join(homeDir(), "Library", "pnpm")
}

// yarnGlobalDir returns the classic-yarn global installation directory.
func yarnGlobalDir() string {
	return filepath.Join(homeDir(), ".config", "yarn", "global")
}

// BrowsersPath returns the browser download cache directory. The toolkit
// honors PLAYWRIGHT_BROWSERS_PATH, so discovery and verification do too.
// The special value "0" relocates browsers into node_modules and is treated
// as unset here; those copies surface through the pattern search instead.
func BrowsersPath() string {
	if p := os.Getenv("PLAYWRIGHT_BROWSERS_PATH"); p != "" && p != "0" {
		return p
	}
	return filepath.Join(xdg.CacheHome, "ms-playwright")
}

// GetKnownLocations returns every location worth probing directly, with
// environment overrides already applied.
func GetKnownLocations() []Location {
	home := homeDir()

	locations := []Location{
		// ── Browser downloads ───────────────────────────────────
		{
			Path:        BrowsersPath(),
			Description: "browser downloads",
			Category:    "cache",
		},
		{
			Path:        filepath.Join(home, ".cache", "ms-playwright"),
			Description: "browser downloads (XDG layout)",
			Category:    "cache",
		},

		// ── Framework data ──────────────────────────────────────
		{
			Path:        filepath.Join(xdg.DataHome, "ms-playwright"),
			Description: "trace viewer and framework data",
			Category:    "data",
		},

		// ── Yarn and pnpm globals ───────────────────────────────
		{
			Path:        filepath.Join(yarnGlobalDir(), "node_modules", "playwright"),
			Description: "yarn global package",
			Category:    "global",
		},
		{
			Path:        filepath.Join(yarnGlobalDir(), "node_modules", "@playwright"),
			Description: "yarn global scope",
			Category:    "global",
		},
		{
			Path:        filepath.Join(pnpmHome(), "global", "*", "node_modules", "playwright"),
			Description: "pnpm global package",
			Category:    "global",
		},
		{
			Path:        filepath.Join(pnpmHome(), "global", "*", "node_modules", "@playwright"),
			Description: "pnpm global scope",
			Category:    "global",
		},

		// ── nvm-managed node versions ───────────────────────────
		{
			Path:        filepath.Join(nvmDir(), "versions", "node", "*", "lib", "node_modules", "playwright"),
			Description: "npm global package (nvm)",
			Category:    "global",
		},
		{
			Path:        filepath.Join(nvmDir(), "versions", "node", "*", "lib", "node_modules", "@playwright"),
			Description: "npm global scope (nvm)",
			Category:    "global",
		},
	}

	// ── System-wide node installations ──────────────────────────
	for _, root := range []string{"/usr/local/lib/node_modules", "/opt/homebrew/lib/node_modules"} {
		locations = append(locations,
			Location{
				Path:        filepath.Join(root, "playwright"),
				Description: "npm global package",
				Category:    "global",
			},
			Location{
				Path:        filepath.Join(root, "@playwright"),
				Description: "npm global scope",
				Category:    "global",
			},
		)
	}

	return locations
}

// GetBinSymlinks returns the launcher paths package managers link the CLI
// into. Probed for dangling or toolkit-pointing symlinks.
func GetBinSymlinks() []string {
	return []string{
		"/usr/local/bin/playwright",
		"/opt/homebrew/bin/playwright",
		filepath.Join(homeDir(), ".local", "bin", "playwright"),
	}
}

// GetSearchRoots returns the directories the bounded pattern search walks.
// With full set, the walk additionally starts at the filesystem root.
func GetSearchRoots(full bool) []SearchRoot {
	home := homeDir()

	roots := []SearchRoot{
		{
			Path:        filepath.Join(home, ".npm"),
			Description: "npm cache",
			MaxDepth:    6,
			MaxMatches:  256,
		},
		{
			Path:        filepath.Join(xdg.CacheHome, "Yarn"),
			Description: "yarn cache",
			MaxDepth:    6,
			MaxMatches:  256,
		},
		{
			Path:        pnpmHome(),
			Description: "pnpm home",
			MaxDepth:    6,
			MaxMatches:  256,
		},
		{
			Path:        os.TempDir(),
			Description: "temporary files",
			MaxDepth:    4,
			MaxMatches:  256,
		},
	}

	if full {
		roots = append(roots, SearchRoot{
			Path:        "/",
			Description: "full filesystem",
			MaxDepth:    8,
			MaxMatches:  1024,
		})
	}

	return roots
}

// GetNamePatterns returns the case-insensitive substrings that mark an entry
// name as toolkit-related.
func GetNamePatterns() []string {
	return []string{"ms-playwright", "playwright"}
}

// GlobalPackage returns the package a system-wide toolkit install manages.
func GlobalPackage() string {
	return "playwright"
}

// ProjectPackage returns the dev dependency a project-local install
// manages; it wraps the bare package and adds the test runner.
func ProjectPackage() string {
	return "@playwright/test"
}

// MatchesPackage reports whether a package name belongs to the toolkit.
// Beyond the bare package and the scoped namespace this covers the
// companion packages (playwright-core) and the legacy per-browser splits
// (playwright-chromium, playwright-firefox, playwright-webkit).
func MatchesPackage(name string) bool {
	return name == "playwright" ||
		name == "@playwright" ||
		strings.HasPrefix(name, "@playwright/") ||
		strings.HasPrefix(name, "playwright-")
}

// GetProtectedRules returns the rule set separating removable toolkit caches
// from things that merely share the name. Matching is a literal prefix
// check, evaluated before any candidate is sized or removed.
func GetProtectedRules() []Rule {
	home := homeDir()

	return []Rule{
		// ── User content ────────────────────────────────────────
		{Prefix: filepath.Join(home, "Projects"), Reason: "user projects"},
		{Prefix: filepath.Join(home, "Developer"), Reason: "user code checkouts"},
		{Prefix: filepath.Join(home, "Documents"), Reason: "user documents"},
		{Prefix: filepath.Join(home, "Desktop"), Reason: "user desktop"},

		// ── Installs owned by other runtimes ────────────────────
		{Prefix: filepath.Join(home, "Library", "Python"), Reason: "Python user packages"},
		{Prefix: filepath.Join(home, ".virtualenvs"), Reason: "Python virtualenvs"},
		{Prefix: filepath.Join(home, "go", "pkg"), Reason: "Go module cache"},
		{Prefix: filepath.Join(xdg.CacheHome, "ms-playwright-go"), Reason: "Playwright for Go driver"},

		// ── Copies embedded inside applications ─────────────────
		{Prefix: "/Applications", Reason: "installed applications"},
		{Prefix: filepath.Join(home, "Applications"), Reason: "installed applications"},

		// ── Editor state that shares the name ───────────────────
		{Prefix: filepath.Join(home, ".vscode"), Reason: "VS Code extensions"},
		{Prefix: filepath.Join(home, ".cursor"), Reason: "Cursor extensions"},
	}
}

// GetNeverDeletePaths returns paths that must NEVER be deleted under any
// circumstances, regardless of what discovery or the rule set decide.
func GetNeverDeletePaths() []string {
	home := homeDir()
	return []string{
		"/",
		"/Applications",
		"/Library",
		"/System",
		"/Users",
		"/Volumes",
		"/bin",
		"/etc",
		"/opt",
		"/opt/homebrew",
		"/private",
		"/sbin",
		"/tmp",
		"/usr",
		"/usr/local",
		"/var",
		home,
		filepath.Join(home, "Library"),
	}
}

// GetRootPruneNames returns top-level directories skipped when the pattern
// search walks the filesystem root. System trees are covered by the known
// location probe instead of the walk.
func GetRootPruneNames() map[string]bool {
	return map[string]bool{
		"System":  true,
		"Volumes": true,
		"bin":     true,
		"cores":   true,
		"dev":     true,
		"etc":     true,
		"home":    true,
		"net":     true,
		"opt":     true,
		"private": true,
		"sbin":    true,
		"tmp":     true,
		"usr":     true,
		"var":     true,
	}
}

// GetAlwaysPruneNames returns directory names never descended into at any
// depth. Metadata stores that are slow to walk and never hold the toolkit.
func GetAlwaysPruneNames() map[string]bool {
	return map[string]bool{
		".DocumentRevisions-V100": true,
		".Spotlight-V100":         true,
		".TemporaryItems":         true,
		".Trash":                  true,
		".Trashes":                true,
		".fseventsd":              true,
		".git":                    true,
		".vol":                    true,
	}
}
