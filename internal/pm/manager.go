package pm

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"pwsweep/internal/config"
	"pwsweep/internal/logging"
	"pwsweep/internal/scan"
)

// Kind identifies a node package manager.
type Kind int

const (
	Npm Kind = iota
	Pnpm
	Yarn
)

// yarnInfoPattern extracts the package spec from classic-yarn list lines
// like `info "@playwright/test@1.48.2" has binaries:`. The version sits
// after the last @, so scoped names parse correctly.
var yarnInfoPattern = regexp.MustCompile(`info "(.+)@[^@"]+"`)

// Manager is one detected node package manager. Construct via Detect.
type Manager struct {
	kind Kind
	name string
	path string
}

// Detect probes PATH for the package managers worth querying. A missing
// manager is not an error; its installs still surface through the
// filesystem strategies.
func Detect() []*Manager {
	known := []struct {
		kind Kind
		name string
	}{
		{Npm, "npm"},
		{Pnpm, "pnpm"},
		{Yarn, "yarn"},
	}

	var managers []*Manager
	for _, k := range known {
		path, err := exec.LookPath(k.name)
		if err != nil {
			logging.Get().Debug().Str("manager", k.name).Msg("not on PATH, skipping")
			continue
		}
		managers = append(managers, &Manager{kind: k.kind, name: k.name, path: path})
	}
	return managers
}

// Label returns the manager's command name.
func (m *Manager) Label() string {
	return m.name
}

// GlobalCandidates queries the manager's global installs and returns the
// toolkit packages among them, each carrying its on-disk path so duplicates
// against the location probe collapse cleanly.
func (m *Manager) GlobalCandidates(ctx context.Context) ([]scan.Candidate, error) {
	if m.kind == Yarn {
		return m.yarnCandidates(ctx)
	}
	return m.parseableCandidates(ctx)
}

// parseableCandidates handles npm and pnpm, whose list commands print one
// absolute package path per line in parseable mode.
func (m *Manager) parseableCandidates(ctx context.Context) ([]scan.Candidate, error) {
	args := []string{"ls", "-g", "--parseable"}
	if m.kind == Npm {
		args = []string{"ls", "-g", "--depth=0", "--parseable"}
	}

	out, err := runCommand(ctx, listTimeout, m.path, args...)
	if err != nil && strings.TrimSpace(out) == "" {
		return nil, fmt.Errorf("%s global list: %w", m.name, err)
	}
	if err != nil {
		logging.Get().Debug().Str("manager", m.name).Err(err).Msg("global list exited non-zero, parsing output anyway")
	}

	var found []scan.Candidate
	for _, path := range parsePackagePaths(out) {
		name := packageNameFromPath(path)
		if !config.MatchesPackage(name) {
			continue
		}
		found = append(found, m.candidate(path, name))
	}
	return found, nil
}

// parsePackagePaths extracts absolute paths from parseable list output.
// npm prints the global root itself first; it gets filtered later because
// its derived name never matches a toolkit package.
func parsePackagePaths(out string) []string {
	var paths []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !filepath.IsAbs(line) {
			continue
		}
		paths = append(paths, line)
	}
	return paths
}

// yarnCandidates handles classic yarn, which has no parseable global list.
// The global dir is queried separately and package paths derived from it.
func (m *Manager) yarnCandidates(ctx context.Context) ([]scan.Candidate, error) {
	dirOut, err := runCommand(ctx, listTimeout, m.path, "global", "dir")
	if err != nil {
		return nil, fmt.Errorf("yarn global dir: %w", err)
	}
	globalDir := strings.TrimSpace(dirOut)
	if globalDir == "" {
		return nil, fmt.Errorf("yarn global dir: empty output")
	}

	listOut, err := runCommand(ctx, listTimeout, m.path, "global", "list")
	if err != nil && strings.TrimSpace(listOut) == "" {
		return nil, fmt.Errorf("yarn global list: %w", err)
	}

	var found []scan.Candidate
	for _, name := range parseYarnGlobalList(listOut) {
		if !config.MatchesPackage(name) {
			continue
		}
		found = append(found, m.candidate(filepath.Join(globalDir, "node_modules", name), name))
	}
	return found, nil
}

// parseYarnGlobalList extracts package names from classic-yarn list output.
func parseYarnGlobalList(out string) []string {
	var names []string
	for _, match := range yarnInfoPattern.FindAllStringSubmatch(out, -1) {
		names = append(names, match[1])
	}
	return names
}

func (m *Manager) candidate(path, name string) scan.Candidate {
	return scan.Candidate{
		Path:        path,
		Source:      scan.SourcePackageManager,
		Description: m.name + " global package",
		IsDir:       true,
		Manager:     m.name,
		Package:     name,
	}
}

// packageNameFromPath recovers a package name from its node_modules path,
// re-attaching the scope directory for scoped packages.
func packageNameFromPath(path string) string {
	base := filepath.Base(path)
	if parent := filepath.Base(filepath.Dir(path)); strings.HasPrefix(parent, "@") {
		return parent + "/" + base
	}
	return base
}

// uninstallArgs returns the manager-specific global removal argv.
func (m *Manager) uninstallArgs(pkg string) []string {
	switch m.kind {
	case Pnpm:
		return []string{"remove", "-g", pkg}
	case Yarn:
		return []string{"global", "remove", pkg}
	default:
		return []string{"uninstall", "-g", pkg}
	}
}

// UninstallCommand returns the removal command line for display, so a
// preview shows exactly what a commit run would execute.
func (m *Manager) UninstallCommand(pkg string) string {
	return m.name + " " + strings.Join(m.uninstallArgs(pkg), " ")
}

// Uninstall removes a global package. A non-zero exit usually means the
// package was already gone; callers treat that as already-removed rather
// than failing the run.
func (m *Manager) Uninstall(ctx context.Context, pkg string) error {
	out, err := runCommand(ctx, uninstallTimeout, m.path, m.uninstallArgs(pkg)...)
	if err != nil {
		return fmt.Errorf("%s uninstall %s: %w", m.name, pkg, err)
	}
	logging.Get().Debug().Str("manager", m.name).Str("package", pkg).Str("output", truncateOutput([]byte(out))).Msg("uninstalled")
	return nil
}

// Sources adapts detected managers to the discovery interface.
func Sources(managers []*Manager) []scan.PackageSource {
	sources := make([]scan.PackageSource, len(managers))
	for i, m := range managers {
		sources[i] = m
	}
	return sources
}
