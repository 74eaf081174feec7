package verify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-version"

	"pwsweep/internal/config"
	"pwsweep/internal/pm"
)

// minNode is the oldest node the toolkit supports.
var minNode = version.Must(version.NewVersion("18.0.0"))

// bundleMarkers maps a browser to paths that mark a usable download,
// relative to its versioned bundle directory.
var bundleMarkers = map[string][]string{
	"chromium": {filepath.Join("chrome-mac", "Chromium.app"), filepath.Join("chrome-mac", "chrome")},
	"firefox":  {filepath.Join("firefox", "Nightly.app"), filepath.Join("firefox", "firefox")},
	"webkit":   {"pw_run.sh"},
}

// Check is one verification probe with its outcome.
type Check struct {
	Name   string
	OK     bool
	Detail string
}

// Report is the result of verifying an installation. The version probe is
// the hard gate; every other check only warns.
type Report struct {
	Version   string
	VersionOK bool
	Checks    []Check
}

// OK reports whether the installation passed the hard gate.
func (r Report) OK() bool {
	return r.VersionOK
}

// Warnings returns the soft checks that failed.
func (r Report) Warnings() []Check {
	var warns []Check
	for _, c := range r.Checks {
		if !c.OK {
			warns = append(warns, c)
		}
	}
	return warns
}

// Run verifies a toolkit installation: the CLI must report a parseable
// version, and each requested browser should have a complete bundle in the
// download cache. With dir set, the project-local install is verified.
func Run(ctx context.Context, dir string, browsers []string) Report {
	var r Report

	raw, err := pm.ToolkitVersion(ctx, dir)
	if err != nil {
		r.Checks = append(r.Checks, Check{Name: "toolkit CLI", OK: false, Detail: err.Error()})
	} else if v, perr := version.NewVersion(raw); perr != nil {
		r.Checks = append(r.Checks, Check{Name: "toolkit CLI", OK: false, Detail: fmt.Sprintf("unparseable version %q", raw)})
	} else {
		r.Version = v.String()
		r.VersionOK = true
		r.Checks = append(r.Checks, Check{Name: "toolkit CLI", OK: true, Detail: "version " + r.Version})
	}

	cache := config.BrowsersPath()
	if info, serr := os.Stat(cache); serr != nil {
		r.Checks = append(r.Checks, Check{Name: "browser cache", OK: false, Detail: cache + " does not exist"})
	} else if !info.IsDir() {
		r.Checks = append(r.Checks, Check{Name: "browser cache", OK: false, Detail: cache + " is not a directory"})
	} else {
		r.Checks = append(r.Checks, Check{Name: "browser cache", OK: true, Detail: cache})
	}

	for _, browser := range NormalizeBrowsers(browsers) {
		name := "browser " + browser
		bundle, found := findBundle(cache, browser)
		if found {
			r.Checks = append(r.Checks, Check{Name: name, OK: true, Detail: bundle})
		} else {
			r.Checks = append(r.Checks, Check{Name: name, OK: false, Detail: "no complete bundle under " + cache})
		}
	}

	return r
}

// findBundle looks for a versioned bundle directory of the given browser
// that contains one of its marker paths. Bundle directories are named like
// chromium-1148; a directory without its marker is a partial download, and
// a marker file that lost its execute bit is as unusable as a missing one.
func findBundle(cacheDir, browser string) (string, bool) {
	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), browser+"-") {
			continue
		}
		for _, marker := range bundleMarkers[browser] {
			info, serr := os.Stat(filepath.Join(cacheDir, e.Name(), marker))
			if serr != nil {
				continue
			}
			if !info.IsDir() && info.Mode()&0o111 == 0 {
				continue
			}
			return e.Name(), true
		}
	}
	return "", false
}

// NormalizeBrowsers lowercases and deduplicates a browser list, expanding
// the "all" shorthand. An empty list means chromium.
func NormalizeBrowsers(browsers []string) []string {
	if len(browsers) == 0 {
		return []string{"chromium"}
	}
	seen := make(map[string]bool)
	var out []string
	for _, b := range browsers {
		b = strings.ToLower(strings.TrimSpace(b))
		if b == "all" {
			return []string{"chromium", "firefox", "webkit"}
		}
		if b == "" || seen[b] {
			continue
		}
		seen[b] = true
		out = append(out, b)
	}
	if len(out) == 0 {
		return []string{"chromium"}
	}
	return out
}

// Prereqs checks that node and npm are present and recent enough for an
// installation. The boolean gates the install; the checks carry detail.
func Prereqs(ctx context.Context) (bool, []Check) {
	ok := true
	var checks []Check

	raw, err := pm.NodeVersion(ctx)
	if err != nil {
		checks = append(checks, Check{Name: "node", OK: false, Detail: "not found on PATH"})
		ok = false
	} else if v, perr := version.NewVersion(strings.TrimPrefix(raw, "v")); perr != nil {
		checks = append(checks, Check{Name: "node", OK: false, Detail: fmt.Sprintf("unparseable version %q", raw)})
		ok = false
	} else if v.LessThan(minNode) {
		checks = append(checks, Check{Name: "node", OK: false, Detail: fmt.Sprintf("%s installed, need %s or newer", raw, minNode)})
		ok = false
	} else {
		checks = append(checks, Check{Name: "node", OK: true, Detail: raw})
	}

	if npmVersion, nerr := pm.NpmVersion(ctx); nerr != nil {
		checks = append(checks, Check{Name: "npm", OK: false, Detail: "not found on PATH"})
		ok = false
	} else {
		checks = append(checks, Check{Name: "npm", OK: true, Detail: npmVersion})
	}

	return ok, checks
}
