package core

import (
	"fmt"
	"os"
	"path/filepath"

	"pwsweep/internal/config"
	"pwsweep/internal/logging"
	"pwsweep/internal/scan"
)

// SafeDelete measures and removes a single filesystem entry. It returns the
// number of bytes freed, which is zero when the path is already gone. With
// dryRun set, it only measures.
//
// Callers classify candidates against the protected rule set before ever
// reaching this function; the checks here are a last line of defense against
// programming errors, not a policy layer.
func SafeDelete(path string, dryRun bool) (int64, error) {
	if path == "" {
		return 0, fmt.Errorf("refusing to delete empty path")
	}
	if !filepath.IsAbs(path) {
		return 0, fmt.Errorf("refusing to delete relative path %q", path)
	}
	cleaned := filepath.Clean(path)
	for _, never := range config.GetNeverDeletePaths() {
		if cleaned == never {
			return 0, fmt.Errorf("refusing to delete %s", cleaned)
		}
	}

	if _, err := os.Lstat(cleaned); err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("stat %s: %w", cleaned, err)
	}

	size := scan.DiskUsage(cleaned)
	if dryRun {
		return size, nil
	}

	logging.Get().Debug().Str("path", cleaned).Int64("bytes", size).Msg("removing")
	if err := os.RemoveAll(cleaned); err != nil {
		// Partial removals happen on permission errors deep in a tree.
		// Report only what actually went away.
		remaining := scan.DiskUsage(cleaned)
		return size - remaining, fmt.Errorf("remove %s: %w", cleaned, err)
	}
	return size, nil
}
