package scan

import (
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"pwsweep/internal/logging"
)

// physicalSize returns the bytes a file actually occupies on disk, which on
// APFS differs from the logical length for cloned and sparse files. Falls
// back to the logical size when the stat fails.
func physicalSize(path string, info os.FileInfo) int64 {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err == nil {
		return st.Blocks * 512
	}
	return info.Size()
}

// DiskUsage returns the physical disk usage in bytes of the tree rooted at
// path. A missing or unreadable path counts as zero, and unreadable entries
// inside the tree contribute zero; sizing must never abort a run. Symlinks
// count as their link entry and are never followed.
func DiskUsage(path string) int64 {
	info, err := os.Lstat(path)
	if err != nil {
		return 0
	}
	if !info.IsDir() {
		return physicalSize(path, info)
	}

	var total int64
	walkErr := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.Get().Debug().Str("path", p).Err(err).Msg("size walk: skipping entry")
			return nil
		}
		if d.IsDir() {
			return nil
		}
		fi, ierr := d.Info()
		if ierr != nil {
			logging.Get().Debug().Str("path", p).Err(ierr).Msg("size walk: cannot stat")
			return nil
		}
		total += physicalSize(p, fi)
		return nil
	})
	if walkErr != nil {
		logging.Get().Debug().Str("path", path).Err(walkErr).Msg("size walk ended early")
	}
	return total
}
