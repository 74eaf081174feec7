package scan

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("x"), size), 0o644))
}

func TestDiskUsageMissingPathIsZero(t *testing.T) {
	assert.Zero(t, DiskUsage(filepath.Join(t.TempDir(), "nope")))
}

func TestDiskUsageSumsTree(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.bin"), 4096)
	writeFile(t, filepath.Join(dir, "sub", "b.bin"), 8192)

	total := DiskUsage(dir)
	parts := DiskUsage(filepath.Join(dir, "a.bin")) + DiskUsage(filepath.Join(dir, "sub", "b.bin"))

	require.Positive(t, total)
	assert.Equal(t, parts, total)
}

func TestDiskUsageDoesNotFollowSymlinks(t *testing.T) {
	targetDir := t.TempDir()
	writeFile(t, filepath.Join(targetDir, "big.bin"), 1<<20)

	linkDir := t.TempDir()
	require.NoError(t, os.Symlink(filepath.Join(targetDir, "big.bin"), filepath.Join(linkDir, "link")))

	assert.Less(t, DiskUsage(linkDir), DiskUsage(targetDir))
}

func TestDiskUsageOfSingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.bin")
	writeFile(t, path, 4096)
	assert.Positive(t, DiskUsage(path))
}
