package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTarget(t *testing.T) string {
	t.Helper()
	target := filepath.Join(t.TempDir(), "ms-playwright")
	require.NoError(t, os.MkdirAll(filepath.Join(target, "chromium-1148"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "chromium-1148", "chrome"), make([]byte, 8192), 0o644))
	return target
}

func TestSafeDeleteDryRunOnlyMeasures(t *testing.T) {
	target := makeTarget(t)

	size, err := SafeDelete(target, true)
	require.NoError(t, err)
	assert.Positive(t, size)
	assert.DirExists(t, target)
}

func TestSafeDeleteFreesWhatTheDryRunMeasured(t *testing.T) {
	target := makeTarget(t)

	measured, err := SafeDelete(target, true)
	require.NoError(t, err)

	freed, err := SafeDelete(target, false)
	require.NoError(t, err)
	assert.Equal(t, measured, freed)
	assert.NoDirExists(t, target)
}

func TestSafeDeleteMissingPathFreesNothing(t *testing.T) {
	freed, err := SafeDelete(filepath.Join(t.TempDir(), "already-gone"), false)
	require.NoError(t, err)
	assert.Zero(t, freed)
}

func TestSafeDeleteSingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playwright")
	require.NoError(t, os.WriteFile(path, make([]byte, 4096), 0o755))

	freed, err := SafeDelete(path, false)
	require.NoError(t, err)
	assert.Positive(t, freed)
	assert.NoFileExists(t, path)
}

func TestSafeDeleteRefusesBadPaths(t *testing.T) {
	for name, path := range map[string]string{
		"empty":    "",
		"relative": "node_modules/playwright",
		"dot":      ".",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := SafeDelete(path, false)
			assert.Error(t, err)
		})
	}
}

func TestSafeDeleteRefusesCriticalPaths(t *testing.T) {
	_, err := SafeDelete("/", false)
	assert.Error(t, err)

	_, err = SafeDelete("/usr/local", true)
	assert.Error(t, err, "dry run must refuse the same paths")
}

func TestSafeDeleteRefusesTheHomeDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	_, err := SafeDelete(home, false)
	assert.Error(t, err)
	assert.DirExists(t, home)

	// A trailing slash must not sneak past the check.
	_, err = SafeDelete(home+"/", false)
	assert.Error(t, err)
}
