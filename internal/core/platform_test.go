package core

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupportedOS(t *testing.T) {
	assert.Equal(t, runtime.GOOS == "darwin", SupportedOS())
}

func TestMacOSVersionString(t *testing.T) {
	assert.Contains(t, MacOSVersionString(), "macOS")
}

func TestVersionMajor(t *testing.T) {
	cases := map[string]int{
		"14.5":    14,
		"15.1.1":  15,
		"26.0":    26,
		"11":      11,
		"":        0,
		"garbage": 0,
	}
	for version, want := range cases {
		assert.Equal(t, want, versionMajor(version), version)
	}
}

func TestDiskFree(t *testing.T) {
	free, err := DiskFree(t.TempDir())
	require.NoError(t, err)
	assert.Positive(t, free)
}
