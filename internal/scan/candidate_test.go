package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupeCollapsesEqualPaths(t *testing.T) {
	out := Dedupe([]Candidate{
		{Path: "/usr/local/lib/node_modules/playwright/", Source: SourceKnownLocation},
		{Path: "/usr/local/lib/node_modules/playwright", Source: SourcePatternSearch},
	})

	require.Len(t, out, 1)
	assert.Equal(t, SourceKnownLocation, out[0].Source)
	assert.Equal(t, "/usr/local/lib/node_modules/playwright", out[0].Path)
}

func TestDedupeIsCaseInsensitive(t *testing.T) {
	out := Dedupe([]Candidate{
		{Path: "/Users/Demo/Library/Caches/ms-playwright"},
		{Path: "/users/demo/library/caches/ms-playwright"},
	})
	assert.Len(t, out, 1)
}

func TestDedupePrefersPackageManagerEntries(t *testing.T) {
	out := Dedupe([]Candidate{
		{Path: "/usr/local/lib/node_modules/playwright", Source: SourceKnownLocation},
		{Path: "/usr/local/lib/node_modules/playwright", Source: SourcePackageManager, Manager: "npm", Package: "playwright"},
	})

	require.Len(t, out, 1)
	assert.Equal(t, "npm", out[0].Manager)
	assert.Equal(t, "playwright", out[0].Package)
}

func TestDedupeKeepsDistinctPaths(t *testing.T) {
	out := Dedupe([]Candidate{
		{Path: "/a/playwright"},
		{Path: "/b/playwright"},
	})
	assert.Len(t, out, 2)
}

func TestSourceStrings(t *testing.T) {
	assert.Equal(t, "known location", SourceKnownLocation.String())
	assert.Equal(t, "pattern search", SourcePatternSearch.String())
	assert.Equal(t, "package manager", SourcePackageManager.String())
	assert.Equal(t, "symlink probe", SourceSymlinkProbe.String())
}
