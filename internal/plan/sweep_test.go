package plan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pwsweep/internal/config"
	"pwsweep/internal/core"
	"pwsweep/internal/scan"
)

// TestKnownCacheSweep drives the whole pipeline over a throwaway home
// directory: discovery, classification, a dry run, then a commit.
func TestKnownCacheSweep(t *testing.T) {
	home := t.TempDir()

	cache := filepath.Join(home, "Library/Caches/ms-playwright")
	require.NoError(t, os.MkdirAll(filepath.Join(cache, "chromium-1148/chrome-mac"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cache, "chromium-1148/chrome-mac/chrome"), make([]byte, 16384), 0o755))

	project := filepath.Join(home, "Projects/site/node_modules/playwright")
	require.NoError(t, os.MkdirAll(project, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(project, "package.json"), []byte("{}"), 0o644))

	launcher := filepath.Join(home, "bin/playwright")
	require.NoError(t, os.MkdirAll(filepath.Dir(launcher), 0o755))
	require.NoError(t, os.Symlink(filepath.Join(home, "gone/cli.js"), launcher))

	d := scan.Discovery{
		Known: []config.Location{
			{Path: cache, Description: "browser downloads"},
			{Path: project, Description: "npm package"},
		},
		Symlinks: []string{launcher},
		Roots:    []config.SearchRoot{{Path: home, Description: "home", MaxDepth: 8, MaxMatches: 64}},
		Patterns: []string{"ms-playwright", "playwright"},
		Rules: scan.NewRuleset([]config.Rule{
			{Prefix: filepath.Join(home, "Projects"), Reason: "user projects"},
		}),
	}
	ctx := context.Background()

	p := Build(d.Run(ctx), d.Rules)
	require.Len(t, p.Items, 3)
	require.Equal(t, 2, p.IncludedCount())

	r := &Runner{Remove: core.SafeDelete}

	preview := r.Run(ctx, p, ModeDryRun)
	assert.Equal(t, 2, preview.ItemsFound)
	assert.Zero(t, preview.ItemsRemoved)
	assert.Positive(t, preview.TotalSize)
	assert.DirExists(t, cache)

	commit := r.Run(ctx, p, ModeCommit)
	assert.Equal(t, 2, commit.ItemsFound)
	assert.Equal(t, 2, commit.ItemsRemoved)
	assert.Equal(t, preview.TotalSize, commit.TotalSize)

	assert.NoDirExists(t, cache)
	assert.NoFileExists(t, launcher)
	assert.DirExists(t, project, "rule-shielded paths survive a commit")
}
