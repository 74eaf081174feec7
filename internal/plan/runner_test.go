package plan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pwsweep/internal/core"
	"pwsweep/internal/scan"
)

// recorder stands in for the filesystem. Removing a path zeroes it and
// everything under it, the way a real delete would.
type recorder struct {
	sizes   map[string]int64
	removed []string
	failing map[string]error
}

func newRecorder(sizes map[string]int64) *recorder {
	return &recorder{sizes: sizes, failing: map[string]error{}}
}

func (r *recorder) remove(path string, dryRun bool) (int64, error) {
	if err := r.failing[path]; err != nil {
		return 0, err
	}
	size := r.sizes[path]
	if dryRun {
		return size, nil
	}
	r.removed = append(r.removed, path)
	r.wipe(path)
	return size, nil
}

func (r *recorder) wipe(path string) {
	r.sizes[path] = 0
	for p := range r.sizes {
		if strings.HasPrefix(p, path+"/") {
			r.sizes[p] = 0
		}
	}
}

func plainPlan(paths ...string) *Plan {
	cands := make([]scan.Candidate, 0, len(paths))
	for _, p := range paths {
		cands = append(cands, scan.Candidate{Path: p, IsDir: true})
	}
	return Build(cands, scan.Ruleset{})
}

func TestDryRunTouchesNothing(t *testing.T) {
	rec := newRecorder(map[string]int64{"/caches/pw": 100, "/launchers/pw": 20})
	r := &Runner{Remove: rec.remove}

	sum := r.Run(context.Background(), plainPlan("/caches/pw", "/launchers/pw"), ModeDryRun)

	assert.Equal(t, Summary{ItemsFound: 2, ItemsRemoved: 0, TotalSize: 120}, sum)
	assert.Empty(t, rec.removed)
}

func TestExcludedItemsNeverReachTheEffectors(t *testing.T) {
	p := &Plan{Items: []Item{
		{Candidate: scan.Candidate{Path: "/projects/site/node_modules/playwright"}, Reason: "user project directory"},
		{Candidate: scan.Candidate{Path: "/projects/cli", Manager: "npm", Package: "playwright"}, Reason: "user project directory"},
	}}

	var touched []string
	r := &Runner{
		Remove: func(path string, dryRun bool) (int64, error) {
			touched = append(touched, path)
			return 0, nil
		},
		Uninstall: func(ctx context.Context, manager, pkg string) error {
			touched = append(touched, pkg)
			return nil
		},
	}

	for _, mode := range []Mode{ModeDryRun, ModeCommit} {
		var outcomes []Outcome
		r.OnItem = func(item Item, outcome Outcome, size int64) {
			outcomes = append(outcomes, outcome)
			assert.Zero(t, size)
		}
		sum := r.Run(context.Background(), p, mode)

		assert.Empty(t, touched, "mode %s", mode)
		assert.Equal(t, Summary{}, sum)
		assert.Equal(t, []Outcome{OutcomeSkipped, OutcomeSkipped}, outcomes)
	}
}

func TestNestedItemsCountZeroInBothModes(t *testing.T) {
	sizes := func() map[string]int64 {
		return map[string]int64{"/caches/pw": 100, "/caches/pw/chromium": 40}
	}
	p := plainPlan("/caches/pw", "/caches/pw/chromium")
	require.True(t, p.Items[1].Nested)

	dryRec := newRecorder(sizes())
	dry := (&Runner{Remove: dryRec.remove}).Run(context.Background(), p, ModeDryRun)

	comRec := newRecorder(sizes())
	com := (&Runner{Remove: comRec.remove}).Run(context.Background(), p, ModeCommit)

	assert.Equal(t, int64(100), dry.TotalSize)
	assert.Equal(t, dry.TotalSize, com.TotalSize)
	assert.Equal(t, 2, com.ItemsRemoved)
}

func TestCommitRemovesIncludedItems(t *testing.T) {
	rec := newRecorder(map[string]int64{"/caches/pw": 100, "/launchers/pw": 20})
	r := &Runner{Remove: rec.remove}

	sum := r.Run(context.Background(), plainPlan("/caches/pw", "/launchers/pw"), ModeCommit)

	assert.Equal(t, Summary{ItemsFound: 2, ItemsRemoved: 2, TotalSize: 120}, sum)
	assert.Equal(t, []string{"/caches/pw", "/launchers/pw"}, rec.removed)
}

func TestCommitIsIdempotentOnDisk(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "ms-playwright")
	require.NoError(t, os.MkdirAll(target, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "chrome"), make([]byte, 4096), 0o644))

	p := plainPlan(target)
	r := &Runner{Remove: core.SafeDelete}

	first := r.Run(context.Background(), p, ModeCommit)
	assert.Equal(t, 1, first.ItemsRemoved)
	assert.Positive(t, first.TotalSize)
	assert.NoDirExists(t, target)

	second := r.Run(context.Background(), p, ModeCommit)
	assert.Equal(t, 1, second.ItemsRemoved)
	assert.Zero(t, second.TotalSize)
}

func TestFailedRemovalIsReportedAsSkipped(t *testing.T) {
	rec := newRecorder(map[string]int64{"/caches/pw": 100, "/launchers/pw": 20})
	rec.failing["/launchers/pw"] = errors.New("operation not permitted")

	var outcomes []Outcome
	r := &Runner{
		Remove: rec.remove,
		OnItem: func(item Item, outcome Outcome, size int64) { outcomes = append(outcomes, outcome) },
	}
	sum := r.Run(context.Background(), plainPlan("/caches/pw", "/launchers/pw"), ModeCommit)

	assert.Equal(t, Summary{ItemsFound: 2, ItemsRemoved: 1, TotalSize: 100}, sum)
	assert.Equal(t, []Outcome{OutcomeRemoved, OutcomeSkipped}, outcomes)
}

func TestManagerItemsGoThroughTheirManager(t *testing.T) {
	path := "/usr/local/lib/node_modules/playwright"
	rec := newRecorder(map[string]int64{path: 300})

	var gotManager, gotPackage string
	r := &Runner{
		Remove: rec.remove,
		Uninstall: func(ctx context.Context, manager, pkg string) error {
			gotManager, gotPackage = manager, pkg
			rec.wipe(path)
			return nil
		},
	}
	p := Build([]scan.Candidate{{Path: path, IsDir: true, Manager: "npm", Package: "playwright"}}, scan.Ruleset{})
	sum := r.Run(context.Background(), p, ModeCommit)

	assert.Equal(t, "npm", gotManager)
	assert.Equal(t, "playwright", gotPackage)
	assert.Equal(t, Summary{ItemsFound: 1, ItemsRemoved: 1, TotalSize: 300}, sum)
}

func TestUninstallFailureFallsBackToSweep(t *testing.T) {
	path := "/usr/local/lib/node_modules/playwright"
	rec := newRecorder(map[string]int64{path: 300})

	r := &Runner{
		Remove: rec.remove,
		Uninstall: func(ctx context.Context, manager, pkg string) error {
			return errors.New("exit code 1: package not installed")
		},
	}
	p := Build([]scan.Candidate{{Path: path, IsDir: true, Manager: "npm", Package: "playwright"}}, scan.Ruleset{})
	sum := r.Run(context.Background(), p, ModeCommit)

	assert.Equal(t, Summary{ItemsFound: 1, ItemsRemoved: 1, TotalSize: 300}, sum)
	assert.Contains(t, rec.removed, path)
}

func TestOfficialUninstallerRunsOncePerCommitPass(t *testing.T) {
	rec := newRecorder(map[string]int64{"/caches/pw": 100})
	calls := 0
	r := &Runner{
		Remove:   rec.remove,
		Official: func(ctx context.Context) error { calls++; return errors.New("npx not found") },
	}
	p := plainPlan("/caches/pw")

	r.Run(context.Background(), p, ModeDryRun)
	assert.Zero(t, calls)

	r.Run(context.Background(), p, ModeCommit)
	assert.Equal(t, 1, calls)
}

func TestCancelledContextStopsThePass(t *testing.T) {
	rec := newRecorder(map[string]int64{"/caches/pw": 100})
	r := &Runner{Remove: rec.remove}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sum := r.Run(ctx, plainPlan("/caches/pw"), ModeCommit)

	assert.Equal(t, Summary{}, sum)
	assert.Empty(t, rec.removed)
}
