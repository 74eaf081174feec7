package plan

import (
	"context"
	"fmt"

	"pwsweep/internal/core"
	"pwsweep/internal/logging"
	"pwsweep/internal/pm"
)

// Runner executes a plan in one mode. Effectors are injected so tests can
// run plans against stubs; NewRunner wires the real ones.
type Runner struct {
	// Remove measures and deletes one path. With dryRun set it only
	// measures. Matches core.SafeDelete.
	Remove func(path string, dryRun bool) (int64, error)

	// Uninstall removes a global package through its manager. May be nil
	// when no manager was detected.
	Uninstall func(ctx context.Context, manager, pkg string) error

	// Official runs the toolkit's own uninstaller once per commit pass,
	// before any directory removal. Best effort; may be nil.
	Official func(ctx context.Context) error

	// OnItem observes every item as it is processed. May be nil.
	OnItem func(item Item, outcome Outcome, size int64)
}

// NewRunner wires a Runner against the real filesystem and the detected
// package managers.
func NewRunner(managers []*pm.Manager) *Runner {
	byName := make(map[string]*pm.Manager, len(managers))
	for _, m := range managers {
		byName[m.Label()] = m
	}
	return &Runner{
		Remove: core.SafeDelete,
		Uninstall: func(ctx context.Context, manager, pkg string) error {
			m, ok := byName[manager]
			if !ok {
				return fmt.Errorf("%s no longer on PATH", manager)
			}
			return m.Uninstall(ctx, pkg)
		},
		Official: pm.ToolkitUninstall,
	}
}

// Run executes one pass over the plan and returns its fresh summary.
// Excluded items are only ever reported. Errors on individual items are
// logged and skipped; one stubborn path must not stall the sweep.
func (r *Runner) Run(ctx context.Context, p *Plan, mode Mode) Summary {
	log := logging.Get()
	var sum Summary

	if mode == ModeCommit && r.Official != nil {
		if err := r.Official(ctx); err != nil {
			log.Debug().Err(err).Msg("toolkit uninstaller unavailable, sweeping directly")
		}
	}

	for _, item := range p.Items {
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Msg("pass interrupted")
			break
		}

		if !item.Included {
			r.emit(item, OutcomeSkipped, 0)
			continue
		}

		switch mode {
		case ModeDryRun:
			var size int64
			if !item.Nested {
				size, _ = r.Remove(item.Candidate.Path, true)
			}
			sum.ItemsFound++
			sum.TotalSize += size
			r.emit(item, OutcomeWouldRemove, size)

		case ModeCommit:
			freed, err := r.removeItem(ctx, item)
			sum.ItemsFound++
			if err != nil && freed == 0 {
				log.Warn().Str("path", item.Candidate.Path).Err(err).Msg("could not remove, skipping")
				r.emit(item, OutcomeSkipped, 0)
				continue
			}
			if err != nil {
				log.Warn().Str("path", item.Candidate.Path).Err(err).Msg("partially removed")
			}
			sum.ItemsRemoved++
			sum.TotalSize += freed
			r.emit(item, OutcomeRemoved, freed)
		}
	}
	return sum
}

// removeItem removes one included item and returns the bytes freed.
// Package-manager items go through their manager first; whatever the
// manager leaves on disk is swept directly.
func (r *Runner) removeItem(ctx context.Context, item Item) (int64, error) {
	path := item.Candidate.Path

	if item.Candidate.Manager == "" || r.Uninstall == nil {
		return r.Remove(path, false)
	}

	before, _ := r.Remove(path, true)
	if err := r.Uninstall(ctx, item.Candidate.Manager, item.Candidate.Package); err != nil {
		// A non-zero exit usually means the package was already gone.
		logging.Get().Debug().Str("package", item.Candidate.Package).Err(err).Msg("uninstall refused, treating as already absent")
	}
	if _, err := r.Remove(path, false); err != nil {
		after, _ := r.Remove(path, true)
		return before - after, err
	}
	return before, nil
}

func (r *Runner) emit(item Item, outcome Outcome, size int64) {
	if r.OnItem != nil {
		r.OnItem(item, outcome, size)
	}
}
