package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"pwsweep/internal/core"
	"pwsweep/internal/gate"
	"pwsweep/internal/logging"
	"pwsweep/internal/plan"
	"pwsweep/internal/pm"
	"pwsweep/internal/scan"
	"pwsweep/internal/ui"
)

var (
	// Global flags
	debug  bool
	dryRun bool

	appVersion = "dev"
)

// setVersionInfo sets build-time version information.
func setVersionInfo(version, commit, date string) {
	appVersion = version
	rootCmd.Version = fmt.Sprintf("%s (%s) built %s", version, commit, date)
}

var rootCmd = &cobra.Command{
	Use:   "pwsweep",
	Short: "Find and remove Playwright browser caches and global installs",
	Long: `pwsweep locates every trace the Playwright toolkit leaves on a Mac
(browser downloads, global package installs, launcher symlinks), sizes
them, and removes them after explicit confirmation.

Every run previews first. Nothing is deleted until two confirmation
phrases are typed and a final countdown passes.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(debug)
		if !core.SupportedOS() {
			return fmt.Errorf("unsupported platform %q: the location catalog is written for macOS", runtime.GOOS)
		}
		return runSweep(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Show detailed operation logs")
	rootCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Preview what would be removed and exit")
}

// runSweep drives one sweep: preview pass, confirmation gate, commit pass.
// Declining the gate is a normal outcome, not an error.
func runSweep(ctx context.Context) error {
	out := os.Stdout

	fmt.Fprintf(out, "\n  %s %s\n", ui.TitleStyle().Render(ui.IconDiamond+" pwsweep"), ui.DimStyle().Render(appVersion))
	fmt.Fprintf(out, "  %s\n\n", ui.DimStyle().Render(core.MacOSVersionString()))

	managers := pm.Detect()
	discovery := scan.DefaultDiscovery(false, pm.Sources(managers))

	fmt.Fprintf(out, "  %s\n\n", ui.DimStyle().Render("Scanning for Playwright artifacts..."))
	candidates := discovery.Run(ctx)
	p := plan.Build(candidates, discovery.Rules)

	display := make(map[string]*pm.Manager, len(managers))
	for _, m := range managers {
		display[m.Label()] = m
	}

	runner := plan.NewRunner(managers)
	runner.OnItem = func(item plan.Item, outcome plan.Outcome, size int64) {
		printItem(out, display, item, outcome, size)
	}

	preview := runner.Run(ctx, p, plan.ModeDryRun)
	printSummary(out, preview, plan.ModeDryRun)

	if preview.ItemsFound == 0 {
		fmt.Fprintf(out, "  %s no Playwright traces found\n\n", ui.SuccessStyle().Render(ui.IconCheck))
		return nil
	}
	if dryRun {
		fmt.Fprintf(out, "  %s\n\n", ui.DimStyle().Render("preview only, nothing was deleted"))
		return nil
	}

	confirmer := gate.NewTerminalConfirmer(os.Stdin, out)
	warning := fmt.Sprintf("%s This permanently removes the %d items above (%s).",
		ui.WarnStyle().Render(ui.IconWarning), preview.ItemsFound, ui.FormatSize(preview.TotalSize))
	if !confirmer.Confirm(warning, gate.PhraseProceed) {
		return abort(out)
	}
	if !confirmer.Confirm("Removal cannot be undone.", gate.PhraseFinal) {
		return abort(out)
	}
	if !gate.Countdown(5, out) {
		return abort(out)
	}

	freeBefore, freeErr := core.DiskFree("/")

	fmt.Fprintln(out)
	commit := runner.Run(ctx, p, plan.ModeCommit)
	printSummary(out, commit, plan.ModeCommit)

	if freeAfter, err := core.DiskFree("/"); err == nil && freeErr == nil {
		fmt.Fprintf(out, "  free space %s %s %s\n\n",
			ui.FormatSize(int64(freeBefore)), ui.MutedStyle().Render(ui.IconArrow), ui.FormatSize(int64(freeAfter)))
	}
	return nil
}

func abort(out io.Writer) error {
	fmt.Fprintf(out, "\n  aborted, nothing was deleted\n\n")
	return nil
}

func printItem(out io.Writer, display map[string]*pm.Manager, item plan.Item, outcome plan.Outcome, size int64) {
	path := ui.DisplayPath(item.Candidate.Path)

	if outcome == plan.OutcomeSkipped {
		if !item.Included {
			fmt.Fprintf(out, "  %s %-56s %s\n",
				ui.TagProtectedStyle().Render(ui.IconSkip), path, ui.MutedStyle().Render("protected: "+item.Reason))
			return
		}
		fmt.Fprintf(out, "  %s %-56s %s\n",
			ui.ErrorStyle().Render(ui.IconCross), path, ui.MutedStyle().Render("could not remove"))
		return
	}

	desc := item.Candidate.Description
	if m, ok := display[item.Candidate.Manager]; ok {
		desc += "  " + ui.DimStyle().Render(m.UninstallCommand(item.Candidate.Package))
	}

	sizeCol := ui.FormatSize(size)
	if item.Nested {
		sizeCol = "-"
		desc = "within an entry above"
	}

	icon := ui.WarnStyle().Render(ui.IconArrow)
	if outcome == plan.OutcomeRemoved {
		icon = ui.SuccessStyle().Render(ui.IconCheck)
	}
	fmt.Fprintf(out, "  %s %-56s %9s  %s\n", icon, path, sizeCol, ui.MutedStyle().Render(desc))
}

func printSummary(out io.Writer, sum plan.Summary, mode plan.Mode) {
	fmt.Fprintln(out)
	if mode == plan.ModeDryRun {
		fmt.Fprintf(out, "  %d items found, %s reclaimable\n", sum.ItemsFound, ui.FormatSize(sum.TotalSize))
		return
	}
	fmt.Fprintf(out, "  removed %d of %d items, freed %s\n", sum.ItemsRemoved, sum.ItemsFound, ui.FormatSize(sum.TotalSize))
}
