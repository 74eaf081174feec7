package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"pwsweep/internal/core"
	"pwsweep/internal/logging"
	"pwsweep/internal/plan"
	"pwsweep/internal/pm"
	"pwsweep/internal/report"
	"pwsweep/internal/scan"
	"pwsweep/internal/ui"
)

var (
	// Global flags
	debug bool

	appVersion = "dev"
)

// setVersionInfo sets build-time version information.
func setVersionInfo(version, commit, date string) {
	appVersion = version
	rootCmd.Version = fmt.Sprintf("%s (%s) built %s", version, commit, date)
}

var rootCmd = &cobra.Command{
	Use:   "pwsweep-traces",
	Short: "Scan the whole filesystem for Playwright traces and write a report",
	Long: `pwsweep-traces runs the full-filesystem variant of the Playwright scan
and writes everything it finds, including paths the protected rules
shielded, into a timestamped text report. Nothing is removed.

The full walk takes a while; bounded depth and system-directory pruning
keep it from taking forever.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(debug)
		if !core.SupportedOS() {
			return fmt.Errorf("unsupported platform %q: the location catalog is written for macOS", runtime.GOOS)
		}
		return runTraces(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Show detailed operation logs")
}

func runTraces(ctx context.Context) error {
	out := os.Stdout

	fmt.Fprintf(out, "\n  %s %s\n", ui.TitleStyle().Render(ui.IconDiamond+" pwsweep-traces"), ui.DimStyle().Render(appVersion))
	fmt.Fprintf(out, "  %s\n\n", ui.DimStyle().Render(core.MacOSVersionString()))
	fmt.Fprintf(out, "  %s\n", ui.DimStyle().Render("Walking the filesystem, this can take a few minutes..."))

	managers := pm.Detect()
	discovery := scan.DefaultDiscovery(true, pm.Sources(managers))
	p := plan.Build(discovery.Run(ctx), discovery.Rules)

	scope := "full filesystem"
	for _, r := range discovery.Roots {
		if r.Path == "/" {
			scope = fmt.Sprintf("full filesystem (depth %d, capped at %d matches)", r.MaxDepth, r.MaxMatches)
		}
	}
	trace := report.New(scope, core.MacOSVersionString())
	runner := plan.NewRunner(managers)
	runner.OnItem = func(item plan.Item, outcome plan.Outcome, size int64) {
		trace.Add(item, size)
	}
	runner.Run(ctx, p, plan.ModeDryRun)
	trace.Finish()

	path, err := trace.WriteFile(".")
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n  %s traces: %s found (%s), %d shielded by rules\n",
		ui.SuccessStyle().Render(ui.IconCheck),
		ui.FormatCount(int64(len(trace.Findings))),
		ui.FormatSize(trace.TotalSize()),
		len(trace.Protected))
	fmt.Fprintf(out, "  report written to %s\n\n", ui.TitleStyle().Render(ui.DisplayPath(path)))
	return nil
}
