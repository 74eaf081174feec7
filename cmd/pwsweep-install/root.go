package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"pwsweep/internal/config"
	"pwsweep/internal/core"
	"pwsweep/internal/logging"
	"pwsweep/internal/pm"
	"pwsweep/internal/ui"
	"pwsweep/internal/verify"
)

var (
	// Global flags
	debug       bool
	local       bool
	projectDir  string
	browsers    []string
	checkOnly   bool
	skipCleanup bool

	appVersion = "dev"
)

// setVersionInfo sets build-time version information.
func setVersionInfo(version, commit, date string) {
	appVersion = version
	rootCmd.Version = fmt.Sprintf("%s (%s) built %s", version, commit, date)
}

var rootCmd = &cobra.Command{
	Use:   "pwsweep-install",
	Short: "Install the Playwright toolkit and verify the result",
	Long: `pwsweep-install performs a verified fresh installation of the Playwright
toolkit: prerequisites are checked, stale browser downloads cleared, the
package installed globally or into a project, browsers downloaded, and
the result verified through the toolkit's own CLI.

The version probe is the hard gate. A missing or partial browser bundle
only warns; an unverifiable CLI fails the run.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(debug)
		if !core.SupportedOS() {
			return fmt.Errorf("unsupported platform %q: the location catalog is written for macOS", runtime.GOOS)
		}
		return runInstall(cmd.Context(), os.Stdout)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Show detailed operation logs")
	rootCmd.Flags().BoolVar(&local, "local", false, "Install into the current directory as a dev dependency instead of globally")
	rootCmd.Flags().StringVar(&projectDir, "project", "", "Install into this directory as a dev dependency (implies --local)")
	rootCmd.Flags().StringSliceVar(&browsers, "browsers", []string{"chromium"}, "Browser bundles to download (chromium, firefox, webkit, all)")
	rootCmd.Flags().BoolVar(&checkOnly, "check", false, "Verify an existing installation and exit")
	rootCmd.Flags().BoolVar(&skipCleanup, "skip-cleanup", false, "Keep stale browser downloads instead of clearing them first")
}

func runInstall(ctx context.Context, out io.Writer) error {
	fmt.Fprintf(out, "\n  %s %s\n\n", ui.TitleStyle().Render(ui.IconDiamond+" pwsweep-install"), ui.DimStyle().Render(appVersion))

	if projectDir != "" {
		local = true
	}
	if local && projectDir == "" {
		projectDir = "."
	}
	if projectDir != "" {
		abs, err := filepath.Abs(projectDir)
		if err != nil {
			return fmt.Errorf("resolve project directory: %w", err)
		}
		projectDir = abs
	}

	if checkOnly {
		// Print the whole picture before failing; a validation run is
		// most useful when it reports everything that is wrong at once.
		ok, checks := verify.Prereqs(ctx)
		printChecks(out, checks)
		rep := verify.Run(ctx, projectDir, browsers)
		printReport(out, rep)
		if !ok {
			return fmt.Errorf("prerequisites not met")
		}
		if !rep.OK() {
			return fmt.Errorf("verification failed")
		}
		return nil
	}

	ok, checks := verify.Prereqs(ctx)
	printChecks(out, checks)
	if !ok {
		return fmt.Errorf("prerequisites not met")
	}

	if !skipCleanup {
		step(out, "clearing stale browser downloads")
		if err := pm.ToolkitUninstall(ctx); err != nil {
			logging.Get().Debug().Err(err).Msg("no previous toolkit to clear")
		}
	}

	pkgs := []string{config.GlobalPackage()}
	if projectDir != "" {
		pkgs = []string{config.ProjectPackage()}
		if err := prepareProject(ctx, out, projectDir); err != nil {
			return err
		}
	}

	step(out, fmt.Sprintf("installing %v", pkgs))
	if output, err := pm.InstallPackages(ctx, projectDir == "", projectDir, pkgs); err != nil {
		logging.Get().Error().Str("output", output).Msg("install failed")
		return err
	}

	wanted := verify.NormalizeBrowsers(browsers)
	step(out, fmt.Sprintf("downloading browsers %v", wanted))
	if output, err := pm.InstallBrowsers(ctx, projectDir, wanted); err != nil {
		logging.Get().Error().Str("output", output).Msg("browser download failed")
		return err
	}

	step(out, "verifying")
	rep := verify.Run(ctx, projectDir, browsers)
	printReport(out, rep)
	if !rep.OK() {
		return fmt.Errorf("installed, but the toolkit CLI could not be verified")
	}
	return nil
}

// prepareProject makes sure the target directory exists and has a
// package.json for the dev-dependency install to attach to.
func prepareProject(ctx context.Context, out io.Writer, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create project dir: %w", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "package.json")); err == nil {
		return nil
	}
	step(out, "initializing package.json")
	return pm.InitProject(ctx, dir)
}

func step(out io.Writer, msg string) {
	fmt.Fprintf(out, "  %s %s\n", ui.DimStyle().Render(ui.IconArrow), msg)
}

func printChecks(out io.Writer, checks []verify.Check) {
	for _, c := range checks {
		icon := ui.SuccessStyle().Render(ui.IconCheck)
		if !c.OK {
			icon = ui.ErrorStyle().Render(ui.IconCross)
		}
		fmt.Fprintf(out, "  %s %-16s %s\n", icon, c.Name, ui.MutedStyle().Render(c.Detail))
	}
	fmt.Fprintln(out)
}

func printReport(out io.Writer, rep verify.Report) {
	fmt.Fprintln(out)
	for _, c := range rep.Checks {
		icon := ui.SuccessStyle().Render(ui.IconCheck)
		if !c.OK {
			icon = ui.WarnStyle().Render(ui.IconWarning)
			if c.Name == "toolkit CLI" {
				icon = ui.ErrorStyle().Render(ui.IconCross)
			}
		}
		fmt.Fprintf(out, "  %s %-16s %s\n", icon, c.Name, ui.MutedStyle().Render(c.Detail))
	}
	fmt.Fprintln(out)
	if rep.OK() {
		fmt.Fprintf(out, "  %s Playwright %s is ready\n\n", ui.SuccessStyle().Render(ui.IconCheck), rep.Version)
		if warns := rep.Warnings(); len(warns) > 0 {
			fmt.Fprintf(out, "  %s\n\n", ui.DimStyle().Render(fmt.Sprintf("%d warnings above; browsers may still be downloading", len(warns))))
		}
	}
}
