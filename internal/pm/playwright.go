package pm

import (
	"context"
	"fmt"
	"strings"
)

// ─── Toolkit CLI (via npx) ───────────────────────────────────────────────────

// ToolkitVersion invokes the toolkit CLI and returns the version it reports,
// e.g. "1.48.2". With dir set, the project-local install is consulted.
// --no-install keeps npx from downloading the package just to answer.
func ToolkitVersion(ctx context.Context, dir string) (string, error) {
	out, err := runCommandIn(ctx, listTimeout, dir, "npx", "--no-install", "playwright", "--version")
	if err != nil {
		return "", fmt.Errorf("playwright --version: %w", err)
	}
	// Output has the form "Version 1.48.2".
	fields := strings.Fields(strings.TrimSpace(out))
	if len(fields) == 0 {
		return "", fmt.Errorf("playwright --version: empty output")
	}
	return fields[len(fields)-1], nil
}

// ToolkitUninstall runs the toolkit's own uninstaller, which drops every
// browser build it ever downloaded. Best effort; the directory sweep that
// follows covers whatever this leaves behind.
func ToolkitUninstall(ctx context.Context) error {
	if !Available("npx") {
		return fmt.Errorf("npx not on PATH")
	}
	_, err := runCommand(ctx, uninstallTimeout, "npx", "--no-install", "playwright", "uninstall", "--all")
	if err != nil {
		return fmt.Errorf("playwright uninstall: %w", err)
	}
	return nil
}

// InstallBrowsers downloads the named browser bundles through the toolkit
// CLI. An empty list lets the toolkit pick its defaults.
func InstallBrowsers(ctx context.Context, dir string, browsers []string) (string, error) {
	args := append([]string{"playwright", "install"}, browsers...)
	out, err := runCommandIn(ctx, installTimeout, dir, "npx", args...)
	if err != nil {
		return out, fmt.Errorf("playwright install: %w", err)
	}
	return out, nil
}

// ─── Installation (via npm) ──────────────────────────────────────────────────

// InstallPackages installs toolkit packages with npm, globally or into dir
// as dev dependencies.
func InstallPackages(ctx context.Context, global bool, dir string, pkgs []string) (string, error) {
	args := []string{"install"}
	if global {
		args = append(args, "-g")
	} else {
		args = append(args, "--save-dev")
	}
	args = append(args, pkgs...)

	out, err := runCommandIn(ctx, installTimeout, dir, "npm", args...)
	if err != nil {
		return out, fmt.Errorf("npm install: %w", err)
	}
	return out, nil
}

// InitProject creates a minimal package.json in dir so a dev-dependency
// install has something to attach to.
func InitProject(ctx context.Context, dir string) error {
	if _, err := runCommandIn(ctx, listTimeout, dir, "npm", "init", "-y"); err != nil {
		return fmt.Errorf("npm init: %w", err)
	}
	return nil
}

// ─── Prerequisites ───────────────────────────────────────────────────────────

// NodeVersion returns the installed node version string, e.g. "v20.11.0".
func NodeVersion(ctx context.Context) (string, error) {
	out, err := runCommand(ctx, listTimeout, "node", "--version")
	if err != nil {
		return "", fmt.Errorf("node --version: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// NpmVersion returns the installed npm version string, e.g. "10.2.4".
func NpmVersion(ctx context.Context) (string, error) {
	out, err := runCommand(ctx, listTimeout, "npm", "--version")
	if err != nil {
		return "", fmt.Errorf("npm --version: %w", err)
	}
	return strings.TrimSpace(out), nil
}
