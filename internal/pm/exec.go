package pm

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// listTimeout bounds queries that only read package-manager state.
	listTimeout = 30 * time.Second

	// uninstallTimeout is the maximum time to wait for a package removal.
	uninstallTimeout = 120 * time.Second

	// installTimeout allows for browser bundle downloads of several hundred
	// megabytes on slow links.
	installTimeout = 10 * time.Minute
)

// Available reports whether an executable can be found on PATH.
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// runCommand executes a command with a deadline and returns its combined
// output. Output is returned even on failure; npm exits non-zero for
// peer-dependency problems while still printing a usable tree.
func runCommand(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error) {
	return runCommandIn(ctx, timeout, "", name, args...)
}

// runCommandIn is runCommand with an explicit working directory.
func runCommandIn(ctx context.Context, timeout time.Duration, dir, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	output, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return string(output), fmt.Errorf("%s timed out after %s", name, timeout)
		}
		return string(output), handleExitError(err, output)
	}
	return string(output), nil
}

// handleExitError wraps an exec error with contextual information, folding
// in a trimmed slice of the command output when there is one.
func handleExitError(err error, output []byte) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		msg := truncateOutput(output)
		if msg != "" {
			return fmt.Errorf("exit code %d: %s", exitErr.ExitCode(), msg)
		}
		return fmt.Errorf("exit code %d", exitErr.ExitCode())
	}
	return fmt.Errorf("command error: %w", err)
}

// truncateOutput trims command output for error messages, cutting at a
// valid UTF-8 boundary to avoid producing invalid strings.
func truncateOutput(output []byte) string {
	s := strings.TrimSpace(string(output))
	if len(s) <= 200 {
		return s
	}
	s = s[:200]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s + "..."
}
