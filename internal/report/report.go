package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"pwsweep/internal/config"
	"pwsweep/internal/plan"
	"pwsweep/internal/ui"
)

// Trace is one trace-finder run, rendered to a text report that can be
// attached to support tickets long after the terminal scrolled away.
type Trace struct {
	RunID   string
	Started time.Time
	Host    string
	Scope   string
	Rules   []config.Rule

	Findings  []Finding
	Protected []Finding

	duration time.Duration
}

// Finding is one path the scan surfaced.
type Finding struct {
	Path        string
	Description string
	Source      string
	Size        int64
	Reason      string
}

// New starts a trace for the given scope. Host names the platform the scan
// ran on; the caller fills it since it is presentation, not discovery.
func New(scope, host string) *Trace {
	return &Trace{
		RunID:   uuid.NewString(),
		Started: time.Now(),
		Host:    host,
		Scope:   scope,
		Rules:   config.GetProtectedRules(),
	}
}

// Add records one classified item with its measured size.
func (t *Trace) Add(item plan.Item, size int64) {
	f := Finding{
		Path:        item.Candidate.Path,
		Description: item.Candidate.Description,
		Source:      item.Candidate.Source.String(),
		Size:        size,
	}
	if item.Nested {
		f.Description += " (within an entry above)"
	}
	if item.Included {
		t.Findings = append(t.Findings, f)
		return
	}
	f.Reason = item.Reason
	t.Protected = append(t.Protected, f)
}

// Finish stamps the scan duration. Call once, after the last Add.
func (t *Trace) Finish() {
	t.duration = time.Since(t.Started).Round(time.Millisecond)
}

// TotalSize sums the included findings.
func (t *Trace) TotalSize() int64 {
	var total int64
	for _, f := range t.Findings {
		total += f.Size
	}
	return total
}

// Filename returns the report name for this run, derived from its start
// time: playwright-traces-20260826-140511.txt
func (t *Trace) Filename() string {
	return fmt.Sprintf("playwright-traces-%s.txt", t.Started.Format("20060102-150405"))
}

// Render produces the report text.
func (t *Trace) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "playwright trace report\n")
	fmt.Fprintf(&b, "run id:    %s\n", t.RunID)
	fmt.Fprintf(&b, "started:   %s\n", t.Started.Format(time.RFC3339))
	fmt.Fprintf(&b, "host:      %s\n", t.Host)
	fmt.Fprintf(&b, "scope:     %s\n", t.Scope)
	fmt.Fprintf(&b, "duration:  %s\n", t.duration)
	fmt.Fprintf(&b, "\nprotected rules:\n")
	for _, r := range t.Rules {
		fmt.Fprintf(&b, "  %-44s %s\n", r.Prefix, r.Reason)
	}

	fmt.Fprintf(&b, "\nfindings (%s, %s):\n", ui.FormatCount(int64(len(t.Findings))), ui.FormatSize(t.TotalSize()))
	if len(t.Findings) == 0 {
		fmt.Fprintf(&b, "  none\n")
	}
	for _, f := range t.Findings {
		fmt.Fprintf(&b, "  %10s  %s  %s [%s]\n", ui.FormatSize(f.Size), f.Path, f.Description, f.Source)
	}

	fmt.Fprintf(&b, "\nprotected matches (%d):\n", len(t.Protected))
	if len(t.Protected) == 0 {
		fmt.Fprintf(&b, "  none\n")
	}
	for _, f := range t.Protected {
		fmt.Fprintf(&b, "  %s  (%s)\n", f.Path, f.Reason)
	}

	return b.String()
}

// WriteFile renders the report into dir and returns the full path.
func (t *Trace) WriteFile(dir string) (string, error) {
	path := filepath.Join(dir, t.Filename())
	if err := os.WriteFile(path, []byte(t.Render()), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
