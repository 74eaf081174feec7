package gate

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"pwsweep/internal/ui"
)

type tickMsg time.Time

func doTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// ─── Model ───────────────────────────────────────────────────────────────────

// countdownModel is the bubbletea model for the final abort window.
type countdownModel struct {
	total     int
	remaining int
	progress  progress.Model
	aborted   bool
}

func newCountdownModel(seconds int) countdownModel {
	return countdownModel{
		total:     seconds,
		remaining: seconds,
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

func (m countdownModel) Init() tea.Cmd {
	return doTick()
}

func (m countdownModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.progress.Width = min(msg.Width-8, 50)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.aborted = true
			return m, tea.Quit
		}
		return m, nil

	case tickMsg:
		m.remaining--
		if m.remaining <= 0 {
			return m, tea.Quit
		}
		return m, doTick()
	}

	return m, nil
}

func (m countdownModel) View() string {
	if m.aborted {
		return "\n  " + ui.WarnStyle().Render("aborted") + "\n"
	}
	if m.remaining <= 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("\n  %s Removing in %ds\n", ui.WarnStyle().Render(ui.IconWarning), m.remaining))
	b.WriteString("  " + m.progress.ViewAs(float64(m.total-m.remaining)/float64(m.total)) + "\n")
	b.WriteString(ui.HintBarStyle().Render("  press q or esc to abort") + "\n")
	return b.String()
}

// ─── Entry point ─────────────────────────────────────────────────────────────

// Countdown holds the final abort window open for the given number of
// seconds and reports whether the run may proceed. Interactive terminals
// get an animated bar with q/esc to abort; everything else gets plain
// ticking lines.
func Countdown(seconds int, out io.Writer) bool {
	if seconds <= 0 {
		return true
	}
	if !ui.Interactive() {
		return plainCountdown(seconds, out)
	}

	final, err := tea.NewProgram(newCountdownModel(seconds), tea.WithOutput(out)).Run()
	if err != nil {
		return plainCountdown(seconds, out)
	}
	m, ok := final.(countdownModel)
	return ok && !m.aborted
}

func plainCountdown(seconds int, out io.Writer) bool {
	fmt.Fprint(out, "  Removing in ")
	for i := seconds; i > 0; i-- {
		fmt.Fprintf(out, "%d... ", i)
		time.Sleep(time.Second)
	}
	fmt.Fprintln(out)
	return true
}
