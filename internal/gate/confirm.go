package gate

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"pwsweep/internal/ui"
)

// The two confirmation phrases. Both must be typed exactly; anything else,
// including a plain enter, aborts the run.
const (
	PhraseProceed = "YES"
	PhraseFinal   = "REMOVE PLAYWRIGHT"
)

// Confirmer asks the user to type an exact phrase. Implementations return
// false on any mismatch or read error; a failed read must never pass a gate.
type Confirmer interface {
	Confirm(prompt, phrase string) bool
}

// TerminalConfirmer reads confirmation phrases line by line. One buffered
// reader lives across calls so the second prompt sees input the first one
// already buffered.
type TerminalConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func NewTerminalConfirmer(in io.Reader, out io.Writer) *TerminalConfirmer {
	return &TerminalConfirmer{in: bufio.NewReader(in), out: out}
}

// Confirm prints the prompt and reads one line. Only the exact phrase
// passes; surrounding whitespace beyond the line ending is a mismatch.
func (c *TerminalConfirmer) Confirm(prompt, phrase string) bool {
	fmt.Fprintf(c.out, "\n  %s\n  Type %s to continue: ", prompt, ui.WarnStyle().Render(phrase))

	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(c.out)
		return false
	}
	return strings.TrimRight(line, "\r\n") == phrase
}
