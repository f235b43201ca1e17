// Package terminal holds the incidental console rendering: a progress
// spinner for the request wait, screen clearing, and heading styling for
// buffered answers.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner renders an animated "Searching..." indicator while a request is in
// flight. On non-TTY or dumb terminals it renders nothing.
type Spinner struct {
	out     io.Writer
	enabled bool
	done    chan struct{}
	stopped chan struct{}
}

// NewSpinner builds a spinner writing to out. It is inert until Start.
func NewSpinner(out io.Writer) *Spinner {
	return &Spinner{out: out, enabled: Interactive()}
}

// Start begins the animation. Calling Stop is required before writing other
// output to the same stream.
func (s *Spinner) Start(label string) {
	if !s.enabled {
		return
	}
	s.done = make(chan struct{})
	s.stopped = make(chan struct{})
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		i := 0
		for {
			select {
			case <-s.done:
				// Erase the spinner line.
				fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", len(label)+2))
				return
			case <-ticker.C:
				fmt.Fprintf(s.out, "\r%s %s", spinnerFrames[i%len(spinnerFrames)], label)
				i++
			}
		}
	}()
}

// Stop ends the animation and clears its line.
func (s *Spinner) Stop() {
	if !s.enabled || s.done == nil {
		return
	}
	close(s.done)
	<-s.stopped
	s.done = nil
}

// Interactive reports whether stdout is a terminal capable of incremental
// rendering.
func Interactive() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) && os.Getenv("TERM") != "dumb"
}

// ClearScreen clears the terminal before an interactive session.
func ClearScreen(out io.Writer) {
	fmt.Fprint(out, "\033[2J\033[H")
}

var (
	headingStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	subheadingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	codeStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	separatorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// FormatAnswer styles a buffered markdown answer for terminal display:
// headings are emphasised, bullets indented, inline code highlighted. Used
// only for non-streaming output; streamed chunks pass through untouched.
func FormatAnswer(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "# "):
			lines[i] = separatorStyle.Render("────────────────────────") + "\n" +
				headingStyle.Render(line[2:])
		case strings.HasPrefix(line, "## "):
			lines[i] = headingStyle.Render(line[3:])
		case strings.HasPrefix(line, "### "):
			lines[i] = "  " + subheadingStyle.Render(line[4:])
		case strings.HasPrefix(line, "- "):
			lines[i] = "  • " + line[2:]
		default:
			lines[i] = styleInlineCode(line)
		}
	}
	return strings.Join(lines, "\n")
}

// styleInlineCode replaces `code` spans with a highlighted rendering.
// Unbalanced backticks leave the line untouched.
func styleInlineCode(line string) string {
	parts := strings.Split(line, "`")
	if len(parts) < 3 || len(parts)%2 == 0 {
		return line
	}
	var b strings.Builder
	for i, part := range parts {
		if i%2 == 1 {
			b.WriteString(codeStyle.Render(part))
		} else {
			b.WriteString(part)
		}
	}
	return b.String()
}
