// Package report renders styled console output for seedctl runs. All
// human-facing progress goes through here; diagnostics go to slog.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"
)

var summaryBorder = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240")).
	Padding(0, 2)

// Title prints a section heading.
func Title(w io.Writer, s string) {
	fmt.Fprintf(w, "\n%s\n", zstyle.Title.Render(s))
}

// Infof prints a muted informational line.
func Infof(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, zstyle.MutedText.Render(fmt.Sprintf(format, args...)))
}

// OKf prints a success line.
func OKf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", zstyle.StatusOK.Render("✓"), fmt.Sprintf(format, args...))
}

// Warnf prints a non-fatal warning line.
func Warnf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", zstyle.StatusWarn.Render("!"), fmt.Sprintf(format, args...))
}

// Failf prints a failure line.
func Failf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", zstyle.StatusErr.Render("✗"), fmt.Sprintf(format, args...))
}

// Row is one label/value pair in a summary block.
type Row struct {
	Label string
	Value string
}

// Summary renders a bordered block of label/value rows under a heading.
func Summary(w io.Writer, heading string, rows []Row) {
	width := 0
	for _, r := range rows {
		if len(r.Label) > width {
			width = len(r.Label)
		}
	}

	var b strings.Builder
	b.WriteString(zstyle.Subtitle.Render(heading))
	for _, r := range rows {
		fmt.Fprintf(&b, "\n%-*s  %s", width+1, r.Label+":", zstyle.Highlight.Render(r.Value))
	}

	fmt.Fprintln(w, summaryBorder.Render(b.String()))
}
