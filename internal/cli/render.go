package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/MacroPower/synclab/internal/scenario"
)

type styles struct {
	pass   lipgloss.Style
	fail   lipgloss.Style
	name   lipgloss.Style
	detail lipgloss.Style
	faint  lipgloss.Style
}

// newStyles returns styles whose colour support matches w.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)

	return styles{
		pass:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("42")).SetString("PASS"),
		fail:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")).SetString("FAIL"),
		name:   r.NewStyle().Foreground(lipgloss.Color("211")),
		detail: r.NewStyle().PaddingLeft(6),
		faint:  r.NewStyle().Faint(true),
	}
}

func renderReports(w io.Writer, reports []scenario.Report) {
	s := newStyles(w)

	width := 0
	for _, rep := range reports {
		width = max(width, len(rep.Name))
	}

	passed := 0

	for _, rep := range reports {
		mark := s.fail.String()
		if rep.Passed {
			mark = s.pass.String()
			passed++
		}

		fmt.Fprintf(w, "%s %s %s\n",
			mark,
			s.name.Width(width).Render(rep.Name),
			s.faint.Render(rep.Duration.Round(time.Millisecond).String()),
		)
		fmt.Fprintln(w, s.detail.Render(rep.Detail))
	}

	fmt.Fprintf(w, "\n%d/%d scenarios passed\n", passed, len(reports))
}

func renderScenarioList(w io.Writer, scenarios []scenario.Scenario) {
	s := newStyles(w)

	width := 0
	for _, sc := range scenarios {
		width = max(width, len(sc.Name()))
	}

	for _, sc := range scenarios {
		fmt.Fprintf(w, "%s  %s\n", s.name.Width(width).Render(sc.Name()), sc.Description())
	}
}
