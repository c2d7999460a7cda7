package runtui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MacroPower/synclab/internal/scenario"
)

var (
	currentNameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("211"))
	doneStyle        = lipgloss.NewStyle().Margin(1, 2)
	errStyle         = lipgloss.NewStyle().Margin(1, 2)
	progressStyle    = lipgloss.NewStyle().Margin(1, 2)
	spinnerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	checkMark        = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).SetString("✓")
	errorMark        = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).SetString("✗")
)

type (
	// EventTotal sets the number of scenarios that will run.
	EventTotal int

	// EventStarted is sent when a scenario starts.
	EventStarted string

	// EventFinished is sent when a scenario ends, whether it passed, failed
	// or could not complete.
	EventFinished struct {
		Err    error
		Report scenario.Report
	}

	// EventDone is sent after the last scenario.
	EventDone struct{}
)

// Model is the bubbletea model for a scenario run. Create instances with
// [NewModel].
type Model struct {
	err      error
	running  []string
	finished []scenario.Report
	spinner  spinner.Model
	progress progress.Model
	total    int
	width    int
	height   int
	done     bool
}

func NewModel() *Model {
	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)

	s := spinner.New()
	s.Style = spinnerStyle

	return &Model{
		spinner:  s,
		progress: p,
	}
}

// Reports returns the reports received so far.
func (m *Model) Reports() []scenario.Report {
	return slices.Clone(m.finished)
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.progress.SetPercent(0))
}

//nolint:ireturn // Third-party.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			return m, tea.Quit
		}

	case EventTotal:
		m.total = int(msg)

	case EventStarted:
		m.running = append(m.running, string(msg))

	case EventFinished:
		name := msg.Report.Name
		m.running = slices.DeleteFunc(m.running, func(s string) bool { return s == name })
		m.finished = append(m.finished, msg.Report)

		icon := checkMark
		if msg.Err != nil || !msg.Report.Passed {
			icon = errorMark
		}

		var progressCmd tea.Cmd
		if m.total > 0 {
			progressCmd = m.progress.SetPercent(float64(len(m.finished)) / float64(m.total))
		}

		return m, tea.Batch(
			progressCmd,
			tea.Printf("%s %s", icon, name),
		)

	case EventDone:
		m.done = true

		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case progress.FrameMsg:
		newModel, cmd := m.progress.Update(msg)
		if newModel, ok := newModel.(progress.Model); ok {
			m.progress = newModel
		}

		return m, cmd

	case error:
		m.err = msg

		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) View() string {
	if m.err != nil {
		errMsg := strings.Trim(m.err.Error(), "\r\n")

		return errStyle.Width(max(0, m.width-2)).Render(errMsg + "\n")
	}

	if m.done {
		passed := 0
		for _, rep := range m.finished {
			if rep.Passed {
				passed++
			}
		}

		return doneStyle.Render(fmt.Sprintf("Done! %d/%d scenarios passed.\n", passed, len(m.finished)))
	}

	w := lipgloss.Width(strconv.Itoa(m.total))
	count := fmt.Sprintf(" %*d/%*d", w, len(m.finished), w, m.total)

	progRendered := progressStyle.Render(m.progress.View() + count)
	gap := strings.Repeat(" ", max(0, m.width-lipgloss.Width(progRendered)))
	progOut := progRendered + gap + "\n"

	spinners := make([]string, 0, len(m.running))
	for _, name := range m.running {
		spin := m.spinner.View() + " "
		cellsAvail := max(0, m.width-lipgloss.Width(spin))

		info := lipgloss.NewStyle().MaxWidth(cellsAvail).Render("Running " + currentNameStyle.Render(name))
		gap := strings.Repeat(" ", max(0, m.width-lipgloss.Width(spin+info)))

		spinners = append(spinners, spin+info+gap)
	}

	return strings.Join(spinners, "\n") + "\n" + progOut
}
