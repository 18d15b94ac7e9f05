// Package viewer renders a live simulation in the terminal.
package viewer

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aldemir/schelling-explorer/internal/agents"
	"github.com/aldemir/schelling-explorer/internal/engine"
	"github.com/aldemir/schelling-explorer/internal/stats"
)

// TickMsg drives the simulation clock.
type TickMsg time.Time

type view struct {
	model    *engine.Model
	interval time.Duration
	paused   bool
	stepErr  error

	density float64
	unhappy []float64

	// One style per group and happiness state, keyed by id*2+state.
	styles     []lipgloss.Style
	emptyStyle lipgloss.Style
}

func newView(m *engine.Model, interval time.Duration) view {
	styles := make([]lipgloss.Style, len(m.Groups())*2)
	for _, g := range m.Groups() {
		styles[g.ID()*2+int(agents.Happy)] = lipgloss.NewStyle().Foreground(lipgloss.Color(g.HappyColor()))
		styles[g.ID()*2+int(agents.Unhappy)] = lipgloss.NewStyle().Foreground(lipgloss.Color(g.UnhappyColor()))
	}

	return view{
		model:      m,
		interval:   interval,
		styles:     styles,
		emptyStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

func (v view) tickCmd() tea.Cmd {
	return tea.Tick(v.interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (v view) Init() tea.Cmd {
	return v.tickCmd()
}

func (v view) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			v.model.Finish()
			return v, tea.Quit
		case " ":
			v.paused = !v.paused
			return v, nil
		}
	case TickMsg:
		if v.paused {
			return v, v.tickCmd()
		}
		if !v.model.Running() {
			return v, nil
		}
		if err := v.model.Step(); err != nil {
			v.stepErr = err
			return v, tea.Quit
		}
		v.density = stats.InterfaceDensity(v.model)
		v.unhappy = stats.PercentUnhappy(v.model)
		return v, v.tickCmd()
	}
	return v, nil
}

func (v view) View() string {
	var b strings.Builder

	g := v.model.Grid()
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			cell := g.Get(x, y)
			if cell == -1 {
				b.WriteString(v.emptyStyle.Render("··"))
				continue
			}
			id := agents.GroupID(cell)
			state := agents.Happy
			if cell < 0 {
				state = agents.Unhappy
			}
			b.WriteString(v.styles[id*2+int(state)].Render("██"))
		}
		b.WriteByte('\n')
	}

	b.WriteString(fmt.Sprintf("\ntick %d  interface density %.4f", v.model.Tick(), v.density))
	for i, g := range v.model.Groups() {
		if i < len(v.unhappy) {
			b.WriteString(fmt.Sprintf("  %s unhappy %.1f%%", g.Name(), v.unhappy[i]))
		}
	}
	if v.paused {
		b.WriteString("  [paused]")
	}
	if !v.model.Running() {
		b.WriteString("  [finished]")
	}
	b.WriteString("\nspace to pause, q to quit.\n")

	return b.String()
}

// Run starts the model and drives it interactively until it stops or the
// user quits.
func Run(m *engine.Model, interval time.Duration) error {
	if err := m.Start(); err != nil {
		return err
	}

	p := tea.NewProgram(newView(m, interval), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fv, ok := final.(view); ok && fv.stepErr != nil {
		return fv.stepErr
	}
	return nil
}
