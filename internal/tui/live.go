// Package tui is the interactive terminal front end: a live canvas of
// the simulation plus metric readouts, driven by bubbletea ticks. All
// engine mutation happens inside Update, strictly between steps.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/gravlab/internal/engine"
	"github.com/san-kum/gravlab/internal/scenario"
	"github.com/san-kum/gravlab/internal/viz"
)

const (
	canvasWidth  = 78
	canvasHeight = 22
	historyCap   = 300
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	canvasStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type Model struct {
	eng          *engine.Engine
	scenarioName string
	seed         int64
	dt           float64
	stepsPerTick int
	canvas       *viz.Canvas
	energy       []float64
	status       string
}

func NewModel(eng *engine.Engine, scenarioName string, seed int64, dt float64) Model {
	return Model{
		eng:          eng,
		scenarioName: scenarioName,
		seed:         seed,
		dt:           dt,
		stepsPerTick: 1,
		canvas:       viz.NewCanvas(canvasWidth, canvasHeight),
		energy:       make([]float64, 0, historyCap),
	}
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.eng.Paused() {
				m.eng.Resume()
			} else {
				m.eng.Pause()
			}
		case "r":
			m.reset()
		case "+", "=":
			if m.stepsPerTick < 16 {
				m.stepsPerTick *= 2
			}
		case "-":
			if m.stepsPerTick > 1 {
				m.stepsPerTick /= 2
			}
		}
		return m, nil

	case tickMsg:
		if !m.eng.Paused() {
			for i := 0; i < m.stepsPerTick; i++ {
				if err := m.eng.Step(m.dt); err != nil {
					m.status = err.Error()
					break
				}
			}
			m.energy = append(m.energy, m.eng.Metrics().TotalEnergy)
			if len(m.energy) > historyCap {
				m.energy = m.energy[1:]
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) reset() {
	specs, err := scenario.Build(m.scenarioName, m.seed)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.eng.Reset()
	if err := m.eng.Populate(specs); err != nil {
		m.status = err.Error()
		return
	}
	m.energy = m.energy[:0]
	m.status = ""
}

func (m Model) View() string {
	bodies := m.eng.Store().All()
	m.canvas.Clear()
	m.canvas.FitBodies(bodies)
	m.canvas.DrawBodies(bodies)

	met := m.eng.Metrics()
	header := headerStyle.Render(fmt.Sprintf("gravlab · %s", m.scenarioName))
	if met.Paused {
		header += "  " + pausedStyle.Render("[paused]")
	}

	var stats strings.Builder
	row := func(label, value string) {
		stats.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("bodies", fmt.Sprintf("%d", met.BodyCount))
	row("time", fmt.Sprintf("%.2f", met.Elapsed))
	row("energy", fmt.Sprintf("%.4g", met.TotalEnergy))
	row("momentum", fmt.Sprintf("%.4g", met.TotalMomentum))
	row("avg speed", fmt.Sprintf("%.3g", met.AverageSpeed))
	row("merges", fmt.Sprintf("%d", met.Merges))
	row("speed", fmt.Sprintf("%dx", m.stepsPerTick))

	view := header + "\n" +
		canvasStyle.Render(strings.TrimRight(m.canvas.String(), "\n")) + "\n" +
		stats.String()
	if m.status != "" {
		view += pausedStyle.Render(m.status) + "\n"
	}
	view += helpStyle.Render("space pause · r reset · +/- speed · q quit")
	return view
}

// Run starts the live view and blocks until quit.
func Run(eng *engine.Engine, scenarioName string, seed int64, dt float64) error {
	_, err := tea.NewProgram(NewModel(eng, scenarioName, seed, dt), tea.WithAltScreen()).Run()
	return err
}
