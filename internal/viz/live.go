package viz

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/physics"
	"github.com/san-kum/threebody/internal/sim"
)

const (
	defaultWidth    = 60
	defaultHeight   = 24
	historyCapacity = 600
	sparkWidth      = 30
	tickInterval    = time.Second / 60
)

type TickMsg time.Time

// ModelOptions tune the live view. Zero values pick defaults.
type ModelOptions struct {
	StepsPerTick int
	Radius       float64
	TrailLength  int
	Width        int
	Height       int
	Title        string
}

type point struct{ x, y int }

// Model is a bubbletea program that pulls snapshots from an engine and
// draws the bodies with their recent trails.
type Model struct {
	engine *sim.Engine
	opts   ModelOptions
	g      float64

	next func() (dynamo.Snapshot, error, bool)
	stop func()

	current dynamo.Snapshot
	err     error
	done    bool
	running bool

	canvas *Canvas
	vp     viewport
	trails [][]point
	energy []float64
}

func NewModel(e *sim.Engine, opts ModelOptions) Model {
	if opts.StepsPerTick <= 0 {
		opts.StepsPerTick = 1
	}
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}
	if opts.TrailLength <= 0 {
		opts.TrailLength = 300
	}
	if !(opts.Radius > 0) {
		opts.Radius = 1
	}
	if opts.Title == "" {
		opts.Title = "THREE BODY"
	}

	cfg := e.Config()
	m := Model{
		engine:  e,
		opts:    opts,
		g:       cfg.G,
		canvas:  NewCanvas(opts.Width, opts.Height),
		running: true,
	}
	m.vp = newViewport(m.canvas, opts.Radius)
	m.current = dynamo.NewSnapshot(0, 0, cfg.Bodies)
	m.restart()
	return m
}

func (m *Model) restart() {
	if m.stop != nil {
		m.stop()
	}
	m.next, m.stop = iter.Pull2(m.engine.Snapshots(context.Background()))
	m.current = dynamo.NewSnapshot(0, 0, m.engine.Config().Bodies)
	m.err = nil
	m.done = false
	m.trails = make([][]point, len(m.current.Bodies))
	m.energy = m.energy[:0]
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.stop()
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.restart()
		}
	case TickMsg:
		if m.running && !m.done {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

// advance pulls StepsPerTick snapshots, recording trails and energy.
func (m *Model) advance() {
	for range m.opts.StepsPerTick {
		s, err, ok := m.next()
		if !ok {
			m.done = true
			break
		}
		if err != nil {
			m.err = err
			m.done = true
			break
		}
		m.current = s
		for i, b := range s.Bodies {
			x, y := m.vp.project(b.Position)
			trail := m.trails[i]
			if n := len(trail); n > 0 && trail[n-1] == (point{x, y}) {
				continue
			}
			trail = append(trail, point{x, y})
			if len(trail) > m.opts.TrailLength {
				trail = trail[1:]
			}
			m.trails[i] = trail
		}
	}

	m.energy = append(m.energy, physics.Energy(m.current.Bodies, m.g))
	if len(m.energy) > historyCapacity {
		m.energy = m.energy[1:]
	}
}

// Current is the latest snapshot pulled from the engine.
func (m Model) Current() dynamo.Snapshot { return m.current }

// Err is the error that ended the run, if any.
func (m Model) Err() error { return m.err }

func (m Model) Done() bool { return m.done }

func (m Model) Running() bool { return m.running }

func (m *Model) draw() {
	m.canvas.Clear()
	for i, trail := range m.trails {
		for _, p := range trail {
			m.canvas.SetOwned(p.x, p.y, i)
		}
	}
	for i, b := range m.current.Bodies {
		x, y := m.vp.project(b.Position)
		m.canvas.DrawBlob(x, y, 1, i)
	}
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return StatusError.Render("ERROR")
	case m.done:
		return StatusPaused.Render("FINISHED")
	case !m.running:
		return StatusPaused.Render("PAUSED")
	}
	return StatusRunning.Render("RUNNING")
}

func (m Model) View() string {
	m.draw()

	total := m.engine.Config().TotalSteps
	var s strings.Builder
	s.WriteString(HeaderStyle.Render(m.opts.Title) + "\n")
	s.WriteString(m.status() + "\n\n")
	s.WriteString(KeyValue("Time", fmt.Sprintf("%.2f", m.current.Time)) + "\n")
	s.WriteString(KeyValue("Step", fmt.Sprintf("%d / %d", m.current.Step, total)) + "\n")
	s.WriteString(ProgressBar(float64(m.current.Step+1)/float64(total), 24) + "\n")
	if len(m.energy) > 0 {
		s.WriteString(KeyValue("Energy", fmt.Sprintf("%.6g", m.energy[len(m.energy)-1])) + "\n")
	}
	if len(m.energy) > 1 {
		s.WriteString(Sparkline(m.energy, sparkWidth) + "\n")
	}
	c := physics.Centroid(m.current.Bodies)
	s.WriteString(KeyValue("Centre", fmt.Sprintf("(%.3f, %.3f)", c.X, c.Y)) + "\n")
	if m.err != nil {
		s.WriteString("\n" + StatusError.Render(m.err.Error()) + "\n")
	}
	s.WriteString("\n" + KeyHint.Render("space:pause  r:restart  q:quit"))

	canvasView := Panel.Render(m.canvas.Render(BodyStyles))
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, "  ", s.String())
}
