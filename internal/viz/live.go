package viz

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/numeric"
	"github.com/san-kum/physlab/internal/params"
	"github.com/san-kum/physlab/internal/registry"
	"github.com/san-kum/physlab/internal/sim"
)

const (
	panelWidth      = 40
	barWidth        = 12
	historyCapacity = 120
	maxEvents       = 4

	defaultCanvasWidth  = 60
	defaultCanvasHeight = 22
)

// Live is the terminal host for one mounted simulation. Frames come from
// Bubble Tea ticks; the controller owns the run status.
type Live struct {
	meta   registry.Meta
	ctrl   *sim.Controller
	frames *TeaFrames
	canvas *Canvas
	theme  Theme
	st     styles

	selected  int
	chart     int
	history   []float64
	events    []dynamo.Event
	message   string
	showHelp  bool
	autoStart bool
	quitting  bool
}

type liveConfig struct {
	fps       float64
	maxDt     float64
	theme     string
	chart     string
	autoStart bool
	logger    *slog.Logger
}

type LiveOption func(*liveConfig)

func WithFPS(fps float64) LiveOption { return func(c *liveConfig) { c.fps = fps } }

func WithStepLimit(maxDt float64) LiveOption { return func(c *liveConfig) { c.maxDt = maxDt } }

func WithTheme(name string) LiveOption { return func(c *liveConfig) { c.theme = name } }

// WithChart selects the derived quantity plotted under the readouts.
func WithChart(name string) LiveOption { return func(c *liveConfig) { c.chart = name } }

// WithAutoStart launches the simulation as soon as the program starts.
func WithAutoStart(on bool) LiveOption { return func(c *liveConfig) { c.autoStart = on } }

// WithLiveLogger sets the controller logger. The default discards output
// so nothing is written over the alternate screen.
func WithLiveLogger(l *slog.Logger) LiveOption { return func(c *liveConfig) { c.logger = l } }

func NewLive(meta registry.Meta, s dynamo.Simulation, opts ...LiveOption) *Live {
	cfg := liveConfig{
		fps:    60,
		maxDt:  sim.DefaultMaxDt,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Live{
		meta:      meta,
		frames:    NewTeaFrames(cfg.fps),
		canvas:    NewCanvas(defaultCanvasWidth, defaultCanvasHeight),
		theme:     GetTheme(cfg.theme),
		autoStart: cfg.autoStart,
	}
	m.st = newStyles(m.theme)
	m.ctrl = sim.NewController(s, m.frames,
		sim.WithLogger(cfg.logger),
		sim.WithMaxDt(cfg.maxDt),
		sim.WithObserver(sim.ObserverFunc(m.observe)),
	)
	if cfg.chart != "" {
		for i, name := range s.Derive().Names() {
			if name == cfg.chart {
				m.chart = i
			}
		}
	}
	return m
}

func (m *Live) Controller() *sim.Controller { return m.ctrl }
func (m *Live) Frames() *TeaFrames          { return m.frames }
func (m *Live) Theme() Theme                { return m.theme }
func (m *Live) Message() string             { return m.message }

// History returns the plotted samples, oldest first.
func (m *Live) History() []float64 { return m.history }

func (m *Live) Init() tea.Cmd {
	if m.autoStart {
		m.report(m.ctrl.Launch())
	}
	return m.frames.Cmd()
}

func (m *Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FrameMsg:
		m.frames.Deliver(msg)
	case tea.WindowSizeMsg:
		m.Resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if cmd := m.handleKey(msg); cmd != nil {
			return m, cmd
		}
	}
	return m, m.frames.Cmd()
}

// Resize fits the canvas to a terminal of w x h cells.
func (m *Live) Resize(w, h int) {
	cw := max(w-panelWidth-8, 20)
	ch := max(h-4, 8)
	m.canvas = NewCanvas(cw, ch)
}

func (m *Live) handleKey(msg tea.KeyMsg) tea.Cmd {
	m.message = ""
	switch msg.String() {
	case "q", "ctrl+c":
		m.ctrl.Close()
		m.quitting = true
		return tea.Quit
	case " ":
		m.report(m.ctrl.Toggle())
	case "l":
		m.clearTrace()
		m.report(m.ctrl.Launch())
	case "r":
		m.clearTrace()
		m.report(m.ctrl.Reset())
	case "tab":
		m.cycleParam(1)
	case "shift+tab":
		m.cycleParam(-1)
	case "up", "k", "right":
		m.nudge(1)
	case "down", "j", "left":
		m.nudge(-1)
	case "pgup":
		m.nudge(10)
	case "pgdown":
		m.nudge(-10)
	case "c":
		if n := len(m.ctrl.Simulation().Derive()); n > 0 {
			m.chart = (m.chart + 1) % n
			m.history = m.history[:0]
		}
	case "t":
		m.theme = NextTheme(m.theme.Name)
		m.st = newStyles(m.theme)
	case "?":
		m.showHelp = !m.showHelp
	}
	return nil
}

func (m *Live) specs() []params.Spec { return m.ctrl.Simulation().Params().Specs() }

func (m *Live) cycleParam(dir int) {
	n := len(m.specs())
	if n == 0 {
		return
	}
	m.selected = ((m.selected+dir)%n + n) % n
}

func (m *Live) nudge(n int) {
	specs := m.specs()
	if len(specs) == 0 {
		return
	}
	name := specs[m.selected].Name
	_, err := m.ctrl.NudgeParam(name, n)
	if errors.Is(err, params.ErrParameterLocked) {
		m.message = name + " is locked while running"
		return
	}
	m.report(err)
}

func (m *Live) report(err error) {
	if err != nil {
		m.message = err.Error()
	}
}

func (m *Live) clearTrace() {
	m.history = m.history[:0]
	m.events = m.events[:0]
}

func (m *Live) observe(s dynamo.Simulation, info sim.FrameInfo) {
	d := s.Derive()
	if m.chart < len(d) {
		m.history = append(m.history, d[m.chart].Value)
		if len(m.history) > historyCapacity {
			m.history = m.history[len(m.history)-historyCapacity:]
		}
	}
	m.events = append(m.events, info.Outcome.Events...)
	if len(m.events) > maxEvents {
		m.events = m.events[len(m.events)-maxEvents:]
	}
}

func (m *Live) View() string {
	if m.quitting {
		return ""
	}
	s := m.ctrl.Simulation()
	Rasterize(m.canvas, s.Render())
	canvasView := m.st.canvas.Render(m.canvas.String())

	var b strings.Builder
	status := m.ctrl.Status()
	b.WriteString(m.st.title.Render(strings.ToUpper(m.meta.Title)) + "\n")
	b.WriteString(m.st.status[status].Render(strings.ToUpper(status.String())))
	b.WriteString(m.st.sub.Render(fmt.Sprintf("  t=%.2fs  frame %d", s.Elapsed(), m.ctrl.Frame())) + "\n")

	b.WriteString(m.st.header.Render("PARAMETERS") + "\n")
	store := s.Params()
	for i, sp := range store.Specs() {
		v := store.Get(sp.Name)
		ratio := 0.0
		if sp.Max > sp.Min {
			ratio = (v - sp.Min) / (sp.Max - sp.Min)
		}
		mark := " "
		if !sp.Live && store.Locked() {
			mark = "·"
		}
		line := fmt.Sprintf("%-9s %s %s", sp.Name, ProgressBar(ratio, barWidth), numeric.Compact(v, sp.Unit))
		if i == m.selected {
			b.WriteString(m.st.active.Render(">"+mark+line) + "\n")
		} else {
			b.WriteString(m.st.label.Render(" "+mark+line) + "\n")
		}
	}
	if len(store.Specs()) == 0 {
		b.WriteString(m.st.label.Render("  (none)") + "\n")
	}

	d := s.Derive()
	b.WriteString(m.st.header.Render("READOUTS") + "\n")
	for _, q := range d {
		b.WriteString(m.st.value.Render("  "+q.String()) + "\n")
	}

	if len(m.history) > 1 && m.chart < len(d) {
		chart := asciigraph.Plot(m.history,
			asciigraph.Height(4),
			asciigraph.Width(panelWidth-10),
			asciigraph.Caption(d[m.chart].Label))
		b.WriteString("\n" + m.st.graph.Render(chart) + "\n")
	}

	if len(m.events) > 0 {
		b.WriteString(m.st.header.Render("EVENTS") + "\n")
		for _, ev := range m.events {
			b.WriteString(m.st.value.Render(fmt.Sprintf("  %6.2fs %s %s", ev.Time, ev.Name, ev.Detail)) + "\n")
		}
	}
	if m.message != "" {
		b.WriteString("\n" + m.st.active.Render(m.message) + "\n")
	}
	b.WriteString(m.st.help.Render("SP:Run/Pause L:Launch R:Reset Q:Quit\nTAB:Param ↑↓:Tune C:Chart T:Theme ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, m.st.panel.Render(b.String()))
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space     - Run / pause             ║
║  L         - Launch from the start   ║
║  R         - Reset to ready          ║
║  Tab       - Next parameter          ║
║  Up/Down   - Nudge parameter         ║
║  PgUp/PgDn - Nudge by ten steps      ║
║  C         - Cycle plotted quantity  ║
║  T         - Cycle themes            ║
║  ?         - Toggle this help        ║
║  Q         - Quit                    ║
╚══════════════════════════════════════╝
`

// RunLive runs one simulation full screen until the user quits.
func RunLive(meta registry.Meta, s dynamo.Simulation, opts ...LiveOption) error {
	_, err := tea.NewProgram(NewLive(meta, s, opts...), tea.WithAltScreen()).Run()
	return err
}
