package preview

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/richinsley/gowarp/clock"
	"github.com/richinsley/gowarp/encoder"
	"github.com/richinsley/gowarp/field"
	"github.com/richinsley/gowarp/params"
	"github.com/richinsley/gowarp/sketch"
)

const (
	panelWidth  = 34
	footerLines = 3
	// supersample renders the sketch larger than the cell grid so the
	// downscale smooths edges.
	supersample = 2
)

// controls are the parameters the panel edits, in display order.
var controls = []string{
	params.ActiveField,
	params.DisplacementScale,
	params.TileFactor,
	params.StripeWidth,
	params.StripeAngle,
	params.BlobAmplitude,
	params.InLightEnabled,
	params.OutLightEnabled,
	params.AudioGain,
}

// Model is the Bubbletea model for the terminal preview. It is the
// sketch's control surface as well as its display.
type Model struct {
	sk          *sketch.Sketch
	clk         *clock.Clock
	renderer    *frameRenderer
	progress    progress.Model
	interval    time.Duration
	snapshotDir string

	width    int
	height   int
	cols     int
	rows     int
	frame    string
	last     *image.RGBA
	index    int64
	playhead float64
	selected int
	inside   bool

	status     string
	statusTime time.Time
	err        error
}

// New returns a model rendering sk at fps frames per second.
func New(sk *sketch.Sketch, clk *clock.Clock, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	return Model{
		sk:       sk,
		clk:      clk,
		renderer: newFrameRenderer(detectColorMode()),
		progress: progress.New(
			progress.WithScaledGradient("#FF8C00", "#FF5F1F"),
			progress.WithoutPercentage(),
		),
		interval: time.Second / time.Duration(fps),
		cols:     40,
		rows:     12,
	}
}

// Err is the error that ended the program, if any.
func (m Model) Err() error { return m.err }

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.interval), tea.SetWindowTitle("gowarp"))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.cols = max(8, msg.Width-panelWidth)
		m.rows = max(4, msg.Height-footerLines)
		m.progress.Width = m.cols
		m.sk.Resize(m.cols*supersample, m.renderer.pixelRows(m.rows)*supersample)
		return m, nil

	case tickMsg:
		f := m.clk.Tick()
		img, err := m.sk.RenderFrame(context.Background(), f)
		if err != nil {
			m.err = err
			return m, tea.Quit
		}
		m.last = img
		m.index = f.Index
		m.playhead = f.Playhead
		m.frame = m.renderer.Render(img, m.cols, m.rows)
		if m.status != "" && time.Since(m.statusTime) > 5*time.Second {
			m.status = ""
		}
		return m, tickCmd(m.interval)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case snapshotMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("Snapshot failed: %v", msg.err))
		} else {
			m.setStatus("Saved " + msg.path)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusTime = time.Now()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if isQuit(msg) {
		return m, tea.Quit
	}
	reg := m.sk.Params()
	switch msg.String() {
	case " ", "space":
		if m.clk.Toggle() {
			m.setStatus("Paused")
		} else {
			m.setStatus("")
		}
	case "1":
		m.set(params.ActiveField, float64(field.Box))
	case "2":
		m.set(params.ActiveField, float64(field.Stripe))
	case "tab", "down", "j":
		m.selected = (m.selected + 1) % len(controls)
	case "shift+tab", "up", "k":
		m.selected = (m.selected + len(controls) - 1) % len(controls)
	case "right", "l", "+":
		m.nudge(controls[m.selected], 1)
	case "left", "h", "-":
		m.nudge(controls[m.selected], -1)
	case "i":
		m.nudge(params.InLightEnabled, 1)
	case "o":
		m.nudge(params.OutLightEnabled, 1)
	case "r":
		for _, name := range controls {
			if s, ok := reg.Spec(name); ok {
				m.set(name, s.Default)
			}
		}
		m.setStatus("Parameters reset")
	case "s":
		if m.last == nil {
			return m, nil
		}
		img := m.last
		path := filepath.Join(m.snapshotDir, fmt.Sprintf("gowarp-%05d.png", m.index))
		return m, func() tea.Msg {
			return snapshotMsg{path: path, err: encoder.Snapshot(path, img)}
		}
	}
	return m, nil
}

func (m *Model) set(name string, v float64) {
	if err := m.sk.SetParameter(name, v); err != nil {
		m.setStatus(err.Error())
	}
}

func (m *Model) nudge(name string, steps int) {
	if _, err := m.sk.Params().Nudge(name, steps); err != nil {
		m.setStatus(err.Error())
	}
}

// handleMouse maps cell motion over the frame to sketch pixels. Leaving
// the frame area counts as the pointer leaving the surface.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionMotion && msg.Action != tea.MouseActionPress {
		return
	}
	over := msg.X >= 0 && msg.X < m.cols && msg.Y >= 0 && msg.Y < m.rows
	if !over {
		if m.inside {
			m.inside = false
			m.sk.OnPointerLeave()
		}
		return
	}
	if !m.inside {
		m.inside = true
		m.sk.OnPointerEnter()
	}
	cellH := float64(m.renderer.pixelRows(m.rows)) / float64(m.rows)
	x := (float64(msg.X) + 0.5) * supersample
	y := (float64(msg.Y) + 0.5) * cellH * supersample
	m.sk.OnPointerMove(x, y)
}

func (m Model) View() string {
	frame := m.frame
	if frame == "" {
		frame = strings.Repeat("\n", m.rows-1)
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, frame, panelStyle.Render(m.panel()))

	var b strings.Builder
	b.WriteString(body)
	b.WriteByte('\n')
	b.WriteString(m.progress.ViewAs(m.playhead))
	b.WriteByte('\n')
	b.WriteString(statusStyle.Render(m.status))
	b.WriteByte('\n')
	b.WriteString(helpStyle.Render(helpText()))
	return b.String()
}

func (m Model) panel() string {
	reg := m.sk.Params()
	lines := []string{titleStyle.Render("gowarp"), ""}
	for i, name := range controls {
		line := fmt.Sprintf("%-19s %s", name, reg.Format(name))
		if i == m.selected {
			lines = append(lines, selectedStyle.Render("> "+line))
		} else {
			lines = append(lines, paramStyle.Render("  "+line))
		}
	}
	lines = append(lines, "", paramStyle.Render(fmt.Sprintf("frame %d", m.index)))
	if m.clk.Paused() {
		lines = append(lines, statusStyle.Render("paused"))
	}
	return strings.Join(lines, "\n")
}
