package preview

import (
	"image"
	"image/color"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/gowarp/clock"
	"github.com/richinsley/gowarp/params"
	"github.com/richinsley/gowarp/sketch"
)

func TestColorModeFor(t *testing.T) {
	assert.Equal(t, colorOff, colorModeFor("xterm-256color", "truecolor", true))
	assert.Equal(t, colorOff, colorModeFor("dumb", "", false))
	assert.Equal(t, colorOff, colorModeFor("", "", false))
	assert.Equal(t, colorTrue, colorModeFor("xterm", "24bit", false))
	assert.Equal(t, colorTrue, colorModeFor("xterm", "TrueColor", false))
	assert.Equal(t, colorANSI256, colorModeFor("xterm-256color", "", false))
}

func TestBrightnessRamp(t *testing.T) {
	assert.Equal(t, byte(' '), brightnessChar(0))
	assert.Equal(t, byte('@'), brightnessChar(255))
	assert.Equal(t, uint8(255), luminance(255, 255, 255))
	assert.Equal(t, uint8(0), luminance(0, 0, 0))
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestRenderASCII(t *testing.T) {
	r := newFrameRenderer(colorOff)
	out := r.Render(solid(20, 10, color.RGBA{255, 255, 255, 255}), 5, 3)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	for _, l := range lines {
		assert.Equal(t, "@@@@@", l)
	}
}

func TestRenderHalfBlock(t *testing.T) {
	r := newFrameRenderer(colorTrue)
	assert.Equal(t, 8, r.pixelRows(4))
	out := r.Render(solid(16, 16, color.RGBA{10, 20, 30, 255}), 4, 4)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	for _, l := range lines {
		assert.Equal(t, 4, strings.Count(l, "▀"))
		// Identical colours are emitted once per row.
		assert.Equal(t, 1, strings.Count(l, "\x1b[38;2;10;20;30m"))
		assert.Equal(t, 1, strings.Count(l, "\x1b[48;2;10;20;30m"))
		assert.True(t, strings.HasSuffix(l, ansiReset))
	}
}

func TestRenderEmpty(t *testing.T) {
	r := newFrameRenderer(colorOff)
	assert.Empty(t, r.Render(nil, 4, 4))
	assert.Empty(t, r.Render(solid(4, 4, color.RGBA{}), 0, 4))
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	sk, err := sketch.New(sketch.Config{Width: 16, Height: 16, Detail: 2, Workers: 2, Seed: 3})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sk.Dispose() })

	m := New(sk, clock.New(clock.NewManualSource(), clock.DefaultDuration), 30)
	m.renderer = newFrameRenderer(colorOff)
	m.snapshotDir = t.TempDir()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	return next.(Model)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestWindowSizeLaysOutFrame(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, 60-panelWidth, m.cols)
	assert.Equal(t, 20-footerLines, m.rows)
}

func TestTickRendersFrame(t *testing.T) {
	m := newTestModel(t)
	m, cmd := update(t, m, tickMsg(time.Now()))
	require.NotNil(t, cmd)
	require.NotNil(t, m.last)
	assert.Equal(t, m.cols*supersample, m.last.Rect.Dx())
	assert.Equal(t, m.rows*supersample, m.last.Rect.Dy())
	assert.Len(t, strings.Split(m.frame, "\n"), m.rows)

	view := m.View()
	assert.Contains(t, view, params.DisplacementScale)
	assert.Contains(t, view, helpText())
}

func TestKeysEditParameters(t *testing.T) {
	m := newTestModel(t)
	reg := m.sk.Params()

	m, _ = update(t, m, runes("2"))
	i, _ := reg.Choice(params.ActiveField)
	assert.Equal(t, 1, i)
	m, _ = update(t, m, runes("1"))
	i, _ = reg.Choice(params.ActiveField)
	assert.Equal(t, 0, i)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, params.DisplacementScale, controls[m.selected])
	before := reg.Float(params.DisplacementScale)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.InDelta(t, before+0.001, reg.Float(params.DisplacementScale), 1e-9)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, params.AudioGain, controls[m.selected])

	require.True(t, reg.Bool(params.InLightEnabled))
	m, _ = update(t, m, runes("i"))
	assert.False(t, reg.Bool(params.InLightEnabled))

	m, _ = update(t, m, runes("r"))
	assert.True(t, reg.Bool(params.InLightEnabled))
	assert.InDelta(t, 0.024, reg.Float(params.DisplacementScale), 1e-9)

	m, _ = update(t, m, runes(" "))
	assert.True(t, m.clk.Paused())
}

func TestQuitKey(t *testing.T) {
	m := newTestModel(t)
	_, cmd := update(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestSnapshotKey(t *testing.T) {
	m := newTestModel(t)
	_, cmd := update(t, m, runes("s"))
	assert.Nil(t, cmd, "no frame yet")

	m, _ = update(t, m, tickMsg(time.Now()))
	m, cmd = update(t, m, runes("s"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(snapshotMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)
	_, err := os.Stat(msg.path)
	assert.NoError(t, err)

	m, _ = update(t, m, msg)
	assert.Contains(t, m.status, "Saved")
}

func TestMouseDrivesPointer(t *testing.T) {
	m := newTestModel(t)
	rest := m.sk.Anchor()

	m, _ = update(t, m, tea.MouseMsg{X: 5, Y: 3, Action: tea.MouseActionMotion})
	assert.True(t, m.inside)
	for i := 0; i < 5; i++ {
		m, _ = update(t, m, tickMsg(time.Now()))
	}
	assert.Greater(t, m.sk.Anchor().Z(), rest.Z())

	m, _ = update(t, m, tea.MouseMsg{X: m.cols + 3, Y: 3, Action: tea.MouseActionMotion})
	assert.False(t, m.inside)
}
