// Package preview renders the sketch in a terminal and doubles as its
// control panel.
package preview

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/richinsley/gowarp/clock"
	"github.com/richinsley/gowarp/options"
	"github.com/richinsley/gowarp/sketch"
)

const maxFPS = 30

// Run starts the terminal preview and blocks until the user quits. Log
// output goes to gowarp-preview.log so it does not tear the display.
func Run(o *options.SketchOptions, newSketch sketch.Factory) error {
	f, err := tea.LogToFile("gowarp-preview.log", "preview")
	if err != nil {
		return fmt.Errorf("preview log: %w", err)
	}
	defer f.Close()

	sk, err := newSketch(80*supersample, 48*supersample, nil, false)
	if err != nil {
		return err
	}
	defer sk.Dispose()

	clk := clock.New(clock.NewWallSource(), o.LoopDuration())
	m := New(sk, clk, min(*o.FPS, maxFPS))
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	final, err := program.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}
