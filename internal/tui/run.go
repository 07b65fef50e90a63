package tui

import (
	"errors"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrInterrupted is returned by RunWithWork when the user quit early.
var ErrInterrupted = errors.New("interrupted")

// RunWithWork creates a bubbletea program, launches workFn in a goroutine,
// and blocks until the program exits. workFn receives a send callback that
// wraps tea.Program.Send with a small yield so the renderer can draw between
// updates.
func RunWithWork(out io.Writer, model ProgressModel, workFn func(send func(tea.Msg))) error {
	p := tea.NewProgram(model, tea.WithOutput(out))

	go func() {
		// Let bubbletea start its event loop and render the initial frame.
		time.Sleep(50 * time.Millisecond)

		workFn(func(msg tea.Msg) {
			p.Send(msg)
			time.Sleep(2 * time.Millisecond)
		})

		p.Send(WorkDoneMsg{})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := finalModel.(ProgressModel); ok {
		if m.Err() != nil {
			return m.Err()
		}
		if m.Interrupted() {
			return ErrInterrupted
		}
	}
	return nil
}
