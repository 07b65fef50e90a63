package tui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// StatusWriter prints a spinning status line to a terminal while a slow step
// (version query, candidate probing) runs.
type StatusWriter struct {
	w          io.Writer
	mu         sync.Mutex
	message    string
	phaseStart time.Time
	done       chan struct{}
	stopped    bool
}

// NewStatusWriter starts a background spinner that renders msg to w every
// 100ms.
func NewStatusWriter(w io.Writer, msg string) *StatusWriter {
	sw := &StatusWriter{
		w:          w,
		message:    msg,
		phaseStart: time.Now(),
		done:       make(chan struct{}),
	}
	go sw.loop()
	return sw
}

// Update changes the status message and restarts the elapsed timer.
func (sw *StatusWriter) Update(msg string) {
	sw.mu.Lock()
	sw.message = msg
	sw.phaseStart = time.Now()
	sw.mu.Unlock()
}

// Stop clears the status line and stops the spinner.
func (sw *StatusWriter) Stop() {
	sw.mu.Lock()
	if sw.stopped {
		sw.mu.Unlock()
		return
	}
	sw.stopped = true
	close(sw.done)
	fmt.Fprintf(sw.w, "\r\033[K")
	sw.mu.Unlock()
}

// WithStatus runs fn while showing msg on w when w is a terminal.
func WithStatus(w io.Writer, msg string, fn func()) {
	if !IsTerminal(w) {
		fn()
		return
	}
	sw := NewStatusWriter(w, msg)
	defer sw.Stop()
	fn()
}

func (sw *StatusWriter) loop() {
	tick := 0
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sw.done:
			return
		case <-ticker.C:
			sw.mu.Lock()
			if sw.stopped {
				sw.mu.Unlock()
				return
			}
			spinner := spinnerFrames[tick%len(spinnerFrames)]
			tick++
			fmt.Fprintf(sw.w, "\r\033[K%s %s (%s)", spinner, sw.message, formatElapsed(time.Since(sw.phaseStart)))
			sw.mu.Unlock()
		}
	}
}

// formatElapsed formats a duration for display in the status line.
func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < 10*time.Second {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}
