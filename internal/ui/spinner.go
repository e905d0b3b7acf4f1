package ui

import (
	"context"
	"fmt"
	"io"
	"time"
)

// SpinnerFrames contains the braille spinner animation frames.
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner renders a liveness indicator on a fixed interval while a
// background task is in flight. The terminal cursor is hidden while the
// spinner runs and restored on every exit path, including cancellation.
type Spinner struct {
	writer   io.Writer
	frames   []string
	interval time.Duration
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer) *Spinner {
	return &Spinner{
		writer:   w,
		frames:   SpinnerFrames,
		interval: 100 * time.Millisecond,
	}
}

// Start begins rendering and returns a stop function. Stopping clears the
// indicator line and re-shows the cursor; it is also triggered by ctx so the
// spinner tears down through the same cancellation path as the task it
// decorates.
func (s *Spinner) Start(ctx context.Context) func() {
	stopped := make(chan struct{})
	finished := make(chan struct{})

	go s.run(ctx, stopped, finished)

	var stopOnce bool
	return func() {
		if !stopOnce {
			stopOnce = true
			close(stopped)
		}
		<-finished
	}
}

func (s *Spinner) run(ctx context.Context, stopped, finished chan struct{}) {
	defer close(finished)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	fmt.Fprint(s.writer, "\x1b[?25l")
	defer fmt.Fprint(s.writer, "\r\x1b[K\x1b[?25h")

	frame := 0
	s.render(frame)

	for {
		select {
		case <-stopped:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			frame = (frame + 1) % len(s.frames)
			s.render(frame)
		}
	}
}

func (s *Spinner) render(frame int) {
	fmt.Fprintf(s.writer, "\r\x1b[K%s", s.frames[frame])
}
