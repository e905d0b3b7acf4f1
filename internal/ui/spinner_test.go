package ui

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSpinnerRendersAndRestoresCursor(t *testing.T) {
	var out bytes.Buffer

	stop := NewSpinner(&out).Start(context.Background())
	time.Sleep(250 * time.Millisecond)
	stop()

	got := out.String()
	assert.True(t, strings.HasPrefix(got, "\x1b[?25l"), "cursor should be hidden first")
	assert.True(t, strings.HasSuffix(got, "\r\x1b[K\x1b[?25h"), "line should be cleared and cursor restored last")

	frames := 0
	for _, frame := range SpinnerFrames {
		frames += strings.Count(got, frame)
	}
	assert.GreaterOrEqual(t, frames, 2, "spinner should have animated")
}

func TestSpinnerStopsOnContextCancel(t *testing.T) {
	var out bytes.Buffer

	ctx, cancel := context.WithCancel(context.Background())
	stop := NewSpinner(&out).Start(ctx)

	cancel()
	stop()

	assert.Contains(t, out.String(), "\x1b[?25h")
}

func TestSpinnerStopIsReentrant(t *testing.T) {
	var out bytes.Buffer

	stop := NewSpinner(&out).Start(context.Background())
	stop()
	stop()
}
