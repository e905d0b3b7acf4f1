// Package runner executes one backend query as a cancellable background
// task that reports its result through a scratch slot.
package runner

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hmartin/llmsuggest/internal/backend"
	"github.com/hmartin/llmsuggest/internal/scratch"
)

// Task is the awaitable handle for an in-flight query.
type Task struct {
	done   chan struct{}
	cancel context.CancelFunc
	err    error // written once before done is closed
}

// Start validates the request and spawns the query in the background. The
// caller gets the handle back immediately.
//
// The query text travels in-process only; it is never placed on a command
// line where other users could read it from process listings.
func Start(ctx context.Context, b backend.Backend, mode backend.Mode, query string, slot *scratch.Slot, logger *zap.Logger) (*Task, error) {
	if b == nil {
		return nil, fmt.Errorf("no backend provided")
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown mode: %q", mode)
	}

	query, err := backend.ValidateInput(query)
	if err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	task := &Task{
		done:   make(chan struct{}),
		cancel: cancel,
	}

	go task.run(ctx, b, mode, query, slot, logger)

	return task, nil
}

func (t *Task) run(ctx context.Context, b backend.Backend, mode backend.Mode, query string, slot *scratch.Slot, logger *zap.Logger) {
	defer close(t.done)

	result, err := t.execute(ctx, b, mode, query)
	if err != nil {
		logger.Warn("backend request failed",
			zap.String("provider", b.Name()),
			zap.String("mode", string(mode)),
			zap.Error(err))
		// Failures ride the same channel as answers: the error message is
		// written in place of a result, as plain text.
		result = errorText(mode, err)
	}

	if writeErr := slot.Write(result); writeErr != nil {
		logger.Error("failed to write scratch slot", zap.Error(writeErr))
		t.err = writeErr
		return
	}

	logger.Debug("backend request finished",
		zap.String("provider", b.Name()),
		zap.String("mode", string(mode)),
		zap.Int("response_length", len(result)))
}

func (t *Task) execute(ctx context.Context, b backend.Backend, mode backend.Mode, query string) (string, error) {
	if err := b.CheckPrerequisites(); err != nil {
		return "", err
	}
	return backend.Run(ctx, b, mode, query)
}

// Done is closed when the task has exited and its single slot write (if any)
// is complete. The slot must not be read before then.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task exits or ctx is cancelled. Cancellation also
// terminates the background work.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		t.Cancel()
		return ctx.Err()
	}
}

// Cancel requests termination of the background work and returns without
// waiting for it.
func (t *Task) Cancel() {
	t.cancel()
}

// errorText renders a backend failure as response text. In generate mode the
// text is a harmless echo command, so applying it to the editing buffer
// surfaces the error without doing anything dangerous.
func errorText(mode backend.Mode, err error) string {
	msg := err.Error()
	if mode == backend.ModeGenerate {
		return fmt.Sprintf("echo %q", strings.ReplaceAll(msg, "\n", " "))
	}
	return "ERROR: " + msg
}
