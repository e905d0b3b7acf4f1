// Package orchestrate drives one end-to-end interactive request: read the
// editing buffer, dispatch the backend query as a background task, render a
// liveness indicator while waiting, and apply the response to the editing
// surface.
package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/hmartin/llmsuggest/internal/backend"
	"github.com/hmartin/llmsuggest/internal/runner"
	"github.com/hmartin/llmsuggest/internal/scratch"
	"github.com/hmartin/llmsuggest/internal/ui"
)

// ErrBusy is returned when a request arrives while another is in flight.
var ErrBusy = errors.New("a request is already in flight")

// Editor is the seam to the line-editor environment that owns the command
// line. The zsh adapter implements it for real sessions; tests use a fake.
type Editor interface {
	// Buffer returns the current command line text.
	Buffer() (string, error)

	// SetBuffer replaces the entire command line.
	SetBuffer(text string) error

	// SetCursor moves the cursor to the given character position.
	SetCursor(pos int) error

	// AppendHistory records text in the command history as if typed.
	AppendHistory(text string) error

	// PrintOutOfBand writes text to a stream distinct from the command line.
	PrintOutOfBand(text string) error

	// RedrawPrompt asks the editor to repaint its prompt.
	RedrawPrompt() error
}

// Session holds regenerate memory for one interactive shell session.
// LastResult, when set, is exactly the text last written into the editing
// buffer by a generate completion.
type Session struct {
	LastQuery  string `json:"last_query"`
	LastResult string `json:"last_result"`
}

// Recorder persists accepted suggestions. Implementations must not fail the
// completion; errors are logged and dropped.
type Recorder interface {
	Record(provider string, mode, prompt, command string) error
}

// Options configures an Orchestrator.
type Options struct {
	Backend backend.Backend
	Editor  Editor
	Session *Session

	// SpinnerWriter receives the liveness indicator. Nil disables it.
	SpinnerWriter io.Writer

	// Recorder, if set, receives every applied generate result.
	Recorder Recorder

	// Timeout bounds the backend call. Zero means no orchestrator-imposed
	// bound beyond the backend's own.
	Timeout time.Duration

	Logger *zap.Logger
}

// Orchestrator owns the interactive completion protocol. At most one request
// is in flight at a time; concurrent requests are rejected with ErrBusy.
type Orchestrator struct {
	opts Options
	busy atomic.Bool
}

// New creates an Orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("orchestrate: backend is required")
	}
	if opts.Editor == nil {
		return nil, fmt.Errorf("orchestrate: editor is required")
	}
	if opts.Session == nil {
		opts.Session = &Session{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Orchestrator{opts: opts}, nil
}

// Complete runs one interactive request. Cancelling ctx while waiting
// terminates the background task, restores the indicator-hidden terminal
// state, removes the scratch slot, and leaves the buffer untouched.
func (o *Orchestrator) Complete(ctx context.Context, mode backend.Mode) error {
	if !o.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer o.busy.Store(false)

	// Reading
	query, err := o.opts.Editor.Buffer()
	if err != nil {
		return fmt.Errorf("failed to read buffer: %w", err)
	}
	if strings.TrimSpace(query) == "" {
		return nil
	}

	if mode == backend.ModeGenerate {
		query = o.resolveRegenerate(query)
	}

	// Dispatched. A slot we cannot create is fatal for the invocation: there
	// is nowhere for the background task to write.
	slot, err := scratch.NewSlot()
	if err != nil {
		return err
	}
	defer slot.Remove()

	taskCtx := ctx
	cancel := context.CancelFunc(func() {})
	if o.opts.Timeout > 0 {
		taskCtx, cancel = context.WithTimeout(ctx, o.opts.Timeout)
	}
	defer cancel()

	task, err := runner.Start(taskCtx, o.opts.Backend, mode, query, slot, o.opts.Logger)
	if err != nil {
		return err
	}

	// Waiting. The spinner shares the task's cancellation path: stopping the
	// wait tears both down together.
	stopSpinner := func() {}
	if o.opts.SpinnerWriter != nil {
		stopSpinner = ui.NewSpinner(o.opts.SpinnerWriter).Start(taskCtx)
	}

	waitErr := task.Wait(ctx)
	stopSpinner()
	if waitErr != nil {
		// The cancelled task may still be writing the slot. Let it finish so
		// the deferred removal cannot race with a late write that would
		// recreate the slot file.
		<-task.Done()
		return waitErr
	}

	// Applying
	result, err := slot.Read()
	if err != nil {
		return err
	}

	switch mode {
	case backend.ModeGenerate:
		return o.applyGenerate(query, result)
	case backend.ModeExplain:
		return o.applyExplain(result)
	default:
		return fmt.Errorf("unknown mode: %s", mode)
	}
}

// resolveRegenerate implements regenerate-on-repeat: invoking generate on a
// buffer that still holds the previous result re-asks the original question
// instead of treating the generated command as a new query.
func (o *Orchestrator) resolveRegenerate(query string) string {
	session := o.opts.Session
	if session.LastResult != "" && query == session.LastResult && session.LastQuery != "" {
		o.opts.Logger.Debug("regenerating previous query",
			zap.String("query", session.LastQuery))
		return session.LastQuery
	}

	session.LastQuery = query
	return query
}

func (o *Orchestrator) applyGenerate(query, result string) error {
	editor := o.opts.Editor

	if err := editor.AppendHistory(query); err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}

	o.opts.Session.LastResult = result

	if err := editor.SetBuffer(result); err != nil {
		return fmt.Errorf("failed to set buffer: %w", err)
	}
	if err := editor.SetCursor(utf8.RuneCountInString(result)); err != nil {
		return fmt.Errorf("failed to set cursor: %w", err)
	}

	if o.opts.Recorder != nil {
		if err := o.opts.Recorder.Record(o.opts.Backend.Name(), string(backend.ModeGenerate), query, result); err != nil {
			o.opts.Logger.Warn("failed to record suggestion", zap.Error(err))
		}
	}

	return nil
}

func (o *Orchestrator) applyExplain(result string) error {
	editor := o.opts.Editor

	// Blank lines bracket the explanation so it stands apart from the live
	// input line, which is then repainted.
	if err := editor.PrintOutOfBand("\n" + strings.TrimRight(result, "\n") + "\n\n"); err != nil {
		return fmt.Errorf("failed to print explanation: %w", err)
	}
	if err := editor.RedrawPrompt(); err != nil {
		return fmt.Errorf("failed to redraw prompt: %w", err)
	}

	return nil
}
