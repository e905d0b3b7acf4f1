// Package zle adapts the orchestrator's editing-surface interface to zsh's
// line editor. The binary is invoked from a zle widget with the current
// buffer on stdin; mutations are emitted as a zsh script on stdout which the
// widget evals. Nothing is emitted on failure or interrupt, so an aborted
// invocation leaves the command line exactly as it was.
package zle

import (
	"fmt"
	"io"
	"strings"
)

// Editor implements orchestrate.Editor by buffering zle statements.
type Editor struct {
	buffer string
	out    io.Writer
	stmts  []string
}

// NewEditor creates an Editor over the given buffer text, emitting to out.
func NewEditor(buffer string, out io.Writer) *Editor {
	return &Editor{buffer: buffer, out: out}
}

func (e *Editor) Buffer() (string, error) {
	return e.buffer, nil
}

func (e *Editor) SetBuffer(text string) error {
	e.buffer = text
	e.stmts = append(e.stmts, "BUFFER="+Quote(text))
	return nil
}

func (e *Editor) SetCursor(pos int) error {
	e.stmts = append(e.stmts, fmt.Sprintf("CURSOR=%d", pos))
	return nil
}

func (e *Editor) AppendHistory(text string) error {
	e.stmts = append(e.stmts, "print -s -- "+Quote(text))
	return nil
}

func (e *Editor) PrintOutOfBand(text string) error {
	e.stmts = append(e.stmts, "print -rn -- "+Quote(text))
	return nil
}

func (e *Editor) RedrawPrompt() error {
	e.stmts = append(e.stmts, "zle reset-prompt")
	return nil
}

// Flush writes the accumulated statements. It must only be called after the
// orchestrator has completed successfully; a partial script must never reach
// the widget.
func (e *Editor) Flush() error {
	if len(e.stmts) == 0 {
		return nil
	}
	if _, err := io.WriteString(e.out, strings.Join(e.stmts, "\n")+"\n"); err != nil {
		return fmt.Errorf("failed to emit zle script: %w", err)
	}
	return nil
}

// Quote returns s as a zsh single-quoted literal.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
