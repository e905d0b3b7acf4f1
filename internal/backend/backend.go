package backend

import (
	"context"
	"fmt"

	"github.com/hmartin/llmsuggest/internal/config"
)

// MissingPrerequisites prefixes every prerequisite error so the shell widget
// can surface it as a runnable hint.
const MissingPrerequisites = "llmsuggest missing prerequisites:"

// Mode selects what a backend does with the query text.
type Mode string

const (
	ModeGenerate Mode = "generate"
	ModeExplain  Mode = "explain"
)

// Valid reports whether the mode is one of the known modes.
func (m Mode) Valid() bool {
	return m == ModeGenerate || m == ModeExplain
}

// Backend is an LLM provider that can turn natural language into a shell
// command, or explain one.
type Backend interface {
	// Name returns the provider identifier (e.g. "openai").
	Name() string

	// CheckPrerequisites verifies the provider is usable. The returned error
	// message is user-facing and should tell the user how to fix the problem.
	CheckPrerequisites() error

	// Generate turns a natural language request into a shell command.
	Generate(ctx context.Context, prompt string) (string, error)

	// Explain returns a human-readable explanation of a shell command.
	Explain(ctx context.Context, command string) (string, error)
}

// Run dispatches the query to the backend method selected by mode.
func Run(ctx context.Context, b Backend, mode Mode, query string) (string, error) {
	switch mode {
	case ModeGenerate:
		return b.Generate(ctx, query)
	case ModeExplain:
		return b.Explain(ctx, query)
	default:
		return "", fmt.Errorf("unknown mode: %s", mode)
	}
}

// New returns the backend named by provider.
func New(provider string, cfg *config.Config) (Backend, error) {
	switch provider {
	case "openai":
		return NewOpenAIBackend(cfg.OpenAIModel), nil
	case "copilot":
		return NewCopilotBackend(), nil
	case "claude":
		return NewClaudeBackend(), nil
	default:
		return nil, fmt.Errorf("unknown provider: %q", provider)
	}
}

// Providers lists the known provider names.
func Providers() []string {
	return []string{"openai", "copilot", "claude"}
}
