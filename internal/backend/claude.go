package backend

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ClaudeBackend shells out to the Claude CLI.
type ClaudeBackend struct{}

func NewClaudeBackend() *ClaudeBackend {
	return &ClaudeBackend{}
}

func (c *ClaudeBackend) Name() string {
	return "claude"
}

// CheckPrerequisites verifies the claude CLI is on PATH.
func (c *ClaudeBackend) CheckPrerequisites() error {
	if _, err := exec.LookPath("claude"); err != nil {
		return fmt.Errorf("%s Install the Claude CLI first: https://docs.anthropic.com/en/docs/claude-code", MissingPrerequisites)
	}
	return nil
}

// Generate translates natural language to a shell command.
func (c *ClaudeBackend) Generate(ctx context.Context, request string) (string, error) {
	prompt := fmt.Sprintf(`%s

Convert this request into a shell command: "%s"

IMPORTANT: Respond with ONLY the command itself, nothing else. No explanations, no markdown, no code blocks. Just the raw command.`,
		c.buildSystemPrompt(), request)

	result, err := c.callClaude(ctx, prompt)
	if err != nil {
		return "", err
	}
	return StripCodeFences(result), nil
}

// Explain returns an explanation of a shell command.
func (c *ClaudeBackend) Explain(ctx context.Context, command string) (string, error) {
	prompt := fmt.Sprintf(`%s

Briefly explain how this command works: %s

Be as concise as possible. Use Markdown syntax for formatting.`,
		c.buildSystemPrompt(), command)

	return c.callClaude(ctx, prompt)
}

// buildSystemPrompt creates the system prompt for Claude.
func (c *ClaudeBackend) buildSystemPrompt() string {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}

	return fmt.Sprintf(`You are a helpful assistant for working with shell commands.

Environment:
- Operating System: %s
- Shell: %s

Guidelines:
1. Generate safe, correct shell commands
2. Use common Unix/Linux utilities when possible
3. Do not generate destructive commands without clear intent`, runtime.GOOS, shell)
}

// callClaude calls the Claude CLI with the given prompt on stdin so the
// prompt never shows up in process listings.
func (c *ClaudeBackend) callClaude(ctx context.Context, prompt string) (string, error) {
	cmd := exec.CommandContext(ctx, "claude", "-p")
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("request timed out or was cancelled: %w", ctx.Err())
		}
		return "", fmt.Errorf("failed to call claude CLI: %w\nStderr: %s", err, stderr.String())
	}

	output := strings.TrimSpace(stdout.String())
	if output == "" {
		return "", fmt.Errorf("claude CLI returned empty response")
	}

	return output, nil
}
