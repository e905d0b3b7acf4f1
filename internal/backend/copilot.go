package backend

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
)

// suggestionNeedle marks the start of the useful part of `gh copilot suggest`
// output; everything before it is interactive chrome.
const suggestionNeedle = "# Suggestion:"

// explanationNeedle is the ANSI-styled "Explanation:" label in
// `gh copilot explain` output.
const explanationNeedle = "Explanation\x1b[0m\x1b[1m:"

// trailingChromeNeedle marks the start of the interactive prompt that
// `gh copilot suggest` appends after the suggestion.
const trailingChromeNeedle = "\x0a\x0a\x1b\x37\x1b\x5b\x3f"

var leadingResetRe = regexp.MustCompile(`^\x1b\[0m( +\n)*`)

// CopilotBackend shells out to the GitHub CLI's copilot extension.
type CopilotBackend struct{}

func NewCopilotBackend() *CopilotBackend {
	return &CopilotBackend{}
}

func (c *CopilotBackend) Name() string {
	return "copilot"
}

// CheckPrerequisites verifies the gh CLI is installed and working.
func (c *CopilotBackend) CheckPrerequisites() error {
	cmd := exec.Command("gh", "version")
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s Install GitHub CLI first by following https://github.com/cli/cli#installation", MissingPrerequisites)
	}
	return nil
}

// Generate asks gh copilot for a shell command suggestion.
func (c *CopilotBackend) Generate(ctx context.Context, prompt string) (string, error) {
	stdout, stderr, err := c.runGH(ctx, nil, "copilot", "suggest", "-t", "shell", prompt)
	if err != nil {
		return "", err
	}
	if ghErr := c.classifyError(stdout, stderr); ghErr != nil {
		return "", ghErr
	}

	if strings.Contains(stdout, "Suggestion not readily available. Please revise for better results.") {
		return "No answer from GitHub Copilot.", nil
	}

	if idx := strings.Index(stdout, suggestionNeedle); idx != -1 {
		stdout = stdout[idx+len(suggestionNeedle):]
	}
	if idx := strings.Index(stdout, trailingChromeNeedle); idx != -1 {
		stdout = stdout[:idx]
	}

	stdout = strings.TrimSpace(stdout)
	if stdout == "" && stderr != "" {
		return "", fmt.Errorf("gh copilot failed: %s", strings.TrimSpace(stderr))
	}

	return stdout, nil
}

// Explain asks gh copilot to explain a shell command.
func (c *CopilotBackend) Explain(ctx context.Context, command string) (string, error) {
	env := append(os.Environ(), "CLICOLOR_FORCE=1")
	stdout, stderr, err := c.runGH(ctx, env, "copilot", "explain", command)
	if err != nil {
		return "", err
	}
	if ghErr := c.classifyError(stdout, stderr); ghErr != nil {
		return "", ghErr
	}

	if strings.Contains(stdout, "Suggestion not readily available. Please revise for better results.") {
		return "No answer from GitHub Copilot.", nil
	}

	if idx := strings.Index(stdout, explanationNeedle); idx != -1 {
		stdout = stdout[idx+len(explanationNeedle):]
	}
	stdout = leadingResetRe.ReplaceAllString(stdout, "\x1b[0m")

	stdout = strings.TrimSpace(stdout)
	if stdout == "" && stderr != "" {
		return "", fmt.Errorf("gh copilot failed: %s", strings.TrimSpace(stderr))
	}

	return stdout, nil
}

func (c *CopilotBackend) runGH(ctx context.Context, env []string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, "gh", args...)
	if env != nil {
		cmd.Env = env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// gh exits nonzero for several recoverable conditions that we classify
	// from its output, so the exec error alone is not conclusive.
	runErr := cmd.Run()
	if ctx.Err() != nil {
		return "", "", fmt.Errorf("request timed out or was cancelled: %w", ctx.Err())
	}
	if runErr != nil && stdout.Len() == 0 && stderr.Len() == 0 {
		return "", "", fmt.Errorf("failed to run gh: %w", runErr)
	}

	return stdout.String(), stderr.String(), nil
}

// classifyError maps known gh failure modes to actionable prerequisite errors.
func (c *CopilotBackend) classifyError(stdout, stderr string) error {
	if strings.Contains(stderr, "Error: No valid OAuth token detected") {
		return fmt.Errorf("%s Authenticate with github first: gh auth login --web -h github.com", MissingPrerequisites)
	}

	if strings.Contains(stderr, `unknown command "copilot" for "gh"`) {
		var authStderr bytes.Buffer
		authCmd := exec.Command("gh", "auth", "status")
		authCmd.Stderr = &authStderr
		_ = authCmd.Run()
		if strings.Contains(authStderr.String(), "You are not logged into any GitHub hosts") {
			return fmt.Errorf("%s Authenticate with github first: gh auth login --web -h github.com", MissingPrerequisites)
		}
		return fmt.Errorf("%s Install github copilot extension first: gh extension install github/gh-copilot", MissingPrerequisites)
	}

	return nil
}
