package backend

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = openai.GPT4Turbo

const generateSystemPrompt = `You are a zsh shell expert, please write a ZSH command that solves my problem.
You should only output the completed command, no need to include any other explanation.`

const explainSystemPrompt = `You are a zsh shell expert, please briefly explain how the given command works. Be as concise as possible. Use Markdown syntax for formatting.`

var (
	openingFenceRe = regexp.MustCompile("(?m)^```(?:zsh|sh)?[ \t]*\n?")
	closingFenceRe = regexp.MustCompile("(?m)\n?^```[ \t]*$")
	blankRunsRe    = regexp.MustCompile(`\n{3,}`)
)

// OpenAIBackend talks to the OpenAI chat completions API.
type OpenAIBackend struct {
	model  string
	client *openai.Client
}

// NewOpenAIBackend creates an OpenAI backend. The model may be empty to use
// the default.
func NewOpenAIBackend(model string) *OpenAIBackend {
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIBackend{model: model}
}

func (o *OpenAIBackend) Name() string {
	return "openai"
}

// CheckPrerequisites verifies OPENAI_API_KEY is set and initializes the client.
func (o *OpenAIBackend) CheckPrerequisites() error {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf(`%s OPENAI_API_KEY is not set. Run: export OPENAI_API_KEY="<copy from https://platform.openai.com/api-keys>"`, MissingPrerequisites)
	}

	o.client = openai.NewClient(apiKey)
	return nil
}

// Generate turns a natural language request into a zsh command.
func (o *OpenAIBackend) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := o.complete(ctx, generateSystemPrompt, prompt)
	if err != nil {
		return "", err
	}
	return StripCodeFences(result), nil
}

// Explain returns a markdown explanation of a shell command.
func (o *OpenAIBackend) Explain(ctx context.Context, command string) (string, error) {
	return o.complete(ctx, explainSystemPrompt, command)
}

func (o *OpenAIBackend) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if o.client == nil {
		if err := o.CheckPrerequisites(); err != nil {
			return "", err
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0.2,
		MaxTokens:   1000,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("API returned empty response")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// StripCodeFences removes markdown code fences the model sometimes wraps
// generated commands in, and collapses the blank-line runs left behind.
func StripCodeFences(s string) string {
	s = openingFenceRe.ReplaceAllString(s, "")
	s = closingFenceRe.ReplaceAllString(s, "")
	s = blankRunsRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
