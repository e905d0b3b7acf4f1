package ui

import (
	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
)

// SelectProvider prompts the user to pick a backend provider.
func SelectProvider(providers []string, current string) (string, error) {
	prompt := &survey.Select{
		Message: "Select an LLM provider:",
		Options: providers,
	}
	if current != "" {
		prompt.Default = current
	}

	var provider string
	if err := survey.AskOne(prompt, &provider); err != nil {
		return "", err
	}

	return provider, nil
}

// AskModel prompts for an optional model override.
func AskModel(defaultModel string) (string, error) {
	prompt := &survey.Input{
		Message: "Model (leave empty for default):",
		Default: defaultModel,
	}

	var model string
	if err := survey.AskOne(prompt, &model); err != nil {
		return "", err
	}

	return model, nil
}

// Confirm asks a yes/no question.
func Confirm(message string, defaultAnswer bool) (bool, error) {
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultAnswer,
	}

	var answer bool
	if err := survey.AskOne(prompt, &answer); err != nil {
		return false, err
	}

	return answer, nil
}

// ShowSuccess displays a success message.
func ShowSuccess(message string) {
	green := color.New(color.FgGreen, color.Bold)
	green.Printf("✓ %s\n", message)
}

// ShowError displays an error message.
func ShowError(message string) {
	red := color.New(color.FgRed, color.Bold)
	red.Printf("✗ %s\n", message)
}

// ShowInfo displays an info message.
func ShowInfo(message string) {
	blue := color.New(color.FgBlue)
	blue.Println(message)
}
