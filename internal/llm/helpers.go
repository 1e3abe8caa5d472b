package llm

import (
	"context"
	"strings"
)

// Complete sends a system and a user prompt and returns the trimmed text.
func Complete(ctx context.Context, c Completer, system, user string) (string, error) {
	return CompleteWithTemperature(ctx, c, system, user, 0)
}

// CompleteWithTemperature is Complete with an explicit sampling temperature.
func CompleteWithTemperature(
	ctx context.Context,
	c Completer,
	system, user string,
	temperature float64,
) (string, error) {
	resp, err := c.Complete(ctx, CompletionRequest{
		SystemPrompt: system,
		Messages:     []Message{{Role: RoleUser, Content: user}},
		Temperature:  temperature,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(resp.Content), nil
}
