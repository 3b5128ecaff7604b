package llm

import (
	"context"
	"strings"
)

const (
	titlePrompt = "Generate a brief, concise title (max 6 words) for this conversation so far. Respond with the title only."
	// Per-message content cap keeps the title request small regardless of
	// how long the first exchange was.
	titleContentPrefixRunes = 500
	titleMaxTokens          = 16
	titleTemperature        = 0.2
)

// GenerateTitle asks the model for a short title for the conversation.
// Best effort: returns "" on any failure so the caller keeps its current title.
func GenerateTitle(ctx context.Context, client Client, model string, messages []*Message) string {
	request := &CreateTextGenerationRequest{
		Model:       model,
		Messages:    titleMessages(messages),
		MaxTokens:   titleMaxTokens,
		Temperature: titleTemperature,
	}
	response, err := client.CreateText(ctx, request)
	if err != nil {
		return ""
	}
	title := strings.TrimSpace(response)
	title = strings.Trim(title, `"'`)
	title = strings.ReplaceAll(title, "\n", " ")
	return strings.TrimSpace(title)
}

func titleMessages(messages []*Message) []*Message {
	truncated := make([]*Message, 0, len(messages)+1)
	for _, message := range messages {
		content := message.Content
		if runes := []rune(content); len(runes) > titleContentPrefixRunes {
			content = string(runes[:titleContentPrefixRunes])
		}
		truncated = append(truncated, &Message{Role: message.Role, Content: content})
	}
	return append(truncated, &Message{Role: UserRole, Content: titlePrompt})
}
