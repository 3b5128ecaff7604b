package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/sacr/rchat/internal/configuration"
)

// OpenAIClient for openai.
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient instantiates a client, checking the credential up front.
func NewOpenAIClient(config *configuration.Config) (*OpenAIClient, error) {
	if config.OpenaiAPIKey == "" || config.OpenaiAPIKey == "API_KEY" {
		return nil, ErrMissingAPIKey
	}
	openAIConfig := openai.DefaultConfig(config.OpenaiAPIKey)
	if config.OpenaiAPIHost != "" {
		openAIConfig.BaseURL = config.OpenaiAPIHost
	}
	client := openai.NewClientWithConfig(openAIConfig)
	return &OpenAIClient{client: client}, nil
}

// ChatCompletionStreamWrapper adapts an openai stream to the Stream interface.
type ChatCompletionStreamWrapper struct {
	stream *openai.ChatCompletionStream
}

func (s *ChatCompletionStreamWrapper) Close() { s.stream.Close() }
func (s *ChatCompletionStreamWrapper) Recv() (*StreamEvent, error) {
	response, err := s.stream.Recv()
	if err != nil {
		return nil, err
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("ChatCompletionResponse returned no choice: %+v", response)
	}
	return &StreamEvent{
		Token:        response.Choices[0].Delta.Content,
		FinishReason: string(response.Choices[0].FinishReason),
	}, nil
}

// CreateTextGeneration sends a streaming chat completion request.
func (c *OpenAIClient) CreateTextGeneration(ctx context.Context, request *CreateTextGenerationRequest) (Stream, error) {
	openAIRequest := openai.ChatCompletionRequest{
		Model:       request.Model,
		MaxTokens:   request.MaxTokens,
		Temperature: request.Temperature,
		Stream:      true,
		Messages:    toOpenAIMessages(request.Messages),
	}
	stream, err := c.client.CreateChatCompletionStream(ctx, openAIRequest)
	if err != nil {
		return nil, fmt.Errorf("creating completion stream: %w", err)
	}
	return &ChatCompletionStreamWrapper{stream}, nil
}

// CreateText sends a non-streaming chat completion request.
func (c *OpenAIClient) CreateText(ctx context.Context, request *CreateTextGenerationRequest) (string, error) {
	openAIRequest := openai.ChatCompletionRequest{
		Model:       request.Model,
		MaxTokens:   request.MaxTokens,
		Temperature: request.Temperature,
		Messages:    toOpenAIMessages(request.Messages),
	}
	response, err := c.client.CreateChatCompletion(ctx, openAIRequest)
	if err != nil {
		return "", fmt.Errorf("creating completion: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("ChatCompletionResponse returned no choice: %+v", response)
	}
	return response.Choices[0].Message.Content, nil
}

func toOpenAIMessages(messages []*Message) []openai.ChatCompletionMessage {
	openAIMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, message := range messages {
		openAIMessages = append(openAIMessages, openai.ChatCompletionMessage{Role: message.Role, Content: message.Content})
	}
	return openAIMessages
}
