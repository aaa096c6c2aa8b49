package openai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const reflectionPrompt = `You are a theological narrator inspired by the moral tone of the Christian Gospels. You speak calmly and slowly. Like a priest. If possible, use sentences from the Bible. You do not give commands, predictions, or absolution. You invite reflection and moral attention.

Respond to what the user says with a pastoral, reflective message. Use short sentences, simple vocabulary, and metaphor over explanation. Keep the response roughly 60-100 words (20-40 seconds spoken). Return ONLY the spoken text.`

// Reflector generates spoken reflections through an OpenAI-compatible chat
// endpoint. Points at api.openai.com by default but any compatible gateway
// works via the base URL.
type Reflector struct {
	client *openai.Client
	model  string
}

func NewReflector(apiKey, model string) *Reflector {
	return NewReflectorWithURL(apiKey, model, "")
}

func NewReflectorWithURL(apiKey, model, baseURL string) *Reflector {
	if model == "" {
		model = openai.GPT4oMini
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &Reflector{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (r *Reflector) Reflect(ctx context.Context, transcript string) (string, error) {
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		MaxTokens:   512,
		Temperature: 0.7,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: reflectionPrompt},
			{Role: openai.ChatMessageRoleUser, Content: transcript},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from model")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
