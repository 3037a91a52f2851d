package extraction

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultNERModel = openai.GPT4oMini
	nerMaxSample    = 6000

	nerSystemPrompt = "You extract character names from theatrical scripts. " +
		"Reply with a JSON object of the form {\"persons\": [\"NAME\", ...]} " +
		"listing each distinct character exactly once, in order of first appearance. " +
		"Ignore locations, props, and stage directions."
)

// OpenAIRecognizer asks a chat model for the person entities in a script.
// It backs the last strategy of role discovery; the structural heuristics
// run first and keep most imports off the network entirely.
type OpenAIRecognizer struct {
	client *openai.Client
	model  string
}

func NewOpenAIRecognizer(apiKey, model string) *OpenAIRecognizer {
	if model == "" {
		model = defaultNERModel
	}
	return &OpenAIRecognizer{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (r *OpenAIRecognizer) Persons(ctx context.Context, text string) ([]string, error) {
	// A sample of the opening pages is enough; casts introduce themselves
	// early
	sample := text
	if len(sample) > nerMaxSample {
		sample = sample[:nerMaxSample]
	}

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: nerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: sample},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	var payload struct {
		Persons []string `json:"persons"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode entity response: %w", err)
	}
	return payload.Persons, nil
}
