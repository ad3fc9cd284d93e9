// Package override asks a language model to correct the extractor's fields.
package override

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Fields are the values a model may override. Empty fields leave the core
// extraction untouched.
type Fields struct {
	Assignee string   `json:"assignee"`
	DateText string   `json:"date_text"`
	Keywords []string `json:"keywords"`
}

// Empty reports whether f carries no override.
func (f *Fields) Empty() bool {
	return f == nil || (f.Assignee == "" && f.DateText == "" && len(f.Keywords) == 0)
}

// Extractor is an optional second opinion on a note's fields.
type Extractor interface {
	Extract(ctx context.Context, text string) (*Fields, error)
}

const systemPrompt = `You extract structured fields from short personal notes.
Reply with a JSON object with exactly these keys:
  "assignee": the person or team responsible, "Me" if the writer, "" if unknown;
  "date_text": the date or time phrase copied from the note, "" if none;
  "keywords": up to 6 lowercase topic words from the note.
Do not add other keys.`

// OpenAI is an Extractor backed by an OpenAI-compatible chat completions API.
type OpenAI struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAI returns an OpenAI extractor. baseURL may be empty for the public
// API. A non-positive timeout disables the per-call deadline.
func NewOpenAI(apiKey, baseURL, model string, timeout time.Duration) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
	}
}

// Extract implements Extractor.
func (o *OpenAI) Extract(ctx context.Context, text string) (*Fields, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion: no choices")
	}
	return parseFields(resp.Choices[0].Message.Content)
}

func parseFields(content string) (*Fields, error) {
	var f Fields
	if err := json.Unmarshal([]byte(content), &f); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	f.Assignee = strings.TrimSpace(f.Assignee)
	f.DateText = strings.TrimSpace(f.DateText)

	keywords := f.Keywords[:0]
	seen := make(map[string]bool)
	for _, k := range f.Keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" && !seen[k] {
			seen[k] = true
			keywords = append(keywords, k)
		}
	}
	f.Keywords = keywords
	return &f, nil
}
