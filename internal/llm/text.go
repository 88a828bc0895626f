package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// textContent encodes a plain-text model reply as a JSON string so that
// Response.Content is always valid JSON.
func textContent(s string) json.RawMessage {
	b, err := json.Marshal(s)
	if err != nil {
		return json.RawMessage(`""`)
	}
	return b
}

// Text decodes the content of an unstructured response. Content that is
// not a JSON string (a provider that hands back raw text) is returned as is.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Content, &s); err == nil {
		return s
	}
	return string(r.Content)
}

// Complete sends a single user prompt without a schema and returns the
// model's text reply.
func Complete(ctx context.Context, p Provider, system, prompt string, maxTokens int, temperature float64) (string, error) {
	resp, err := p.Generate(ctx, Request{
		System:      system,
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &ErrInvalidResponse{Content: resp.Content, Err: fmt.Errorf("empty text response")}
	}
	return text, nil
}
