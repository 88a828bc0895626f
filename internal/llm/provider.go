package llm

import (
	"context"
	"encoding/json"
)

// Provider is the external reasoning capability every tutor agent calls.
// Agents hand it a Request and get back either free text or JSON that
// conforms to the request's Schema.
type Provider interface {
	// Generate sends a prompt to the model. When req.Schema is set the
	// provider uses its native structured output mode and the returned
	// Content is validated JSON. Otherwise Content is the model's text,
	// encoded as a JSON string.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt. Sets the model's role for the turn.
	System string

	// Messages is the conversation. Tutor agents are single-turn, so this
	// normally holds one user message.
	Messages []Message

	// Schema, when set, asks for JSON conforming to it.
	Schema *Schema

	// MaxTokens caps the response length.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies this schema (schema name for OpenAI, cache key for
	// validation). Kebab-case, e.g. "recall-question".
	Name string

	// Description tells the model what the object represents.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any

	// Validation, when set, is checked against replies in place of
	// Definition. Callers that repair loosely typed replies themselves
	// send a strict Definition and accept a wider Validation.
	Validation map[string]any
}

func (s *Schema) validationDoc() map[string]any {
	if s.Validation != nil {
		return s.Validation
	}
	return s.Definition
}

// Response holds the LLM's output.
type Response struct {
	// Content is the validated JSON object for structured requests, or the
	// text response encoded as a JSON string otherwise.
	Content json.RawMessage

	Usage Usage

	// Model is the model that served the request.
	Model string

	// StopReason is normalized to "end", "max_tokens" or "error".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
