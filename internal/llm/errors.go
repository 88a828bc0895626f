package llm

import (
	"encoding/json"
	"fmt"
	"time"
)

// ErrRateLimit is a 429 from the named provider.
type ErrRateLimit struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	msg := providerLabel(e.Provider) + " rate limited"
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %s)", e.RetryAfter)
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse is a reply that is empty, not JSON, or outside the
// schema it was asked for. Schema is empty for plain text requests.
type ErrInvalidResponse struct {
	Schema  string
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	if e.Schema != "" {
		return fmt.Sprintf("invalid %s reply: %v", e.Schema, e.Err)
	}
	return fmt.Sprintf("invalid LLM reply: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable covers a provider that is down, unreachable or
// missing its credentials.
type ErrProviderUnavailable struct {
	Provider string
	Err      error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err == nil {
		return providerLabel(e.Provider) + " unavailable"
	}
	return fmt.Sprintf("%s unavailable: %v", providerLabel(e.Provider), e.Err)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded is a reply cut off at the request's MaxTokens.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM reply truncated at max tokens"
}

func providerLabel(name string) string {
	if name == "" {
		return "LLM provider"
	}
	return "LLM provider " + name
}

// FailureMessage is what an agent shows the learner in place of its
// answer when its LLM call fails.
func FailureMessage(agent string, err error) string {
	return fmt.Sprintf("Error in %s: LLM call failed. Check API Key configuration. Error details: %v", agent, err)
}
