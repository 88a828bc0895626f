package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/eduindia/internal/store"
)

// NewProvider creates a Provider from configuration, wrapped with the
// middleware chain: caller → timeout → retry → logging → base.
// events and logger may be nil.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo, logger *zap.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderMock:
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	logged := WithLogging(base, events, logger)
	retried := WithRetry(logged, cfg.Retry)
	return WithTimeout(retried, cfg.Timeout), nil
}

// NewProviderOrUnavailable is NewProvider for interactive use: when the
// provider cannot be built, every call fails with the construction error
// so the tutor agents report it inline instead of the program exiting.
func NewProviderOrUnavailable(ctx context.Context, cfg Config, events store.EventRepo, logger *zap.Logger) (Provider, error) {
	p, err := NewProvider(ctx, cfg, events, logger)
	if err != nil {
		return Unavailable(err), err
	}
	return p, nil
}

type unavailableProvider struct {
	err error
}

// Unavailable returns a Provider whose every call fails with
// ErrProviderUnavailable wrapping err.
func Unavailable(err error) Provider {
	return &unavailableProvider{err: err}
}

func (u *unavailableProvider) Generate(context.Context, Request) (*Response, error) {
	return nil, &ErrProviderUnavailable{Err: u.err}
}

func (u *unavailableProvider) ModelID() string {
	return "unavailable"
}
