package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/eduindia/internal/config"
	"github.com/abhisek/eduindia/internal/dispatch"
	"github.com/abhisek/eduindia/internal/learner"
	"github.com/abhisek/eduindia/internal/llm"
	"github.com/abhisek/eduindia/internal/store"
)

func TestNew_WithoutCredentials(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	cfg := config.Default()
	cfg.LLM.Gemini.APIKey = ""

	a, err := New(context.Background(), Options{Config: cfg, DBPath: store.MemoryDSN})
	require.NoError(t, err)
	defer a.Close()

	require.Error(t, a.ProviderErr)

	res := a.Dispatcher.Handle(context.Background(), "s", "study next")
	assert.True(t, strings.HasPrefix(res.Response, "Error in RevisionScheduler"), res.Response)

	res = a.Dispatcher.Handle(context.Background(), "s", "hi")
	assert.Equal(t, dispatch.HelpText, res.Response)
}

func TestNew_InjectedProvider(t *testing.T) {
	p := llm.NewMockProvider(llm.TextReply("1. **Next Study Topic:** Savings"))
	a, err := New(context.Background(), Options{Config: config.Default(), DBPath: store.MemoryDSN, Provider: p})
	require.NoError(t, err)
	defer a.Close()

	assert.NoError(t, a.ProviderErr)
	res := a.Dispatcher.Handle(context.Background(), "s", "revise")
	assert.Contains(t, res.Response, "Savings")
	assert.Equal(t, 1, p.CallCount())
}

func TestNew_BadProfiles(t *testing.T) {
	cfg := config.Default()
	cfg.Profiles = []learner.Seed{{ID: "x"}, {ID: "x"}}
	_, err := New(context.Background(), Options{Config: cfg, DBPath: store.MemoryDSN, Provider: llm.NewMockProvider()})
	assert.Error(t, err)
}
