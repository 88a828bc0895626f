package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenRouterProvider(t *testing.T) {
	var gotTitle, gotReferer, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("X-Title")
		gotReferer = r.Header.Get("HTTP-Referer")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    "gen-1",
			"model": "google/gemini-2.5-flash",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": "Savings grow like a well-kept field."},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 8, "total_tokens": 20},
		})
	}))
	defer srv.Close()

	p, err := NewOpenRouterProvider(OpenRouterConfig{
		APIKey:  "or-key",
		Model:   "google/gemini-2.5-flash",
		BaseURL: srv.URL,
		SiteURL: "https://eduindia.example",
	})
	if err != nil {
		t.Fatalf("NewOpenRouterProvider: %v", err)
	}
	if p.ModelID() != "google/gemini-2.5-flash" {
		t.Errorf("ModelID = %q", p.ModelID())
	}

	resp, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "explain savings"}}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Text() != "Savings grow like a well-kept field." {
		t.Errorf("Text = %q", resp.Text())
	}
	if resp.Usage.TotalTokens != 20 {
		t.Errorf("TotalTokens = %d", resp.Usage.TotalTokens)
	}
	if gotPath != "/chat/completions" {
		t.Errorf("path = %q", gotPath)
	}
	if gotTitle != defaultOpenRouterAppName || gotReferer != "https://eduindia.example" {
		t.Errorf("attribution headers = %q, %q", gotTitle, gotReferer)
	}
}

func TestOpenRouterProvider_ErrorsNameOpenRouter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit","code":429}}`))
	}))
	defer srv.Close()

	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "or-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewOpenRouterProvider: %v", err)
	}

	_, err = p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("error = %v, want *ErrRateLimit", err)
	}
	if rl.Provider != ProviderOpenRouter {
		t.Errorf("Provider = %q", rl.Provider)
	}
}

func TestNewOpenRouterProvider_RequiresKey(t *testing.T) {
	if _, err := NewOpenRouterProvider(OpenRouterConfig{}); err == nil {
		t.Error("expected error without API key")
	}
}
