package llm

import (
	"net/http"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultOpenRouterAppName = "EduIndia"
)

// NewOpenRouterProvider reaches any model OpenRouter hosts through its
// OpenAI-compatible endpoint. Requests carry OpenRouter's app attribution
// headers.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenAIProvider, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	appName := cfg.AppName
	if appName == "" {
		appName = defaultOpenRouterAppName
	}

	client := &http.Client{Transport: &attributionTransport{
		base:    http.DefaultTransport,
		title:   appName,
		referer: cfg.SiteURL,
	}}
	return newOpenAIProvider(ProviderOpenRouter, OpenAIConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: baseURL,
	}, client)
}

// attributionTransport names the calling app to OpenRouter.
type attributionTransport struct {
	base    http.RoundTripper
	title   string
	referer string
}

func (t *attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("X-Title", t.title)
	if t.referer != "" {
		req.Header.Set("HTTP-Referer", t.referer)
	}
	return t.base.RoundTrip(req)
}
