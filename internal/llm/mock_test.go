package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestMockProvider_FIFOAndRecordsCalls(t *testing.T) {
	mock := NewMockProvider(TextReply("first"), JSONReply(`{"b":2}`))

	r1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "one"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r1.Text() != "first" {
		t.Errorf("Text() = %q, want first", r1.Text())
	}
	r2, err := mock.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(r2.Content) != `{"b":2}` {
		t.Errorf("Content = %s", r2.Content)
	}

	if mock.CallCount() != 2 {
		t.Fatalf("CallCount = %d, want 2", mock.CallCount())
	}
	if mock.Calls[0].Messages[0].Content != "one" {
		t.Errorf("first call not recorded")
	}
}

func TestMockProvider_EmptyQueue(t *testing.T) {
	_, err := NewMockProvider().Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %T", err)
	}
}

func TestScriptedProvider_RoutesByPurpose(t *testing.T) {
	sp := NewScriptedProvider().
		On(PurposeExplain, TextReply("explanation")).
		On(PurposeQuestion, JSONReply(`{"question":"q","answer":"a"}`))

	var wg sync.WaitGroup
	results := make(map[string]string)
	var mu sync.Mutex
	for _, purpose := range []string{PurposeQuestion, PurposeExplain} {
		wg.Add(1)
		go func(purpose string) {
			defer wg.Done()
			resp, err := sp.Generate(WithPurpose(context.Background(), purpose), Request{})
			if err != nil {
				t.Errorf("%s: %v", purpose, err)
				return
			}
			mu.Lock()
			results[purpose] = string(resp.Content)
			mu.Unlock()
		}(purpose)
	}
	wg.Wait()

	if results[PurposeExplain] != `"explanation"` {
		t.Errorf("explain got %s", results[PurposeExplain])
	}
	if results[PurposeQuestion] != `{"question":"q","answer":"a"}` {
		t.Errorf("question got %s", results[PurposeQuestion])
	}
	if sp.TotalCalls() != 2 {
		t.Errorf("TotalCalls = %d, want 2", sp.TotalCalls())
	}

	if _, err := sp.Generate(WithPurpose(context.Background(), PurposeGrade), Request{}); err == nil {
		t.Error("expected error for unscripted purpose")
	}
	if len(sp.Calls(PurposeGrade)) != 1 {
		t.Error("unscripted call should still be recorded")
	}
}

func TestPurposeFrom_Default(t *testing.T) {
	if got := PurposeFrom(context.Background()); got != "unknown" {
		t.Errorf("PurposeFrom = %q, want unknown", got)
	}
	if got := PurposeFrom(WithPurpose(context.Background(), PurposeGrade)); got != PurposeGrade {
		t.Errorf("PurposeFrom = %q, want %q", got, PurposeGrade)
	}
}

func TestMockProvider_ValidatesStructuredReplies(t *testing.T) {
	strict := &Schema{
		Name: "mock-strict",
		Definition: map[string]any{
			"type":       "object",
			"properties": map[string]any{"n": map[string]any{"type": "integer"}},
			"required":   []string{"n"},
		},
	}
	loose := &Schema{
		Name:       "mock-loose",
		Definition: strict.Definition,
		Validation: map[string]any{
			"type":       "object",
			"properties": map[string]any{"n": map[string]any{"type": []string{"integer", "string"}}},
		},
	}

	tests := []struct {
		name    string
		schema  *Schema
		reply   string
		wantErr bool
	}{
		{"strict accepts", strict, `{"n":1}`, false},
		{"strict rejects string", strict, `{"n":"1"}`, true},
		{"strict rejects missing", strict, `{}`, true},
		{"loose accepts string", loose, `{"n":"1"}`, false},
		{"loose accepts missing", loose, `{}`, false},
		{"loose rejects bool", loose, `{"n":true}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMockProvider(JSONReply(tt.reply)).Generate(context.Background(), Request{Schema: tt.schema})
			var inv *ErrInvalidResponse
			if got := errors.As(err, &inv); got != tt.wantErr {
				t.Errorf("Generate(%s) error = %v, want invalid response %v", tt.reply, err, tt.wantErr)
			}
		})
	}
}
