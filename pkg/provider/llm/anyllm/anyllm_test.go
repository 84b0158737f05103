package anyllm

import (
	"testing"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/openhearings/dais/pkg/provider/llm"
)

// ── buildParams ───────────────────────────────────────────────────────────────

// TestBuildParams_SystemPromptPrepended checks the system prompt becomes the
// first message.
func TestBuildParams_SystemPromptPrepended(t *testing.T) {
	p := &Provider{model: "gpt-5"}
	params := p.buildParams(llm.CompletionRequest{
		Messages:     []llm.Message{{Role: "user", Content: "map the speakers"}},
		SystemPrompt: "You are a precise mapping assistant.",
	})
	if len(params.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(params.Messages))
	}
	if params.Messages[0].Role != anyllmlib.RoleSystem {
		t.Errorf("expected first message role system, got %q", params.Messages[0].Role)
	}
	if params.Messages[1].Role != "user" {
		t.Errorf("expected second message role user, got %q", params.Messages[1].Role)
	}
}

// TestBuildParams_TemperatureZeroIsForwarded checks that greedy decoding is
// requested explicitly rather than silently dropped.
func TestBuildParams_TemperatureZeroIsForwarded(t *testing.T) {
	p := &Provider{model: "llama3"}
	params := p.buildParams(llm.CompletionRequest{
		Messages:    []llm.Message{{Role: "user", Content: "hi"}},
		Temperature: 0,
	})
	if params.Temperature == nil {
		t.Fatal("expected Temperature to be set")
	}
	if *params.Temperature != 0 {
		t.Errorf("Temperature = %v, want 0", *params.Temperature)
	}
}

// TestBuildParams_MaxTokens checks that MaxTokens is only set when positive.
func TestBuildParams_MaxTokens(t *testing.T) {
	p := &Provider{model: "llama3"}

	params := p.buildParams(llm.CompletionRequest{
		Messages: []llm.Message{{Role: "user", Content: "hi"}},
	})
	if params.MaxTokens != nil {
		t.Error("expected MaxTokens to be unset for zero value")
	}

	params = p.buildParams(llm.CompletionRequest{
		Messages:  []llm.Message{{Role: "user", Content: "hi"}},
		MaxTokens: 512,
	})
	if params.MaxTokens == nil || *params.MaxTokens != 512 {
		t.Errorf("expected MaxTokens 512, got %v", params.MaxTokens)
	}
}

// ── modelCapabilities ─────────────────────────────────────────────────────────

// TestModelCapabilities_GPT5 checks gpt-5 capabilities.
func TestModelCapabilities_GPT5(t *testing.T) {
	caps := modelCapabilities("gpt-5")
	if caps.ContextWindow != 400_000 {
		t.Errorf("gpt-5: expected context window 400000, got %d", caps.ContextWindow)
	}
	if !caps.SupportsReasoningEffort {
		t.Error("gpt-5: expected SupportsReasoningEffort=true")
	}
}

// TestModelCapabilities_O3 checks o3 capabilities.
func TestModelCapabilities_O3(t *testing.T) {
	caps := modelCapabilities("o3")
	if caps.ContextWindow != 200_000 {
		t.Errorf("o3: expected context window 200000, got %d", caps.ContextWindow)
	}
	if !caps.SupportsReasoningEffort {
		t.Error("o3: expected SupportsReasoningEffort=true")
	}
}

// TestModelCapabilities_GPT4o checks gpt-4o capabilities.
func TestModelCapabilities_GPT4o(t *testing.T) {
	caps := modelCapabilities("gpt-4o")
	if caps.ContextWindow != 128_000 {
		t.Errorf("gpt-4o: expected context window 128000, got %d", caps.ContextWindow)
	}
	if caps.SupportsReasoningEffort {
		t.Error("gpt-4o: expected SupportsReasoningEffort=false")
	}
}

// TestModelCapabilities_ClaudeSonnet4 checks claude-sonnet-4 capabilities.
func TestModelCapabilities_ClaudeSonnet4(t *testing.T) {
	caps := modelCapabilities("claude-sonnet-4-5")
	if caps.ContextWindow != 200_000 {
		t.Errorf("claude-sonnet-4-5: expected context window 200000, got %d", caps.ContextWindow)
	}
	if caps.MaxOutputTokens != 64_000 {
		t.Errorf("claude-sonnet-4-5: expected MaxOutputTokens 64000, got %d", caps.MaxOutputTokens)
	}
}

// TestModelCapabilities_ClaudeGeneric catches older claude models.
func TestModelCapabilities_ClaudeGeneric(t *testing.T) {
	caps := modelCapabilities("claude-3-haiku-20240307")
	if caps.ContextWindow != 200_000 {
		t.Errorf("claude-generic: expected context window 200000, got %d", caps.ContextWindow)
	}
}

// TestModelCapabilities_Gemini25Pro checks gemini-2.5-pro capabilities.
func TestModelCapabilities_Gemini25Pro(t *testing.T) {
	caps := modelCapabilities("gemini-2.5-pro")
	if caps.ContextWindow != 1_048_576 {
		t.Errorf("gemini-2.5-pro: expected context window 1048576, got %d", caps.ContextWindow)
	}
}

// TestModelCapabilities_Unknown checks that unknown models return safe defaults.
func TestModelCapabilities_Unknown(t *testing.T) {
	caps := modelCapabilities("my-custom-model")
	if caps.ContextWindow <= 0 {
		t.Error("unknown model: expected positive ContextWindow")
	}
	if caps.MaxOutputTokens <= 0 {
		t.Error("unknown model: expected positive MaxOutputTokens")
	}
}

// TestModelCapabilities_CaseInsensitive checks that model name matching is case-insensitive.
func TestModelCapabilities_CaseInsensitive(t *testing.T) {
	lower := modelCapabilities("gpt-5")
	upper := modelCapabilities("GPT-5")
	if lower.ContextWindow != upper.ContextWindow {
		t.Errorf("case should not matter: got %d vs %d", lower.ContextWindow, upper.ContextWindow)
	}
}

// ── Constructor ───────────────────────────────────────────────────────────────

// TestNew_EmptyProviderName checks that an empty provider name returns an error.
func TestNew_EmptyProviderName(t *testing.T) {
	_, err := New("", "gpt-5")
	if err == nil {
		t.Fatal("expected error for empty providerName")
	}
}

// TestNew_EmptyModel checks that an empty model name returns an error.
func TestNew_EmptyModel(t *testing.T) {
	_, err := New("openai", "")
	if err == nil {
		t.Fatal("expected error for empty model")
	}
}

// TestNew_UnsupportedProvider checks that an unsupported provider returns an error.
func TestNew_UnsupportedProvider(t *testing.T) {
	_, err := New("fakecloud", "some-model", anyllmlib.WithAPIKey("dummy"))
	if err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

// TestNew_OpenAI_WithAPIKey checks that OpenAI provider constructs successfully with an API key.
func TestNew_OpenAI_WithAPIKey(t *testing.T) {
	p, err := New("openai", "gpt-5", anyllmlib.WithAPIKey("sk-test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil {
		t.Fatal("expected non-nil provider")
	}
	if p.model != "gpt-5" {
		t.Errorf("expected model gpt-5, got %q", p.model)
	}
}

// TestNew_OpenAI_MissingAPIKey checks that OpenAI returns an error when no API key is available.
// This relies on OPENAI_API_KEY not being set in the test environment.
func TestNew_OpenAI_MissingAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "") // Ensure env var is clear.
	_, err := New("openai", "gpt-5")
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
}

// TestNew_Ollama_NoAPIKey checks that Ollama works without an API key.
func TestNew_Ollama_NoAPIKey(t *testing.T) {
	p, err := NewOllama("llama3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil {
		t.Fatal("expected non-nil provider")
	}
}

// TestConvenienceConstructors checks all convenience constructors delegate correctly.
func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name string
		fn   func() (*Provider, error)
	}{
		{"NewOpenAI", func() (*Provider, error) { return NewOpenAI("gpt-5", anyllmlib.WithAPIKey("sk-test")) }},
		{"NewAnthropic", func() (*Provider, error) {
			return NewAnthropic("claude-sonnet-4-5", anyllmlib.WithAPIKey("sk-ant-test"))
		}},
		{"NewOllama", func() (*Provider, error) { return NewOllama("llama3") }},
		{"NewLlamaCpp", func() (*Provider, error) { return NewLlamaCpp("llama3") }},
		{"NewLlamaFile", func() (*Provider, error) { return NewLlamaFile("llama3") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.fn()
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", tt.name, err)
			}
			if p == nil {
				t.Fatalf("%s: expected non-nil provider", tt.name)
			}
		})
	}
}

// ── CountTokens ───────────────────────────────────────────────────────────────

// TestCountTokens_Estimation checks that token counting returns a reasonable value.
func TestCountTokens_Estimation(t *testing.T) {
	p := &Provider{model: "gpt-5"}
	msgs := []llm.Message{
		{Role: "user", Content: "Hello world"}, // 11 chars → ~3 tokens + 4 overhead = 7
	}
	count, err := p.CountTokens(msgs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count <= 0 {
		t.Errorf("expected positive token count, got %d", count)
	}
}

// TestCountTokens_Empty checks that an empty message list returns zero tokens.
func TestCountTokens_Empty(t *testing.T) {
	p := &Provider{model: "gpt-5"}
	count, err := p.CountTokens(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 tokens for empty messages, got %d", count)
	}
}

// ── Capabilities ──────────────────────────────────────────────────────────────

// TestCapabilities_ReturnsForModel checks that Capabilities() delegates to modelCapabilities.
func TestCapabilities_ReturnsForModel(t *testing.T) {
	p := &Provider{model: "gpt-5"}
	caps := p.Capabilities()
	expected := modelCapabilities("gpt-5")
	if caps.ContextWindow != expected.ContextWindow {
		t.Errorf("expected ContextWindow %d, got %d", expected.ContextWindow, caps.ContextWindow)
	}
	if caps.SupportsReasoningEffort != expected.SupportsReasoningEffort {
		t.Errorf("expected SupportsReasoningEffort %v, got %v",
			expected.SupportsReasoningEffort, caps.SupportsReasoningEffort)
	}
}
