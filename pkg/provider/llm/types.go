package llm

// Message represents a single message in a model conversation.
type Message struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the text content of the message.
	Content string
}

// ReasoningEffort is the effort level requested from reasoning-capable
// models. The empty value leaves the choice to the model default.
type ReasoningEffort string

// Effort levels understood by reasoning-capable backends.
const (
	ReasoningEffortMinimal ReasoningEffort = "minimal"
	ReasoningEffortLow     ReasoningEffort = "low"
	ReasoningEffortMedium  ReasoningEffort = "medium"
	ReasoningEffortHigh    ReasoningEffort = "high"
)

// IsValid reports whether e is empty or one of the defined effort levels.
func (e ReasoningEffort) IsValid() bool {
	switch e {
	case "", ReasoningEffortMinimal, ReasoningEffortLow, ReasoningEffortMedium, ReasoningEffortHigh:
		return true
	default:
		return false
	}
}

// ModelCapabilities describes what a model supports.
type ModelCapabilities struct {
	// ContextWindow is the maximum token count for input + output.
	ContextWindow int

	// MaxOutputTokens is the maximum tokens the model can generate in one
	// completion.
	MaxOutputTokens int

	// SupportsReasoningEffort indicates the model accepts a reasoning-effort
	// setting (OpenAI o-series and gpt-5 family, and compatible backends).
	SupportsReasoningEffort bool
}
