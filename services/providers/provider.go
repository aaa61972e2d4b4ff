package providers

import "context"

// CompletionRequest represents a single prompt sent to an LLM provider
type CompletionRequest struct {
	// System sets the assistant's role and instructions
	System string

	// Prompt is the user-facing content to complete
	Prompt string

	// Model overrides the provider's default model when set
	Model string

	// MaxTokens caps the completion length; 0 uses the provider default
	MaxTokens int

	// Temperature controls sampling randomness
	Temperature float64

	// ResponseFormat is "json" when the caller needs a JSON object back
	ResponseFormat string
}

// CompletionResponse represents the provider's answer
type CompletionResponse struct {
	Content    string
	TokensUsed int
	Model      string
}

// Completer generates text completions. Implementations wrap a concrete
// LLM provider API.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	ModelName() string
}
