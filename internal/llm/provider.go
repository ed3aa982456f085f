package llm

import "context"

// Request carries one generation call to the model.
type Request struct {
	SystemPrompt string
	Prompt       string
}

// Usage reports token counts for a completed call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Response is the model's reply.
type Response struct {
	Content string
	Model   string
	Usage   Usage
}

// Provider produces content for prompts. Implementations must be safe for
// concurrent use.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// Config captures the runtime settings required to talk to the LLM.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// NewProvider returns the HTTP client when an API key is configured and
// the offline fixture provider otherwise.
func NewProvider(cfg Config) Provider {
	if cfg.APIKey == "" {
		return NewFixtureProvider()
	}
	return NewClient(cfg)
}
