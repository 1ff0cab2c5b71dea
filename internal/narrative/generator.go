package narrative

import (
	"context"
	"errors"
)

// Provider names.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

var (
	// ErrNoCredential means no API key is configured for the generator.
	ErrNoCredential = errors.New("narrative: api key not configured")
	// ErrGeneratorDown wraps transport failures and non-2xx responses.
	ErrGeneratorDown = errors.New("narrative: generator unavailable")
)

// Request is one text generation call.
type Request struct {
	System string
	Prompt string
	Model  string // overrides the generator's default model when set
}

// Generator turns a prompt into text. Calls may fail or time out.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Model() string
}
