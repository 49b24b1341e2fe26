package ai

import "context"

// GenerateRequest carries one prompt exchange to the provider.
type GenerateRequest struct {
	SystemPrompt string
	UserPrompt   string
	// ForceJSON constrains the provider's response content type to a JSON object.
	ForceJSON bool
}

type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}
