package ai

import "errors"

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrGeneration marks an error reported by the provider itself, as opposed to
// an internal failure. Wrapped errors carry the provider's message.
var ErrGeneration = errors.New("ai generation failed")
