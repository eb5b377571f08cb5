// Package providers talks to the external text-generation services: Gemini
// refines prompts and Claude writes the game code.
package providers

import (
	"context"
	"fmt"
)

// Request is a single prompt sent to a provider.
type Request struct {
	Prompt string
	// MaxTokens bounds the response size; zero leaves it to the provider.
	MaxTokens int
	// Temperature is left to the provider when nil.
	Temperature *float64
}

// TextGenerator turns a prompt into model text.
type TextGenerator interface {
	GenerateText(ctx context.Context, req Request) (string, error)
}

// Error is returned for any provider-side failure: transport, quota,
// unexpected status or an unusable response body.
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s provider error: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func providerError(provider string, format string, args ...any) error {
	return &Error{Provider: provider, Err: fmt.Errorf(format, args...)}
}

// Float64 returns a pointer to v, for Request.Temperature.
func Float64(v float64) *float64 {
	return &v
}
