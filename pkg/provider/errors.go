package provider

import "fmt"

// UnavailableError reports an adapter that cannot currently serve.
// It removes the adapter from rotation but is never fatal.
type UnavailableError struct {
	Provider string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("provider %s is unavailable", e.Provider)
}

// GenerationError reports a failed call to a live adapter. The router
// fails over on it; callers only see it when every adapter failed.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("provider %s: generation failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
