package testgen

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAllProvidersFailed = errors.New("all providers failed")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidResponse    = errors.New("invalid provider response")
	ErrProviderError      = errors.New("provider error")
	ErrTimeout            = errors.New("provider call timed out")
)

// AllFailedError is the terminal failure when every selected provider
// failed. It carries one reason per provider so the caller can explain
// the failure to an end user.
type AllFailedError struct {
	Reasons []Warning
}

func (e *AllFailedError) Error() string {
	parts := make([]string, 0, len(e.Reasons))
	for _, r := range e.Reasons {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Provider, r.Reason))
	}
	return fmt.Sprintf("all providers failed: %s", strings.Join(parts, "; "))
}

func (e *AllFailedError) Is(target error) bool {
	return target == ErrAllProvidersFailed
}
