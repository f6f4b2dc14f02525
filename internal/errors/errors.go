// internal/errors/errors.go
package errors

import (
	"fmt"
	"strings"
)

// ConfigError indicates required configuration is missing or invalid.
// It is never retried and is surfaced before any network call is made.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// FetchError indicates a GitHub API call failed terminally: either the retry
// budget was exhausted on a transient failure, or the API rejected the request
// outright (bad credential, not found). It wraps the last underlying error.
type FetchError struct {
	Operation string
	Attempts  int
	Err       error
}

func (e *FetchError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("github: %s failed after %d attempts: %v", e.Operation, e.Attempts, e.Err)
	}
	return fmt.Sprintf("github: %s failed: %v", e.Operation, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SummarizationKind distinguishes the causes of a summarizer failure so the
// API layer can report them differently.
type SummarizationKind string

const (
	SummarizationAuth      SummarizationKind = "auth"
	SummarizationRateLimit SummarizationKind = "rate_limit"
	SummarizationAPI       SummarizationKind = "api"
)

// SummarizationError indicates the summarization collaborator failed. It does
// not affect sync state.
type SummarizationError struct {
	Kind SummarizationKind
	Err  error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("summarization failed (%s): %v", e.Kind, e.Err)
}

func (e *SummarizationError) Unwrap() error { return e.Err }

// MaskToken redacts all but the last 4 characters of a credential. Only the
// masked form is ever persisted; the live token is re-read from configuration
// on every sync pass.
func MaskToken(token string) string {
	runes := []rune(token)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-4:])
}
