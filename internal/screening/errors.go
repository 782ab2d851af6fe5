package screening

import (
	"errors"
	"fmt"
)

// ErrConfiguration marks errors caused by missing or invalid provider setup.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError is fatal for a run and carries a hint on how to fix it.
type ConfigurationError struct {
	Reason string
	Hint   string
}

func (e *ConfigurationError) Error() string {
	if e.Hint == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s (%s)", e.Reason, e.Hint)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// EmbeddingError aborts a run. No partial ranking is produced.
type EmbeddingError struct {
	Stage string
	Err   error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding %s: %v", e.Stage, e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// ErrEmptyJob is returned when the job description has no text.
var ErrEmptyJob = errors.New("job description is empty")
