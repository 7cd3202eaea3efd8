package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when answer generation fails for any general reason
	ErrGenerationFailed = errors.New("failed to generate answer")

	// ErrInvalidResponse is returned when the provider response cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from generation provider")

	// ErrInvalidConfig is returned when the generator configuration is invalid,
	// e.g. no API credential is available. This is a non-retryable precondition.
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
