package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session has not been initialized.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrCatalogNotFound indicates the question catalog could not be loaded.
	ErrCatalogNotFound = errors.New("quiz catalog not found")
	// ErrOptionNotFound indicates a submitted option index is invalid.
	ErrOptionNotFound = errors.New("option not found")
	// ErrOutOfRange indicates a question or section index outside the catalog.
	ErrOutOfRange = errors.New("index out of range")
	// ErrInvalidTransition is returned when an action does not apply to the current stage.
	ErrInvalidTransition = errors.New("action not allowed in current stage")
	// ErrSubmissionInFlight rejects a submit while another one is outstanding.
	ErrSubmissionInFlight = errors.New("submission already in progress")
	// ErrAlreadySubmitted rejects a submit after the response was stored.
	ErrAlreadySubmitted = errors.New("quiz already submitted")
	// ErrStorage wraps any failure reported by the response store.
	ErrStorage = errors.New("response storage failed")
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")
)

// SubmitFailedMessage is shown to the respondent for any storage failure.
const SubmitFailedMessage = "Failed to submit. Please try again."

// ValidationError reports a missing or malformed respondent field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrValidation) match any validation error.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
