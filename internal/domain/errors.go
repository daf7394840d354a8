package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrQuizNotFound indicates the quiz is absent, inactive or has no questions.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrNetwork covers transport failures and timeouts.
	ErrNetwork = errors.New("network error")
	// ErrValidation is returned when the backend rejects a payload.
	ErrValidation = errors.New("validation error")
	// ErrAuthRequired means the credential is missing or expired.
	ErrAuthRequired = fmt.Errorf("authentication required: %w", ErrNetwork)

	// ErrQuestionNotFound indicates a question ID outside the loaded set.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates an option ID that is not one of the question's options.
	ErrOptionNotFound = errors.New("option not found")
	// ErrQuestionNotDisplayed is returned when answering a question other than the current one.
	ErrQuestionNotDisplayed = errors.New("question is not currently displayed")

	// ErrAttemptNotFound is returned when an attempt is not registered.
	ErrAttemptNotFound = errors.New("attempt not found")
	ErrAttemptClosed   = errors.New("attempt closed")
	ErrAlreadyLoaded   = errors.New("attempt already loaded")
	ErrNotInProgress   = errors.New("attempt not in progress")
	// ErrSubmissionInFlight is returned for triggers that lose the submission latch.
	ErrSubmissionInFlight = errors.New("submission already in flight")
	ErrAttemptCompleted   = errors.New("attempt already completed")
)

// APIError is a failed backend call. It unwraps to Kind.
type APIError struct {
	Kind    error
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v (status %d)", e.Kind, e.Status)
	}
	return fmt.Sprintf("%v (status %d): %s", e.Kind, e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

// UserMessage is the text shown for an attempt that stopped on err.
func UserMessage(phase Phase, err error) string {
	if err == nil {
		return ""
	}
	switch phase {
	case PhaseUnavailable:
		if errors.Is(err, ErrQuizNotFound) {
			return "This quiz is not available or has no questions."
		}
		return "This quiz could not be loaded. Go back and reopen it."
	case PhaseFailed:
		if errors.Is(err, ErrAuthRequired) {
			return "Submission failed: please sign in again, your answers are kept."
		}
		return "Submission failed. Your answers are kept, you can try again."
	}
	return err.Error()
}
