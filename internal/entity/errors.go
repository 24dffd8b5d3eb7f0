package entity

import "errors"

// Domain errors
var (
	// Session errors
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionCancelled     = errors.New("session is cancelled")
	ErrSessionCompleted     = errors.New("session is already completed")
	ErrSessionNotComplete   = errors.New("questionnaire is not complete")
	ErrInvalidSessionStatus = errors.New("invalid session status")
	ErrSessionBusy          = errors.New("diagnosis already in progress")
	ErrNoResult             = errors.New("session result not available")

	// Diagnosis errors
	ErrDiagnosisUnavailable = errors.New("diagnosis service unavailable")

	// Chat state errors
	ErrChatStateNotFound = errors.New("chat state not found")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidParameter = errors.New("invalid parameter")
)
