package models

import "errors"

// Application-wide standard errors
var (
	// Common Resource/DB Errors
	ErrNotFound = errors.New("resource not found")

	// Scenario Errors
	ErrScenarioNotFound   = errors.New("scenario not found for chapter")
	ErrNoScenarioToUpdate = errors.New("no scenario eligible for update")

	// Session Errors
	ErrSessionNotFound        = errors.New("invest session not found")
	ErrSessionAlreadyClosed   = errors.New("invest session is already closed")
	ErrSessionChapterMismatch = errors.New("invest session belongs to another chapter")

	// Request Errors
	ErrInvalidInput = errors.New("invalid input data")
)
