package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a user has no practice session.
	ErrSessionNotFound = errors.New("practice session not found")
	// ErrQuestionNotFound is returned when a question ID is not in the bank.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrEmptyPrompt rejects blank or whitespace-only prompt text.
	ErrEmptyPrompt = errors.New("question prompt cannot be empty")
	// ErrInvalidCounters indicates a stored record with impossible statistics.
	ErrInvalidCounters = errors.New("question counters are inconsistent")

	// ErrProfileNotFound is returned by profile stores for unknown usernames.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrProfileExists is returned when registering a taken username.
	ErrProfileExists = errors.New("profile already exists")
	ErrInvalidUsername    = errors.New("username cannot be empty")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidAge         = errors.New("invalid age")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials = errors.New("invalid username or password")
)
