package service

import "studytime-backend/internal/models"

// Custom errors

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

// AlreadyActiveError means the scope already has an open session and start
// was called without force.
type AlreadyActiveError struct {
	Session *models.StudySession
}

func (e *AlreadyActiveError) Error() string { return "a study session is already in progress" }

type NoActiveSessionError struct{}

func (e *NoActiveSessionError) Error() string { return "no study session is in progress" }

// NotFoundError covers both "record does not exist" and "record owned by
// someone else"; callers must not be able to tell the two apart.
type NotFoundError struct{}

func (e *NotFoundError) Error() string { return "session not found" }

type FutureDateError struct{}

func (e *FutureDateError) Error() string { return "date must not be in the future" }
