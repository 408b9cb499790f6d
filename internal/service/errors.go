package service

import (
	"errors"

	"bugTracker/repository"
)

// ValidationError reports malformed, missing or mistyped caller input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ReferenceError reports that an entity named by the input does not exist.
type ReferenceError struct {
	Entity string
	ID     int64
}

func (e *ReferenceError) Error() string { return e.Entity + " not found" }

// AuthError reports rejected credentials or a missing/invalid token.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string { return e.Reason }

func invalid(reason string) error {
	return &ValidationError{Reason: reason}
}

// noFields converts an empty partial update into a ValidationError; other
// errors pass through unchanged.
func noFields(err error) error {
	if errors.Is(err, repository.ErrNoFields) {
		return invalid(repository.ErrNoFields.Error())
	}
	return err
}

// IsCallerError reports whether err is the caller's fault rather than a store failure.
func IsCallerError(err error) bool {
	var ve *ValidationError
	var re *ReferenceError
	var ae *AuthError
	return errors.As(err, &ve) || errors.As(err, &re) || errors.As(err, &ae)
}

func refErr(entity string, id int64) error {
	return &ReferenceError{Entity: entity, ID: id}
}
