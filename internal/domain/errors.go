// Package domain defines the core business entities and errors.
package domain

import "errors"

// Sentinel errors shared by the domain entities. Callers match them
// with errors.Is; entity Validate methods wrap them with the failing
// field's detail.
var (
	// ErrValidation marks any entity validation failure.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID marks a malformed or non-positive identifier.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyContent marks required text that was left blank.
	ErrEmptyContent = errors.New("content cannot be empty")
)
