package models

import "errors"

// Domain error taxonomy. Services wrap these with context via fmt.Errorf("%w");
// handlers translate them to HTTP statuses with errors.Is.
var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller's role or attempt history disallows the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict is returned when a uniqueness constraint rejects the operation.
	ErrConflict = errors.New("conflict")
	// ErrInvalidArgument is returned for inputs that violate a domain rule.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidState is returned when stored data is malformed upstream.
	ErrInvalidState = errors.New("invalid state")
)
