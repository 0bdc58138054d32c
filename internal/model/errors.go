package model

import "errors"

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")

	// ErrSubmission is returned when a job could not be submitted to the backend.
	ErrSubmission = errors.New("submission failed")
	// ErrEncoding is returned when a binary input could not be encoded for transport.
	ErrEncoding = errors.New("encoding failed")
	// ErrTaskFailure is returned when the backend reports an accepted task as failed.
	ErrTaskFailure = errors.New("task failed")
	// ErrPollingTransient is returned when the task status could not be observed.
	ErrPollingTransient = errors.New("task status query failed")
)
