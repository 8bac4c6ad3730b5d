package domain

import "errors"

// Sentinel errors shared by every layer. Repos and services wrap them with
// fmt.Errorf("pkg.Type.Method: %w: detail", ...) and the handler maps them to
// a status with errors.Is.
var (
	// ErrNotFound means the referenced company, vehicle, trip or alert does
	// not exist. HTTP 404.
	ErrNotFound = errors.New("not found")

	// ErrValidation means the input broke a business rule, such as a negative
	// distance or a vehicle owned by another company. HTTP 422.
	ErrValidation = errors.New("validation error")

	// ErrConflict means the write collided with existing state: a duplicate
	// vehicle registration, or a detection run already in progress. HTTP 409.
	ErrConflict = errors.New("conflict")
)
