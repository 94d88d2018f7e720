package services

import "errors"

var (
	// ErrNotFound means the addressed entry does not exist in its store.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a create collided with an existing key.
	ErrConflict = errors.New("already exists")

	// ErrMalformed means the stored or submitted data is structurally
	// invalid: a dangling reference, a bad graph, an unparseable archive.
	ErrMalformed = errors.New("malformed")
)
