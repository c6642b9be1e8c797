package utils

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

var (
	// ErrNotFound covers missing records and records the caller may not see,
	// including inactive tests.
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("caller identity required")
	// ErrNoActiveAttempt means submit found no open attempt; the caller has
	// to start the test again.
	ErrNoActiveAttempt = errors.New("no active test attempt found")
	// ErrConflictingAttempt is reported when a concurrent start already
	// opened an attempt for the same user and test.
	ErrConflictingAttempt = errors.New("another attempt for this test is already open")
	// ErrPersistence marks store I/O failures.
	ErrPersistence = errors.New("persistence failure")
)

type persistenceError struct {
	op  string
	err error
}

func (e *persistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.op, e.err)
}

func (e *persistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.err}
}

// Persistence wraps a store error so errors.Is(err, ErrPersistence) holds.
// Errors that already belong to the taxonomy pass through unchanged.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{ErrNotFound, ErrUnauthenticated, ErrNoActiveAttempt, ErrConflictingAttempt, ErrPersistence} {
		if errors.Is(err, known) {
			return err
		}
	}
	return &persistenceError{op: op, err: err}
}

// StatusFor maps the error taxonomy onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoActiveAttempt):
		return fiber.StatusNotFound
	case errors.Is(err, ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrConflictingAttempt):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
