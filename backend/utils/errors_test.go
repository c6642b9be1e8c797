package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	assert.Equal(t, fiber.StatusNotFound, StatusFor(ErrNotFound))
	assert.Equal(t, fiber.StatusNotFound, StatusFor(fmt.Errorf("attempt: %w", ErrNoActiveAttempt)))
	assert.Equal(t, fiber.StatusUnauthorized, StatusFor(ErrUnauthenticated))
	assert.Equal(t, fiber.StatusConflict, StatusFor(ErrConflictingAttempt))
	assert.Equal(t, fiber.StatusInternalServerError, StatusFor(Persistence("list", errors.New("conn reset"))))
}

func TestPersistenceWrapping(t *testing.T) {
	cause := errors.New("conn reset")
	err := Persistence("submit attempt", cause)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "submit attempt: conn reset", err.Error())

	assert.Same(t, ErrNotFound, Persistence("get", ErrNotFound))
	assert.Nil(t, Persistence("noop", nil))
}
