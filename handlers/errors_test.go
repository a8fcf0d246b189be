package handlers

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("NOT_FOUND", "Appointment not found")

	assert.Equal(t, "NOT_FOUND", resp.Code)
	assert.Equal(t, "Appointment not found", resp.Message)
	assert.Nil(t, resp.Details)
}

func TestNewErrorResponseWithDetails(t *testing.T) {
	resp := NewErrorResponse("VALIDATION_FAILED", "Validation failed", "name is required")

	assert.Equal(t, "name is required", resp.Details)
}

func TestNewErrorResponseWithSeveralDetails(t *testing.T) {
	resp := NewErrorResponse("VALIDATION_FAILED", "Validation failed", "name is required", "charges must be positive")

	assert.Equal(t, []any{"name is required", "charges must be positive"}, resp.Details)
}

func TestDeleteStatus(t *testing.T) {
	// Appointment deletes surface unknown ids.
	assert.Equal(t, fiber.StatusNotFound, deleteStatus(0, true))
	assert.Equal(t, fiber.StatusOK, deleteStatus(1, true))

	// Patient, doctor, bill, service and listing deletes acknowledge either
	// way.
	assert.Equal(t, fiber.StatusOK, deleteStatus(0, false))
	assert.Equal(t, fiber.StatusOK, deleteStatus(1, false))
}
