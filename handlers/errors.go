package handlers

import "github.com/gofiber/fiber/v2"

// ErrorResponse is the body for machine-readable failures, used alongside
// the plain {"message": ...} replies. Code is a stable identifier such as
// VALIDATION_FAILED; Message is for humans.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// NewErrorResponse builds an ErrorResponse. A single detail is carried
// as-is; several are carried as a list.
func NewErrorResponse(code string, message string, details ...any) ErrorResponse {
	var detail any
	switch len(details) {
	case 0:
	case 1:
		detail = details[0]
	default:
		detail = details
	}
	return ErrorResponse{
		Code:    code,
		Message: message,
		Details: detail,
	}
}

// deleteStatus maps a delete outcome to a response status. Appointment
// deletes surface unknown ids as 404; every other resource acknowledges the
// delete whether or not the document existed.
func deleteStatus(deleted int64, notFoundOnMiss bool) int {
	if notFoundOnMiss && deleted == 0 {
		return fiber.StatusNotFound
	}
	return fiber.StatusOK
}
