package middleware

import (
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RecoveryMiddleware turns a handler panic into a logged 500 with the same
// {"message": ...} shape the handlers use.
func RecoveryMiddleware(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("recovered from panic",
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("method", c.Method()),
					zap.String("path", c.Path()),
					zap.String("ip", c.IP()),
				)

				c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"message": "Server error",
				})
			}
		}()
		return c.Next()
	}
}
