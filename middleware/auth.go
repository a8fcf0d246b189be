package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/onecare/backend/utils"
	"go.uber.org/zap"
)

// AuthMiddleware verifies bearer tokens issued at login and exposes the
// authenticated user ID and role via Locals("authID") / Locals("authRole").
type AuthMiddleware struct {
	issuer *utils.TokenIssuer
	logger *zap.Logger
}

func NewAuthMiddleware(issuer *utils.TokenIssuer, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		issuer: issuer,
		logger: logger,
	}
}

func (m *AuthMiddleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "No authorization header",
			})
		}

		bearerToken := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := m.issuer.VerifyToken(c.Context(), bearerToken)
		if err != nil {
			m.logger.Warn("token verification failed",
				zap.Error(err),
				zap.String("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid Token",
			})
		}

		sub, _ := claims["sub"].(string)
		role, _ := claims["role"].(string)
		c.Locals("authID", sub)
		c.Locals("authRole", role)

		return c.Next()
	}
}
