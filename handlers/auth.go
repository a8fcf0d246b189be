package handlers

import (
	"crypto/subtle"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/onecare/backend/config"
	"github.com/onecare/backend/models"
	"github.com/onecare/backend/utils"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"
)

// AuthHandler handles login and signup against the users collection.
type AuthHandler struct {
	config      *config.Config
	redisClient *redis.Client
	logger      *zap.Logger
	mongoClient *mongo.Client
	issuer      *utils.TokenIssuer
	validator   *validator.Validate
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

var (
	errInvalidCredentials = errors.New("invalid email or password")
	errRoleMismatch       = errors.New("role does not match this account")
)

// MatchAdminCredentials reports whether a login attempt matches the seeded
// admin account. Both comparisons are constant time.
func MatchAdminCredentials(adminEmail, adminPassword, email, password string) bool {
	emailMatch := subtle.ConstantTimeCompare([]byte(email), []byte(adminEmail)) == 1
	passMatch := subtle.ConstantTimeCompare([]byte(password), []byte(adminPassword)) == 1
	return emailMatch && passMatch
}

// checkUserLogin verifies the password and an optional requested role against
// a stored user. A role mismatch is a credential failure, not a lookup
// failure.
func checkUserLogin(user *models.User, password, role string) error {
	if !utils.CheckPasswordHash(password, user.Password) {
		return errInvalidCredentials
	}
	if role != "" && role != user.Role {
		return errRoleMismatch
	}
	return nil
}

// emailTaken reports whether a signup must be rejected for an already
// registered email, either from the pre-insert count or from the unique
// index rejecting the insert.
func emailTaken(count int64, insertErr error) bool {
	return count > 0 || mongo.IsDuplicateKeyError(insertErr)
}

func NewAuthHandler(cfg *config.Config, rds *redis.Client, logger *zap.Logger, mongoClient *mongo.Client, issuer *utils.TokenIssuer) *AuthHandler {
	return &AuthHandler{
		config:      cfg,
		redisClient: rds,
		logger:      logger,
		mongoClient: mongoClient,
		issuer:      issuer,
		validator:   validator.New(),
	}
}

func (h *AuthHandler) users() *mongo.Collection {
	return h.mongoClient.Database(h.config.MongoDBName).Collection("users")
}

// Login checks the seeded admin account first, then the users collection.
// Responds with a generic 401 on any credential failure.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Error("failed to parse login request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request format"})
	}

	// Seeded admin bypasses the users collection entirely.
	if MatchAdminCredentials(h.config.AdminEmail, h.config.AdminPassword, req.Email, req.Password) {
		token, err := h.issuer.IssueToken(c.Context(), "admin-id", "admin")
		if err != nil {
			h.logger.Error("failed to issue admin token", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error during login"})
		}
		return c.JSON(fiber.Map{
			"id":    "admin-id",
			"name":  "System Admin",
			"email": h.config.AdminEmail,
			"role":  "admin",
			"token": token,
		})
	}

	var user models.User
	err := h.users().FindOne(c.Context(), bson.M{"email": req.Email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid email or password"})
		}
		h.logger.Error("failed to look up user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error during login"})
	}

	if err := checkUserLogin(&user, req.Password, req.Role); err != nil {
		if err == errRoleMismatch {
			h.logger.Warn("login role mismatch",
				zap.String("email", req.Email),
				zap.String("requested", req.Role),
				zap.String("stored", user.Role))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Role does not match this account"})
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid email or password"})
	}

	token, err := h.issuer.IssueToken(c.Context(), user.ID.Hex(), user.Role)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error during login"})
	}

	h.logger.Info("user logged in",
		zap.String("user_id", user.ID.Hex()),
		zap.String("role", user.Role))

	return c.JSON(fiber.Map{
		"id":    user.ID.Hex(),
		"email": user.Email,
		"role":  user.Role,
		"name":  user.Name,
		"token": token,
	})
}

// Signup creates a patient-role account. Email uniqueness is enforced both
// by the pre-check and the unique index on users.email.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Error("failed to parse signup request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request format"})
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "All fields are required"})
	}

	if err := h.validator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid email address"})
	}

	count, err := h.users().CountDocuments(c.Context(), bson.M{"email": req.Email})
	if err != nil {
		h.logger.Error("failed to check existing email", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error during signup"})
	}
	if emailTaken(count, nil) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Email already registered"})
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("failed to hash password", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error during signup"})
	}

	user := models.User{
		Email:     req.Email,
		Password:  hashed,
		Role:      "patient",
		Name:      req.Name,
		CreatedAt: time.Now(),
	}

	result, err := h.users().InsertOne(c.Context(), user)
	if err != nil {
		if emailTaken(0, err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Email already registered"})
		}
		h.logger.Error("failed to insert user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error during signup"})
	}

	id, _ := result.InsertedID.(bson.ObjectID)

	h.logger.Info("user signed up",
		zap.String("user_id", id.Hex()),
		zap.String("email", req.Email))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":    id.Hex(),
		"email": user.Email,
		"role":  user.Role,
		"name":  user.Name,
	})
}
