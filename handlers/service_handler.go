package handlers

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/onecare/backend/config"
	"github.com/onecare/backend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

type ServiceHandler struct {
	config      *config.Config
	logger      *zap.Logger
	mongoClient *mongo.Client
	validator   *validator.Validate
}

type ServiceRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Charges     float64 `json:"charges" validate:"gte=0"`
	Duration    string  `json:"duration"`
	Clinic      string  `json:"clinic"`
	Active      *bool   `json:"active"`
}

func NewServiceHandler(cfg *config.Config, logger *zap.Logger, mongoClient *mongo.Client) *ServiceHandler {
	return &ServiceHandler{
		config:      cfg,
		logger:      logger,
		mongoClient: mongoClient,
		validator:   validator.New(),
	}
}

func (h *ServiceHandler) services() *mongo.Collection {
	return h.mongoClient.Database(h.config.MongoDBName).Collection("services")
}

// flipActive returns the service with its active flag inverted. Applying it
// twice restores the original document.
func flipActive(s models.Service) models.Service {
	s.Active = !s.Active
	return s
}

func (h *ServiceHandler) ListServices(c *fiber.Ctx) error {
	filter := bson.M{}
	if clinic := c.Query("clinic"); clinic != "" {
		filter["clinic"] = bson.M{"$regex": clinic, "$options": "i"}
	}
	if active := c.Query("active"); active != "" {
		filter["active"] = active == "true"
	}

	cursor, err := h.services().Find(c.Context(), filter)
	if err != nil {
		h.logger.Error("failed to query services", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}
	defer cursor.Close(c.Context())

	services := []models.Service{}
	if err := cursor.All(c.Context(), &services); err != nil {
		h.logger.Error("failed to decode services", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}

	h.logger.Debug("services listed", zap.Int("count", len(services)))

	return c.JSON(services)
}

func (h *ServiceHandler) CreateService(c *fiber.Ctx) error {
	var req ServiceRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Error("failed to parse service data", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request format"})
	}

	if err := h.validator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(NewErrorResponse("VALIDATION_FAILED", "Validation failed", err.Error()))
	}

	service := models.Service{
		Name:        req.Name,
		Description: req.Description,
		Charges:     req.Charges,
		Duration:    req.Duration,
		Clinic:      req.Clinic,
		Active:      true,
		CreatedAt:   time.Now(),
	}
	if req.Active != nil {
		service.Active = *req.Active
	}

	result, err := h.services().InsertOne(c.Context(), service)
	if err != nil {
		h.logger.Error("failed to insert service", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}

	service.ID, _ = result.InsertedID.(bson.ObjectID)

	h.logger.Info("service created",
		zap.String("service_id", service.ID.Hex()),
		zap.String("name", service.Name))

	return c.Status(fiber.StatusCreated).JSON(service)
}

func (h *ServiceHandler) UpdateService(c *fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid service ID"})
	}

	var fields bson.M
	if err := c.BodyParser(&fields); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request format"})
	}
	delete(fields, "_id")
	delete(fields, "id")

	var updated models.Service
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = h.services().FindOneAndUpdate(c.Context(), bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Service not found"})
		}
		h.logger.Error("failed to update service", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}

	return c.JSON(updated)
}

// ToggleService flips the active flag and returns the updated document.
// Toggling twice restores the original value.
func (h *ServiceHandler) ToggleService(c *fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid service ID"})
	}

	var service models.Service
	err = h.services().FindOne(c.Context(), bson.M{"_id": id}).Decode(&service)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Service not found"})
		}
		h.logger.Error("failed to fetch service", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}

	service = flipActive(service)
	_, err = h.services().UpdateOne(c.Context(), bson.M{"_id": id}, bson.M{"$set": bson.M{"active": service.Active}})
	if err != nil {
		h.logger.Error("failed to toggle service", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}

	h.logger.Info("service toggled",
		zap.String("service_id", id.Hex()),
		zap.Bool("active", service.Active))

	return c.JSON(service)
}

// DeleteService matches the legacy contract: a bare confirmation regardless
// of prior existence.
func (h *ServiceHandler) DeleteService(c *fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid service ID"})
	}

	result, err := h.services().DeleteOne(c.Context(), bson.M{"_id": id})
	if err != nil {
		h.logger.Error("failed to delete service", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}

	return c.Status(deleteStatus(result.DeletedCount, false)).JSON(fiber.Map{"message": "Deleted"})
}
