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

// ListingHandler manages the catalog entries that back dropdowns across the
// admin screens (service types, specializations, observations, problems,
// prescriptions).
type ListingHandler struct {
	config      *config.Config
	logger      *zap.Logger
	mongoClient *mongo.Client
	validator   *validator.Validate
}

type ListingRequest struct {
	Name   string `json:"name" validate:"required"`
	Type   string `json:"type" validate:"required,oneof='Service type' 'Specialization' 'Observations' 'Problems' 'Prescription'"`
	Status string `json:"status" validate:"omitempty,oneof=Active Inactive"`
}

func NewListingHandler(cfg *config.Config, logger *zap.Logger, mongoClient *mongo.Client) *ListingHandler {
	return &ListingHandler{
		config:      cfg,
		logger:      logger,
		mongoClient: mongoClient,
		validator:   validator.New(),
	}
}

func (h *ListingHandler) listings() *mongo.Collection {
	return h.mongoClient.Database(h.config.MongoDBName).Collection("listings")
}

func (h *ListingHandler) CreateListing(c *fiber.Ctx) error {
	var req ListingRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Error("failed to parse listing data", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request format"})
	}

	if err := h.validator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(NewErrorResponse("VALIDATION_FAILED", "Validation failed", err.Error()))
	}

	if req.Status == "" {
		req.Status = "Active"
	}

	listing := models.Listing{
		Name:      req.Name,
		Type:      req.Type,
		Status:    req.Status,
		CreatedAt: time.Now(),
	}

	result, err := h.listings().InsertOne(c.Context(), listing)
	if err != nil {
		h.logger.Error("failed to insert listing", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}

	listing.ID, _ = result.InsertedID.(bson.ObjectID)

	return c.Status(fiber.StatusCreated).JSON(listing)
}

func (h *ListingHandler) ListListings(c *fiber.Ctx) error {
	filter := bson.M{}
	if typ := c.Query("type"); typ != "" {
		filter["type"] = typ
	}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := h.listings().Find(c.Context(), filter, findOptions)
	if err != nil {
		h.logger.Error("failed to query listings", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}
	defer cursor.Close(c.Context())

	listings := []models.Listing{}
	if err := cursor.All(c.Context(), &listings); err != nil {
		h.logger.Error("failed to decode listings", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}

	return c.JSON(listings)
}

func (h *ListingHandler) UpdateListing(c *fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid listing ID"})
	}

	var fields bson.M
	if err := c.BodyParser(&fields); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request format"})
	}
	delete(fields, "_id")
	delete(fields, "id")

	var updated models.Listing
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = h.listings().FindOneAndUpdate(c.Context(), bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Listing not found"})
		}
		h.logger.Error("failed to update listing", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}

	return c.JSON(updated)
}

func (h *ListingHandler) DeleteListing(c *fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid listing ID"})
	}

	result, err := h.listings().DeleteOne(c.Context(), bson.M{"_id": id})
	if err != nil {
		h.logger.Error("failed to delete listing", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}

	return c.Status(deleteStatus(result.DeletedCount, false)).JSON(fiber.Map{"message": "Deleted"})
}
