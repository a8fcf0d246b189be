package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/onecare/backend/config"
	"github.com/onecare/backend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

type PatientHandler struct {
	config      *config.Config
	logger      *zap.Logger
	mongoClient *mongo.Client
}

func NewPatientHandler(cfg *config.Config, logger *zap.Logger, mongoClient *mongo.Client) *PatientHandler {
	return &PatientHandler{
		config:      cfg,
		logger:      logger,
		mongoClient: mongoClient,
	}
}

func (h *PatientHandler) patients() *mongo.Collection {
	return h.mongoClient.Database(h.config.MongoDBName).Collection("patients")
}

type createPatientRequest struct {
	UserID   string `json:"userId"`
	Clinic   string `json:"clinic"`
	IsActive *bool  `json:"isActive"`
}

func (h *PatientHandler) CreatePatient(c *fiber.Ctx) error {
	var req createPatientRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Error("failed to parse patient data", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request format"})
	}

	patient := models.Patient{
		Clinic:    req.Clinic,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	if req.IsActive != nil {
		patient.IsActive = *req.IsActive
	}
	if req.UserID != "" {
		userID, err := bson.ObjectIDFromHex(req.UserID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid userId format"})
		}
		patient.UserID = userID
	}

	result, err := h.patients().InsertOne(c.Context(), patient)
	if err != nil {
		h.logger.Error("failed to insert patient", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}

	patient.ID, _ = result.InsertedID.(bson.ObjectID)

	h.logger.Info("patient created", zap.String("patient_id", patient.ID.Hex()))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Patient added", "data": patient})
}

func (h *PatientHandler) ListPatients(c *fiber.Ctx) error {
	filter := bson.M{}
	if clinic := c.Query("clinic"); clinic != "" {
		filter["clinic"] = bson.M{"$regex": clinic, "$options": "i"}
	}
	if active := c.Query("isActive"); active != "" {
		filter["isActive"] = active == "true"
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := h.patients().Find(c.Context(), filter, findOptions)
	if err != nil {
		h.logger.Error("failed to query patients", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}
	defer cursor.Close(c.Context())

	patients := []models.Patient{}
	if err := cursor.All(c.Context(), &patients); err != nil {
		h.logger.Error("failed to decode patients", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}

	return c.JSON(patients)
}

func (h *PatientHandler) GetPatient(c *fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid patient ID"})
	}

	var patient models.Patient
	err = h.patients().FindOne(c.Context(), bson.M{"_id": id}).Decode(&patient)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Patient not found"})
		}
		h.logger.Error("failed to fetch patient", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}

	return c.JSON(patient)
}

func (h *PatientHandler) UpdatePatient(c *fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid patient ID"})
	}

	var fields bson.M
	if err := c.BodyParser(&fields); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request format"})
	}
	delete(fields, "_id")
	delete(fields, "id")

	var updated models.Patient
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = h.patients().FindOneAndUpdate(c.Context(), bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Patient not found"})
		}
		h.logger.Error("failed to update patient", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Patient updated", "data": updated})
}

// DeletePatient reports success whether or not the document existed. The
// appointment delete 404s on a missing id; this one never has.
func (h *PatientHandler) DeletePatient(c *fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid patient ID"})
	}

	result, err := h.patients().DeleteOne(c.Context(), bson.M{"_id": id})
	if err != nil {
		h.logger.Error("failed to delete patient", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}

	return c.Status(deleteStatus(result.DeletedCount, false)).JSON(fiber.Map{"message": "Patient deleted successfully"})
}
