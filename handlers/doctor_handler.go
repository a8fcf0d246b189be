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

type DoctorHandler struct {
	config      *config.Config
	logger      *zap.Logger
	mongoClient *mongo.Client
}

func NewDoctorHandler(cfg *config.Config, logger *zap.Logger, mongoClient *mongo.Client) *DoctorHandler {
	return &DoctorHandler{
		config:      cfg,
		logger:      logger,
		mongoClient: mongoClient,
	}
}

func (h *DoctorHandler) doctors() *mongo.Collection {
	return h.mongoClient.Database(h.config.MongoDBName).Collection("doctors")
}

func (h *DoctorHandler) CreateDoctor(c *fiber.Ctx) error {
	var doctor models.Doctor
	if err := c.BodyParser(&doctor); err != nil {
		h.logger.Error("failed to parse doctor data", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request format"})
	}

	doctor.ID = bson.ObjectID{}
	doctor.CreatedAt = time.Now()
	if doctor.Status == "" {
		doctor.Status = "active"
	}
	if doctor.ApprovalStatus == "" {
		// New staff accounts stay hidden until a clinic admin accepts them.
		doctor.ApprovalStatus = "pending"
	}

	result, err := h.doctors().InsertOne(c.Context(), doctor)
	if err != nil {
		h.logger.Error("failed to insert doctor", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}

	doctor.ID, _ = result.InsertedID.(bson.ObjectID)

	h.logger.Info("doctor created",
		zap.String("doctor_id", doctor.ID.Hex()),
		zap.String("clinic", doctor.Clinic))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Doctor added", "data": doctor})
}

func (h *DoctorHandler) ListDoctors(c *fiber.Ctx) error {
	filter := bson.M{}
	if clinic := c.Query("clinic"); clinic != "" {
		filter["clinic"] = bson.M{"$regex": clinic, "$options": "i"}
	}
	if spec := c.Query("specialization"); spec != "" {
		filter["specialization"] = bson.M{"$regex": spec, "$options": "i"}
	}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}
	if approval := c.Query("approvalStatus"); approval != "" {
		filter["approvalStatus"] = approval
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := h.doctors().Find(c.Context(), filter, findOptions)
	if err != nil {
		h.logger.Error("failed to query doctors", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}
	defer cursor.Close(c.Context())

	doctors := []models.Doctor{}
	if err := cursor.All(c.Context(), &doctors); err != nil {
		h.logger.Error("failed to decode doctors", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}

	return c.JSON(doctors)
}

func (h *DoctorHandler) GetDoctor(c *fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid doctor ID"})
	}

	var doctor models.Doctor
	err = h.doctors().FindOne(c.Context(), bson.M{"_id": id}).Decode(&doctor)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Doctor not found"})
		}
		h.logger.Error("failed to fetch doctor", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}

	return c.JSON(doctor)
}

func (h *DoctorHandler) UpdateDoctor(c *fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid doctor ID"})
	}

	var fields bson.M
	if err := c.BodyParser(&fields); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request format"})
	}
	delete(fields, "_id")
	delete(fields, "id")

	var updated models.Doctor
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = h.doctors().FindOneAndUpdate(c.Context(), bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Doctor not found"})
		}
		h.logger.Error("failed to update doctor", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Doctor updated", "data": updated})
}

// DeleteDoctor is idempotent like DeletePatient; appointments referencing the
// doctor are left untouched.
func (h *DoctorHandler) DeleteDoctor(c *fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid doctor ID"})
	}

	result, err := h.doctors().DeleteOne(c.Context(), bson.M{"_id": id})
	if err != nil {
		h.logger.Error("failed to delete doctor", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error deleting doctor", "error": err.Error()})
	}

	return c.Status(deleteStatus(result.DeletedCount, false)).JSON(fiber.Map{"message": "Doctor deleted successfully"})
}
