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

// maxAppointmentResults caps filtered list queries.
const maxAppointmentResults = 500

type AppointmentHandler struct {
	config      *config.Config
	logger      *zap.Logger
	mongoClient *mongo.Client
}

// AppointmentFilters are the supported query parameters for the list route.
// Date and Status match exactly; Clinic, Patient and Doctor are
// case-insensitive substring matches.
type AppointmentFilters struct {
	Date    string
	Clinic  string
	Patient string
	Doctor  string
	Status  string
}

func NewAppointmentHandler(cfg *config.Config, logger *zap.Logger, mongoClient *mongo.Client) *AppointmentHandler {
	return &AppointmentHandler{
		config:      cfg,
		logger:      logger,
		mongoClient: mongoClient,
	}
}

func (h *AppointmentHandler) appointments() *mongo.Collection {
	return h.mongoClient.Database(h.config.MongoDBName).Collection("appointments")
}

// BuildAppointmentFilter translates list filters into a MongoDB query
// document. Empty fields contribute nothing.
func BuildAppointmentFilter(filters AppointmentFilters) bson.M {
	query := bson.M{}
	if filters.Date != "" {
		query["date"] = filters.Date
	}
	if filters.Clinic != "" {
		query["clinic"] = bson.M{"$regex": filters.Clinic, "$options": "i"}
	}
	if filters.Patient != "" {
		query["patientName"] = bson.M{"$regex": filters.Patient, "$options": "i"}
	}
	if filters.Doctor != "" {
		query["doctorName"] = bson.M{"$regex": filters.Doctor, "$options": "i"}
	}
	if filters.Status != "" {
		query["status"] = filters.Status
	}
	return query
}

// CreateAppointment inserts whatever fields the client sent. The legacy
// contract performs no required-field checks here, and callers depend on
// that; only the status default and creation timestamp are server-side.
func (h *AppointmentHandler) CreateAppointment(c *fiber.Ctx) error {
	var appointment models.Appointment
	if err := c.BodyParser(&appointment); err != nil {
		h.logger.Error("failed to parse appointment data", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request format"})
	}

	appointment.ID = bson.ObjectID{}
	appointment.CreatedAt = time.Now()
	if appointment.Status == "" {
		appointment.Status = "upcoming"
	}

	result, err := h.appointments().InsertOne(c.Context(), appointment)
	if err != nil {
		h.logger.Error("failed to insert appointment", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}

	appointment.ID, _ = result.InsertedID.(bson.ObjectID)

	h.logger.Info("appointment created",
		zap.String("appointment_id", appointment.ID.Hex()),
		zap.String("status", appointment.Status))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Appointment created", "data": appointment})
}

// ListAppointments returns filtered appointments, newest-created first,
// capped at 500 records.
func (h *AppointmentHandler) ListAppointments(c *fiber.Ctx) error {
	filters := AppointmentFilters{
		Date:    c.Query("date"),
		Clinic:  c.Query("clinic"),
		Patient: c.Query("patient"),
		Doctor:  c.Query("doctor"),
		Status:  c.Query("status"),
	}
	query := BuildAppointmentFilter(filters)

	h.logger.Debug("appointment list query", zap.Any("query", query))

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(maxAppointmentResults)

	cursor, err := h.appointments().Find(c.Context(), query, findOptions)
	if err != nil {
		h.logger.Error("failed to query appointments", zap.Error(err), zap.Any("query", query))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}
	defer cursor.Close(c.Context())

	appointments := []models.Appointment{}
	if err := cursor.All(c.Context(), &appointments); err != nil {
		h.logger.Error("failed to decode appointments", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}

	return c.JSON(appointments)
}

func (h *AppointmentHandler) GetAppointment(c *fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid appointment ID"})
	}

	var appointment models.Appointment
	err = h.appointments().FindOne(c.Context(), bson.M{"_id": id}).Decode(&appointment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Appointment not found"})
		}
		h.logger.Error("failed to fetch appointment", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}

	return c.JSON(appointment)
}

// UpdateAppointment replaces the supplied fields unconditionally. Status has
// no transition guard; last write wins.
func (h *AppointmentHandler) UpdateAppointment(c *fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid appointment ID"})
	}

	var fields bson.M
	if err := c.BodyParser(&fields); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request format"})
	}
	delete(fields, "_id")
	delete(fields, "id")

	var updated models.Appointment
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = h.appointments().FindOneAndUpdate(c.Context(), bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Appointment not found"})
		}
		h.logger.Error("failed to update appointment", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Appointment updated", "data": updated})
}

// DeleteAppointment 404s on an unknown id, unlike the patient and doctor
// deletes.
func (h *AppointmentHandler) DeleteAppointment(c *fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid appointment ID"})
	}

	result, err := h.appointments().DeleteOne(c.Context(), bson.M{"_id": id})
	if err != nil {
		h.logger.Error("failed to delete appointment", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}
	if deleteStatus(result.DeletedCount, true) == fiber.StatusNotFound {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Appointment not found"})
	}

	return c.JSON(fiber.Map{"message": "Appointment deleted successfully"})
}

// CancelAppointment force-sets status to cancelled regardless of the current
// status.
func (h *AppointmentHandler) CancelAppointment(c *fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid appointment ID"})
	}

	var cancelled models.Appointment
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = h.appointments().FindOneAndUpdate(
		c.Context(),
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": "cancelled"}},
		opts,
	).Decode(&cancelled)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Appointment not found"})
		}
		h.logger.Error("failed to cancel appointment", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}

	h.logger.Info("appointment cancelled", zap.String("appointment_id", id.Hex()))

	return c.JSON(fiber.Map{"message": "Appointment cancelled", "data": cancelled})
}
