package handlers

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/onecare/backend/config"
	"github.com/onecare/backend/models"
	"github.com/onecare/backend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

type BillingHandler struct {
	config      *config.Config
	logger      *zap.Logger
	mongoClient *mongo.Client
	codes       *utils.CodeGenerator
	validator   *validator.Validate
}

type BillRequest struct {
	EncounterID string               `json:"encounterId"`
	DoctorName  string               `json:"doctorName"`
	ClinicName  string               `json:"clinicName"`
	PatientName string               `json:"patientName" validate:"required"`
	Services    []models.BillService `json:"services"`
	TotalAmount float64              `json:"totalAmount" validate:"gte=0"`
	Discount    float64              `json:"discount" validate:"gte=0"`
	AmountDue   float64              `json:"amountDue"`
	Date        string               `json:"date"`
	Status      string               `json:"status" validate:"omitempty,oneof=paid unpaid partial"`
}

func NewBillingHandler(cfg *config.Config, logger *zap.Logger, mongoClient *mongo.Client, codes *utils.CodeGenerator) *BillingHandler {
	return &BillingHandler{
		config:      cfg,
		logger:      logger,
		mongoClient: mongoClient,
		codes:       codes,
		validator:   validator.New(),
	}
}

func (h *BillingHandler) bills() *mongo.Collection {
	return h.mongoClient.Database(h.config.MongoDBName).Collection("bills")
}

// ComputeAmountDue applies the billing arithmetic: when the caller leaves
// amountDue at zero the server derives it from totalAmount - discount;
// a caller-supplied value (partial payments) is taken as-is. Negative
// results clamp to zero.
func ComputeAmountDue(totalAmount, discount, amountDue float64) float64 {
	if amountDue != 0 {
		return amountDue
	}
	due := totalAmount - discount
	if due < 0 {
		return 0
	}
	return due
}

func (h *BillingHandler) CreateBill(c *fiber.Ctx) error {
	var req BillRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Error("failed to parse bill data", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request format"})
	}

	if err := h.validator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(NewErrorResponse("VALIDATION_FAILED", "Validation failed", err.Error()))
	}

	// Bills raised outside an encounter get a fresh short code.
	if req.EncounterID == "" {
		code, err := h.codes.GenerateEncounterCode()
		if err != nil {
			h.logger.Error("failed to generate encounter code", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error", "error": err.Error()})
		}
		req.EncounterID = code
	}

	if req.Status == "" {
		req.Status = "unpaid"
	}

	bill := models.Billing{
		EncounterID: req.EncounterID,
		DoctorName:  req.DoctorName,
		ClinicName:  req.ClinicName,
		PatientName: req.PatientName,
		Services:    req.Services,
		TotalAmount: req.TotalAmount,
		Discount:    req.Discount,
		AmountDue:   ComputeAmountDue(req.TotalAmount, req.Discount, req.AmountDue),
		Date:        req.Date,
		Status:      req.Status,
		CreatedAt:   time.Now(),
	}

	result, err := h.bills().InsertOne(c.Context(), bill)
	if err != nil {
		h.logger.Error("failed to insert bill", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error", "error": err.Error()})
	}

	bill.ID, _ = result.InsertedID.(bson.ObjectID)

	h.logger.Info("bill created",
		zap.String("bill_id", bill.ID.Hex()),
		zap.String("encounter_id", bill.EncounterID),
		zap.Float64("amount_due", bill.AmountDue))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Bill created successfully", "data": bill})
}

// ListBills returns all bills, newest-created first.
func (h *BillingHandler) ListBills(c *fiber.Ctx) error {
	filter := bson.M{}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}
	if encounter := c.Query("encounterId"); encounter != "" {
		filter["encounterId"] = encounter
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := h.bills().Find(c.Context(), filter, findOptions)
	if err != nil {
		h.logger.Error("failed to query bills", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error fetching bills", "error": err.Error()})
	}
	defer cursor.Close(c.Context())

	bills := []models.Billing{}
	if err := cursor.All(c.Context(), &bills); err != nil {
		h.logger.Error("failed to decode bills", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error fetching bills", "error": err.Error()})
	}

	return c.JSON(bills)
}

func (h *BillingHandler) GetBill(c *fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid bill ID"})
	}

	var bill models.Billing
	err = h.bills().FindOne(c.Context(), bson.M{"_id": id}).Decode(&bill)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Bill not found"})
		}
		h.logger.Error("failed to fetch bill", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error fetching bill"})
	}

	return c.JSON(bill)
}

func (h *BillingHandler) UpdateBill(c *fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid bill ID"})
	}

	var fields bson.M
	if err := c.BodyParser(&fields); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request format"})
	}
	delete(fields, "_id")
	delete(fields, "id")

	var updated models.Billing
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = h.bills().FindOneAndUpdate(c.Context(), bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Bill not found"})
		}
		h.logger.Error("failed to update bill", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error updating bill"})
	}

	return c.JSON(fiber.Map{"message": "Bill updated", "data": updated})
}

// DeleteBill is idempotent; the confirmation does not depend on prior
// existence.
func (h *BillingHandler) DeleteBill(c *fiber.Ctx) error {
	id, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid bill ID"})
	}

	result, err := h.bills().DeleteOne(c.Context(), bson.M{"_id": id})
	if err != nil {
		h.logger.Error("failed to delete bill", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error deleting bill"})
	}

	return c.Status(deleteStatus(result.DeletedCount, false)).JSON(fiber.Map{"message": "Bill deleted"})
}
