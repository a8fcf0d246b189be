package handlers

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/onecare/backend/config"
	"github.com/onecare/backend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

const (
	reportsBucket     = "medical-reports"
	maxReportSize     = 10 * 1024 * 1024
	objectGetRetries  = 3
	objectGetInterval = time.Second
)

var reportContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// ReportHandler manages medical report files attached to encounters. File
// bytes live in MinIO; one metadata document per file lives in the reports
// collection.
type ReportHandler struct {
	config      *config.Config
	logger      *zap.Logger
	mongoClient *mongo.Client
	minioClient *minio.Client
}

func NewReportHandler(cfg *config.Config, logger *zap.Logger, mongoClient *mongo.Client, minioClient *minio.Client) *ReportHandler {
	return &ReportHandler{
		config:      cfg,
		logger:      logger,
		mongoClient: mongoClient,
		minioClient: minioClient,
	}
}

func (h *ReportHandler) reports() *mongo.Collection {
	return h.mongoClient.Database(h.config.MongoDBName).Collection("reports")
}

// BuildReportObjectName produces the storage key for an uploaded report:
// <encounterID>/<uuid><ext>, so one encounter's files share a prefix.
func BuildReportObjectName(encounterID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("%s/%s%s", encounterID, uuid.New().String(), ext)
}

// ReportContentType maps a file name to its content type, or "" when the
// extension is not accepted.
func ReportContentType(fileName string) string {
	return reportContentTypes[strings.ToLower(filepath.Ext(fileName))]
}

// UploadReport stores a multipart file (field "report") for an encounter.
func (h *ReportHandler) UploadReport(c *fiber.Ctx) error {
	encounterID := c.Params("id")
	if encounterID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Encounter ID is required"})
	}

	file, err := c.FormFile("report")
	if err != nil {
		h.logger.Error("failed to get file from form", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "No file uploaded"})
	}

	if file.Size > maxReportSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": fmt.Sprintf("File size exceeds maximum limit of %d MB", maxReportSize/(1024*1024)),
		})
	}

	contentType := ReportContentType(file.Filename)
	if contentType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Only PDF, JPG and PNG files are allowed"})
	}

	src, err := file.Open()
	if err != nil {
		h.logger.Error("failed to open uploaded file", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to process uploaded file"})
	}
	defer src.Close()

	objectName := BuildReportObjectName(encounterID, file.Filename)

	ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
	defer cancel()

	info, err := h.minioClient.PutObject(
		ctx,
		reportsBucket,
		objectName,
		src,
		file.Size,
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		h.logger.Error("failed to upload report",
			zap.Error(err),
			zap.String("bucket", reportsBucket),
			zap.String("object", objectName))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to store report"})
	}

	if _, err := h.minioClient.StatObject(ctx, reportsBucket, objectName, minio.StatObjectOptions{}); err != nil {
		h.logger.Error("failed to verify uploaded report",
			zap.Error(err),
			zap.String("object", objectName))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to verify uploaded report"})
	}

	report := models.Report{
		EncounterID: encounterID,
		FileName:    file.Filename,
		ObjectName:  objectName,
		ContentType: contentType,
		Size:        info.Size,
		UploadedAt:  time.Now(),
	}

	result, err := h.reports().InsertOne(c.Context(), report)
	if err != nil {
		h.logger.Error("failed to insert report metadata", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}

	report.ID, _ = result.InsertedID.(bson.ObjectID)

	h.logger.Info("report uploaded",
		zap.String("report_id", report.ID.Hex()),
		zap.String("encounter_id", encounterID),
		zap.String("object", objectName),
		zap.Int64("size", info.Size))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Report uploaded", "data": report})
}

// ListReports returns the metadata for every report attached to an
// encounter, newest first.
func (h *ReportHandler) ListReports(c *fiber.Ctx) error {
	encounterID := c.Params("id")
	if encounterID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Encounter ID is required"})
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "uploadedAt", Value: -1}})

	cursor, err := h.reports().Find(c.Context(), bson.M{"encounterId": encounterID}, findOptions)
	if err != nil {
		h.logger.Error("failed to query reports", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}
	defer cursor.Close(c.Context())

	reports := []models.Report{}
	if err := cursor.All(c.Context(), &reports); err != nil {
		h.logger.Error("failed to decode reports", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}

	return c.JSON(reports)
}

// DownloadReport streams the stored file back to the client.
func (h *ReportHandler) DownloadReport(c *fiber.Ctx) error {
	report, ok := h.findReport(c)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
	defer cancel()

	// Object store reads occasionally fail right after an upload; retry a
	// few times before giving up.
	var obj *minio.Object
	var err error
	for attempt := 0; attempt < objectGetRetries; attempt++ {
		obj, err = h.minioClient.GetObject(ctx, reportsBucket, report.ObjectName, minio.GetObjectOptions{})
		if err == nil {
			break
		}
		h.logger.Warn("attempt to get report from storage failed, retrying...",
			zap.Error(err),
			zap.Int("attempt", attempt+1))
		time.Sleep(objectGetInterval)
	}
	if err != nil {
		h.logger.Error("all attempts to get report from storage failed",
			zap.Error(err),
			zap.String("object", report.ObjectName))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch report"})
	}

	c.Set("Content-Type", report.ContentType)
	c.Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", report.FileName))
	return c.SendStream(obj)
}

// DeleteReport removes the stored object and its metadata document.
func (h *ReportHandler) DeleteReport(c *fiber.Ctx) error {
	report, ok := h.findReport(c)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
	defer cancel()

	if err := h.minioClient.RemoveObject(ctx, reportsBucket, report.ObjectName, minio.RemoveObjectOptions{}); err != nil {
		h.logger.Error("failed to remove report object",
			zap.Error(err),
			zap.String("object", report.ObjectName))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to delete report"})
	}

	if _, err := h.reports().DeleteOne(c.Context(), bson.M{"_id": report.ID}); err != nil {
		h.logger.Error("failed to delete report metadata", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}

	h.logger.Info("report deleted",
		zap.String("report_id", report.ID.Hex()),
		zap.String("encounter_id", report.EncounterID))

	return c.JSON(fiber.Map{"message": "Report deleted"})
}

// findReport resolves the :reportId param within the encounter from :id.
// On failure it writes the error response and reports ok=false.
func (h *ReportHandler) findReport(c *fiber.Ctx) (*models.Report, bool) {
	encounterID := c.Params("id")
	reportID, err := bson.ObjectIDFromHex(c.Params("reportId"))
	if err != nil {
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid report ID"})
		return nil, false
	}

	var report models.Report
	err = h.reports().FindOne(c.Context(), bson.M{"_id": reportID, "encounterId": encounterID}).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Report not found"})
		} else {
			h.logger.Error("failed to fetch report", zap.Error(err))
			c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
		}
		return nil, false
	}

	return &report, true
}
