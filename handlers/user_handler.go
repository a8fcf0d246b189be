package handlers

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/nfnt/resize"
	"github.com/onecare/backend/config"
	"github.com/onecare/backend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"
)

const (
	profilePicsBucket = "profile-pics"
	maxPictureSize    = 5 * 1024 * 1024
	jpegQuality       = 85
	pictureDimension  = 512
)

// UserHandler serves the authenticated user's own profile.
type UserHandler struct {
	config      *config.Config
	logger      *zap.Logger
	mongoClient *mongo.Client
	minioClient *minio.Client
}

func NewUserHandler(cfg *config.Config, logger *zap.Logger, mongoClient *mongo.Client, minioClient *minio.Client) *UserHandler {
	return &UserHandler{
		config:      cfg,
		logger:      logger,
		mongoClient: mongoClient,
		minioClient: minioClient,
	}
}

func (h *UserHandler) users() *mongo.Collection {
	return h.mongoClient.Database(h.config.MongoDBName).Collection("users")
}

// authUserID reads the user ID the auth middleware stored in Locals.
func (h *UserHandler) authUserID(c *fiber.Ctx) (bson.ObjectID, error) {
	authID, ok := c.Locals("authID").(string)
	if !ok || authID == "" {
		return bson.ObjectID{}, fmt.Errorf("auth ID not found in context")
	}
	return bson.ObjectIDFromHex(authID)
}

func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	userID, err := h.authUserID(c)
	if err != nil {
		h.logger.Error("authID not found in context", zap.Error(err))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Authentication required"})
	}

	var user models.User
	err = h.users().FindOne(c.Context(), bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
		}
		h.logger.Error("failed to fetch user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}

	return c.JSON(user)
}

type updateProfileRequest struct {
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := h.authUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Authentication required"})
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request format"})
	}

	update := bson.M{}
	if req.Name != "" {
		update["name"] = req.Name
	}
	if req.Mobile != "" {
		update["mobile"] = req.Mobile
	}
	if len(update) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Nothing to update"})
	}

	result, err := h.users().UpdateOne(c.Context(), bson.M{"_id": userID}, bson.M{"$set": update})
	if err != nil {
		h.logger.Error("failed to update profile", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}
	if result.MatchedCount == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
	}

	return c.JSON(fiber.Map{"message": "Profile updated"})
}

// UploadProfilePic resizes the uploaded image to 512x512, re-encodes it as
// JPEG and stores it in object storage under a generated name.
func (h *UserHandler) UploadProfilePic(c *fiber.Ctx) error {
	userID, err := h.authUserID(c)
	if err != nil {
		h.logger.Error("authID not found in context", zap.Error(err))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Authentication required"})
	}

	file, err := c.FormFile("profilePic")
	if err != nil {
		h.logger.Error("failed to get file from form", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "No file uploaded"})
	}

	if file.Size > maxPictureSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": fmt.Sprintf("File size exceeds maximum limit of %d MB", maxPictureSize/(1024*1024)),
		})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Only JPG and PNG files are allowed"})
	}

	src, err := file.Open()
	if err != nil {
		h.logger.Error("failed to open uploaded file", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to process uploaded file"})
	}
	defer src.Close()

	img, _, err := image.Decode(src)
	if err != nil {
		h.logger.Error("failed to decode image", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid image format"})
	}

	resized := resize.Resize(pictureDimension, pictureDimension, img, resize.Lanczos3)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, resized, &jpeg.Options{Quality: jpegQuality}); err != nil {
		h.logger.Error("failed to encode image", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to process image"})
	}

	filename := fmt.Sprintf("%s.jpg", uuid.New().String())

	ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
	defer cancel()

	info, err := h.minioClient.PutObject(
		ctx,
		profilePicsBucket,
		filename,
		bytes.NewReader(buf.Bytes()),
		int64(buf.Len()),
		minio.PutObjectOptions{ContentType: "image/jpeg"},
	)
	if err != nil {
		h.logger.Error("failed to upload profile picture",
			zap.Error(err),
			zap.String("bucket", profilePicsBucket),
			zap.String("filename", filename))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to store image"})
	}

	pictureURL := fmt.Sprintf("/api/media/profile-pics/%s", filename)

	_, err = h.users().UpdateOne(c.Context(), bson.M{"_id": userID}, bson.M{"$set": bson.M{"pictureUrl": pictureURL}})
	if err != nil {
		h.logger.Error("failed to update picture URL", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update profile picture"})
	}

	h.logger.Info("profile picture uploaded",
		zap.String("user_id", userID.Hex()),
		zap.String("filename", filename),
		zap.Int64("size", info.Size))

	return c.JSON(fiber.Map{
		"message": "Profile picture updated successfully",
		"url":     pictureURL,
	})
}

// GetProfilePic streams a stored picture by its generated filename.
func (h *UserHandler) GetProfilePic(c *fiber.Ctx) error {
	filename := c.Params("filename")
	if filename == "" || strings.Contains(filename, "/") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid filename"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
	defer cancel()

	var obj *minio.Object
	var err error
	for attempt := 0; attempt < objectGetRetries; attempt++ {
		obj, err = h.minioClient.GetObject(ctx, profilePicsBucket, filename, minio.GetObjectOptions{})
		if err == nil {
			break
		}
		h.logger.Warn("attempt to get object from storage failed, retrying...",
			zap.Error(err),
			zap.Int("attempt", attempt+1))
		time.Sleep(objectGetInterval)
	}
	if err != nil {
		h.logger.Error("all attempts to get object from storage failed",
			zap.Error(err),
			zap.String("filename", filename))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch image"})
	}

	c.Set("Content-Type", "image/jpeg")
	return c.SendStream(obj)
}
