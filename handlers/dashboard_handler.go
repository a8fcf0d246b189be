package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/onecare/backend/cache"
	"github.com/onecare/backend/config"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const statsCacheTTL = 30 * time.Second

type DashboardHandler struct {
	config      *config.Config
	logger      *zap.Logger
	mongoClient *mongo.Client
	cache       *cache.Cache
}

type DashboardStats struct {
	TotalPatients int64 `json:"totalPatients"`
	TotalDoctors  int64 `json:"totalDoctors"`
}

func NewDashboardHandler(cfg *config.Config, logger *zap.Logger, mongoClient *mongo.Client, rds *redis.Client) *DashboardHandler {
	return &DashboardHandler{
		config:      cfg,
		logger:      logger,
		mongoClient: mongoClient,
		cache:       cache.NewCache(rds, "stats:"),
	}
}

// GetDashboardStats returns patient and doctor counts. The two counts run
// concurrently; results are cached briefly since every portal landing page
// requests them.
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	var cached DashboardStats
	if err := h.cache.Get(c.Context(), "dashboard", &cached); err == nil {
		return c.JSON(cached)
	}

	db := h.mongoClient.Database(h.config.MongoDBName)

	var stats DashboardStats
	g, ctx := errgroup.WithContext(c.Context())
	g.Go(func() error {
		count, err := db.Collection("patients").CountDocuments(ctx, bson.M{})
		stats.TotalPatients = count
		return err
	})
	g.Go(func() error {
		count, err := db.Collection("doctors").CountDocuments(ctx, bson.M{})
		stats.TotalDoctors = count
		return err
	})

	if err := g.Wait(); err != nil {
		h.logger.Error("failed to compute dashboard stats", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error", "error": err.Error()})
	}

	if err := h.cache.Set(c.Context(), "dashboard", stats, statsCacheTTL); err != nil {
		h.logger.Warn("failed to cache dashboard stats", zap.Error(err))
	}

	return c.JSON(stats)
}
