package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/onecare/backend/config"
	"github.com/onecare/backend/handlers"
	"github.com/onecare/backend/middleware"
	"github.com/onecare/backend/utils"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	mongoopts "go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

type App struct {
	Fiber       *fiber.App
	Mongo       *mongo.Client
	Redis       *redis.Client
	MinioClient *minio.Client
	Ctx         context.Context
	Config      *config.Config
	Logger      *zap.Logger
	Issuer      *utils.TokenIssuer
	Codes       *utils.CodeGenerator
}

func NewApp() (*App, error) {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %v", err)
	}
	if cfg.IsDevelopment() {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %v", err)
		}
	}

	// Setup MongoDB connection with retry logic
	var mongoClient *mongo.Client
	maxRetries := 5

	clientOpts := mongoopts.Client().
		ApplyURI(cfg.MongoDBURL).
		SetMaxPoolSize(10).
		SetMinPoolSize(2).
		SetServerSelectionTimeout(5 * time.Second)

	for i := 0; i < maxRetries; i++ {
		mongoClient, err = mongo.Connect(clientOpts)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = mongoClient.Ping(pingCtx, nil)
			cancel()
			if err == nil {
				break
			}
			mongoClient.Disconnect(ctx)
		}
		logger.Warn("failed to connect to mongodb, retrying...",
			zap.Error(err),
			zap.Int("attempt", i+1))
		time.Sleep(time.Second * time.Duration(i+1))
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb connection failed after %d attempts: %v", maxRetries, err)
	}

	// The only uniqueness the system enforces: users.email
	usersCollection := mongoClient.Database(cfg.MongoDBName).Collection("users")
	_, err = usersCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: mongoopts.Index().SetUnique(true),
	})
	if err != nil {
		logger.Error("failed to create unique email index", zap.Error(err))
	}

	// Setup Redis connection with retry logic
	redisOpt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis URL parsing failed: %v", err)
	}

	redisClient := redis.NewClient(redisOpt)
	maxRedisRetries := 5
	for i := 0; i < maxRedisRetries; i++ {
		_, err = redisClient.Ping(ctx).Result()
		if err == nil {
			break
		}
		logger.Warn("failed to connect to redis, retrying...",
			zap.Error(err),
			zap.Int("attempt", i+1))
		time.Sleep(time.Second * time.Duration(i+1))
	}
	if err != nil {
		return nil, fmt.Errorf("redis connection failed after %d attempts: %v", maxRedisRetries, err)
	}

	// Setup MinIO connection with retry logic
	var minioClient *minio.Client
	maxMinioRetries := 5
	for i := 0; i < maxMinioRetries; i++ {
		minioClient, err = minio.New(cfg.MinioEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
			Secure: cfg.MinioUseSSL,
		})
		if err != nil {
			logger.Warn("failed to create minio client, retrying...",
				zap.Error(err),
				zap.Int("attempt", i+1))
			time.Sleep(time.Second * time.Duration(i+1))
			continue
		}
		break
	}
	if err != nil {
		return nil, fmt.Errorf("minio connection failed after %d attempts: %v", maxMinioRetries, err)
	}

	// Create required buckets
	requiredBuckets := []string{"medical-reports", "profile-pics"}
	for _, bucket := range requiredBuckets {
		exists, err := minioClient.BucketExists(ctx, bucket)
		if err != nil {
			logger.Error("failed to check bucket existence",
				zap.String("bucket", bucket),
				zap.Error(err))
			continue
		}

		if exists {
			logger.Info("bucket verified", zap.String("bucket", bucket))
			continue
		}

		err = minioClient.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
		if err != nil && !strings.Contains(err.Error(), "already exists") {
			logger.Error("failed to create bucket",
				zap.String("bucket", bucket),
				zap.Error(err))
		} else {
			logger.Info("bucket created", zap.String("bucket", bucket))
		}
	}

	// Fiber setup with central error handling
	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			logger.Error("request error",
				zap.Error(err),
				zap.String("path", c.Path()),
				zap.Int("status", code))
			return c.Status(code).JSON(fiber.Map{
				"message": "Server error",
				"error":   err.Error(),
			})
		},
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		BodyLimit:    12 * 1024 * 1024,
	})

	fiberApp.Use(middleware.RecoveryMiddleware(logger))

	// CORS configuration
	fiberApp.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Request logging middleware
	fiberApp.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		logger.Info("request completed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
			zap.Duration("duration", duration),
			zap.Int("status", c.Response().StatusCode()),
		)
		return err
	})

	return &App{
		Fiber:       fiberApp,
		Mongo:       mongoClient,
		Redis:       redisClient,
		MinioClient: minioClient,
		Ctx:         ctx,
		Config:      cfg,
		Logger:      logger,
		Issuer:      utils.NewTokenIssuer(redisClient, cfg.JWTSecret, cfg.SessionDuration),
		Codes:       utils.NewCodeGenerator(),
	}, nil
}

func (a *App) setupRoutes() {
	authMiddleware := middleware.NewAuthMiddleware(a.Issuer, a.Logger)

	authHandler := handlers.NewAuthHandler(a.Config, a.Redis, a.Logger, a.Mongo, a.Issuer)
	patientHandler := handlers.NewPatientHandler(a.Config, a.Logger, a.Mongo)
	doctorHandler := handlers.NewDoctorHandler(a.Config, a.Logger, a.Mongo)
	appointmentHandler := handlers.NewAppointmentHandler(a.Config, a.Logger, a.Mongo)
	billingHandler := handlers.NewBillingHandler(a.Config, a.Logger, a.Mongo, a.Codes)
	serviceHandler := handlers.NewServiceHandler(a.Config, a.Logger, a.Mongo)
	listingHandler := handlers.NewListingHandler(a.Config, a.Logger, a.Mongo)
	dashboardHandler := handlers.NewDashboardHandler(a.Config, a.Logger, a.Mongo, a.Redis)
	reportHandler := handlers.NewReportHandler(a.Config, a.Logger, a.Mongo, a.MinioClient)
	userHandler := handlers.NewUserHandler(a.Config, a.Logger, a.Mongo, a.MinioClient)

	// Auth routes
	a.Fiber.Post("/login", authHandler.Login)
	a.Fiber.Post("/signup", authHandler.Signup)

	// Patient routes
	a.Fiber.Post("/patients", patientHandler.CreatePatient)
	a.Fiber.Get("/patients", patientHandler.ListPatients)
	a.Fiber.Get("/patients/:id", patientHandler.GetPatient)
	a.Fiber.Put("/patients/:id", patientHandler.UpdatePatient)
	a.Fiber.Delete("/patients/:id", patientHandler.DeletePatient)

	// Doctor routes
	a.Fiber.Post("/doctors", doctorHandler.CreateDoctor)
	a.Fiber.Get("/doctors", doctorHandler.ListDoctors)
	a.Fiber.Get("/doctors/:id", doctorHandler.GetDoctor)
	a.Fiber.Put("/doctors/:id", doctorHandler.UpdateDoctor)
	a.Fiber.Delete("/doctors/:id", doctorHandler.DeleteDoctor)

	// Appointment routes
	a.Fiber.Post("/appointments", appointmentHandler.CreateAppointment)
	a.Fiber.Get("/appointments", appointmentHandler.ListAppointments)
	a.Fiber.Get("/appointments/:id", appointmentHandler.GetAppointment)
	a.Fiber.Put("/appointments/:id/cancel", appointmentHandler.CancelAppointment)
	a.Fiber.Put("/appointments/:id", appointmentHandler.UpdateAppointment)
	a.Fiber.Delete("/appointments/:id", appointmentHandler.DeleteAppointment)

	// Bill routes
	a.Fiber.Post("/bills", billingHandler.CreateBill)
	a.Fiber.Get("/bills", billingHandler.ListBills)
	a.Fiber.Get("/bills/:id", billingHandler.GetBill)
	a.Fiber.Put("/bills/:id", billingHandler.UpdateBill)
	a.Fiber.Delete("/bills/:id", billingHandler.DeleteBill)

	// Service catalog routes
	a.Fiber.Get("/api/services", serviceHandler.ListServices)
	a.Fiber.Post("/api/services", serviceHandler.CreateService)
	a.Fiber.Put("/api/services/toggle/:id", serviceHandler.ToggleService)
	a.Fiber.Put("/api/services/:id", serviceHandler.UpdateService)
	a.Fiber.Delete("/api/services/:id", serviceHandler.DeleteService)

	// Listing catalog routes
	a.Fiber.Get("/api/listings", listingHandler.ListListings)
	a.Fiber.Post("/api/listings", listingHandler.CreateListing)
	a.Fiber.Put("/api/listings/:id", listingHandler.UpdateListing)
	a.Fiber.Delete("/api/listings/:id", listingHandler.DeleteListing)

	// Dashboard
	a.Fiber.Get("/dashboard-stats", dashboardHandler.GetDashboardStats)

	// Encounter report routes
	a.Fiber.Post("/encounters/:id/reports", reportHandler.UploadReport)
	a.Fiber.Get("/encounters/:id/reports", reportHandler.ListReports)
	a.Fiber.Get("/encounters/:id/reports/:reportId", reportHandler.DownloadReport)
	a.Fiber.Delete("/encounters/:id/reports/:reportId", reportHandler.DeleteReport)

	// Authenticated profile routes
	api := a.Fiber.Group("/api/user", authMiddleware.Handler())
	api.Get("/profile", userHandler.GetProfile)
	api.Put("/profile", userHandler.UpdateProfile)
	api.Post("/profile/picture", userHandler.UploadProfilePic)

	a.Fiber.Get("/api/media/profile-pics/:filename", userHandler.GetProfilePic)
}

func (a *App) Start() error {
	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	a.setupRoutes()

	// Start server in a goroutine
	go func() {
		if err := a.Fiber.Listen(":" + a.Config.ServerPort); err != nil {
			a.Logger.Fatal("failed to start server",
				zap.Error(err),
				zap.String("port", a.Config.ServerPort))
		}
	}()

	a.Logger.Info("server started",
		zap.String("port", a.Config.ServerPort))

	// Wait for interrupt signal
	<-sigChan
	a.Logger.Info("shutting down server...")

	// Cleanup
	if err := a.Fiber.Shutdown(); err != nil {
		a.Logger.Error("error during server shutdown", zap.Error(err))
	}
	if err := a.Mongo.Disconnect(a.Ctx); err != nil {
		a.Logger.Error("error closing mongodb connection", zap.Error(err))
	}
	if err := a.Redis.Close(); err != nil {
		a.Logger.Error("error closing redis connection", zap.Error(err))
	}
	if err := a.Logger.Sync(); err != nil {
		log.Printf("error syncing logger: %v", err)
	}

	return nil
}

func main() {
	app, err := NewApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Start(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}
