package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"fitlink/coach-app/internal/api"
	"fitlink/coach-app/internal/catalog"
	"fitlink/coach-app/internal/config"
	"fitlink/coach-app/internal/repository/mongo"
	"fitlink/coach-app/internal/service"
	"fitlink/coach-app/internal/storage"
)

func main() {
	log.Println("Starting Coach App Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureCatalogIndexes(ctx, appDB.Collection("exercises"))
		mongo.EnsureStatsIndexes(ctx, appDB.Collection("aluno_stats"))
		mongo.EnsureDraftIndexes(ctx, appDB.Collection("routine_drafts"))
		mongo.EnsureRoutineIndexes(ctx, appDB)
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	catalogRepo := mongo.NewMongoCatalogRepository(appDB)
	statsRepo := mongo.NewMongoStatsRepository(appDB)
	draftRepo := mongo.NewMongoDraftRepository(appDB)
	routineRepo := mongo.NewMongoRoutineRepository(appDB)

	// --- Catalog Cache ---
	// Warm eagerly so the first authoring request does not pay the fetch.
	// A failed warm is not fatal: lookups retry and degrade to
	// placeholders in the meantime.
	lookup := catalog.NewLookup(catalogRepo)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := lookup.Warm(ctx); err != nil {
			log.Printf("WARN: catalog cache warm-up failed: %v", err)
		}
	}()

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	catalogService := service.NewCatalogService(catalogRepo, lookup)
	professorService := service.NewProfessorService(userRepo)
	routineService := service.NewRoutineService(userRepo, routineRepo, draftRepo, lookup)
	statsService := service.NewStatsService(statsRepo)

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, authService, catalogService, professorService, routineService, statsService, fileStorage)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
