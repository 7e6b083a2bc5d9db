package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	adapterHTTP "github.com/innerflow/flow-engine/internal/adapters/handler/http"
	"github.com/innerflow/flow-engine/internal/adapters/llm"
	"github.com/innerflow/flow-engine/internal/adapters/repository"
	"github.com/innerflow/flow-engine/internal/core/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	dbHost := getenvDefault("DB_HOST", "localhost")
	dbPort := getenvDefault("DB_PORT", "5432")
	serverPort := getenvDefault("PORT", "8081")

	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		log.Fatal("Critical: GEMINI_API_KEY must be set")
	}

	geminiModel := getenvDefault("GEMINI_MODEL", llm.DefaultModel)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPass, dbHost, dbPort, dbName)

	log.Println("Connecting to database...")

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		log.Fatalf("Critical: Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Println("Database connected successfully.")

	geminiClient, err := llm.NewGeminiClient(context.Background(), geminiKey, geminiModel)
	if err != nil {
		log.Fatalf("Critical: Failed to create Gemini client: %v", err)
	}
	defer geminiClient.Close()

	userRepo := repository.NewPostgresUserRepository(db)
	logRepo := repository.NewPostgresDailyLogRepository(db)
	analysisRepo := repository.NewPostgresAnalysisRepository(db)

	analysisService := services.NewAnalysisService(userRepo, logRepo, analysisRepo, geminiClient, nil)

	router := adapterHTTP.NewBatchRouter(adapterHTTP.BatchRouterDependencies{
		BatchHandler: adapterHTTP.NewBatchHandler(analysisService),
	})

	srv := &http.Server{
		Addr:        ":" + serverPort,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		// Batch runs hold the connection open while every user in the
		// cohort goes through the model, so the write timeout is long.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("InnerFlow analysis service running on http://localhost:%s", serverPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	log.Println("Server stopped gracefully.")
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
