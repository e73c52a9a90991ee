package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/DevonyRamirez/prosperia-challenge-mini/api"
	"github.com/DevonyRamirez/prosperia-challenge-mini/internal/auth"
	"github.com/DevonyRamirez/prosperia-challenge-mini/internal/db"
	"github.com/DevonyRamirez/prosperia-challenge-mini/internal/models"
	"github.com/DevonyRamirez/prosperia-challenge-mini/internal/storage"
	"github.com/DevonyRamirez/prosperia-challenge-mini/internal/store"
	"github.com/DevonyRamirez/prosperia-challenge-mini/internal/textextract"
)

func main() {
	// Load configuration
	config, err := loadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize JWT
	if err := auth.Init(config.Auth); err != nil {
		log.Fatalf("Failed to initialize auth: %v (set auth.password_hash and auth.jwt_secret in config.yaml, or the AUTH_PASSWORD_HASH and JWT_SECRET environment variables)", err)
	}
	log.Println("JWT authentication initialized")

	// Initialize database connection pool; without it receipts live in memory
	var receipts store.Store
	if err := db.Init(); err != nil {
		log.Printf("Warning: Database not available: %v", err)
		log.Println("Running with in-memory persistence")
		receipts = store.NewMemory()
	} else {
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pg, err := store.NewPostgres(ctx, db.GetPool())
		cancel()
		if err != nil {
			log.Fatalf("Failed to prepare receipts table: %v", err)
		}
		receipts = pg
		log.Println("Database connection pool initialized")
	}

	// Initialize MinIO storage
	if err := storage.Init(); err != nil {
		log.Printf("Warning: MinIO storage not available: %v", err)
		log.Println("Original files will not be archived")
	} else {
		log.Println("MinIO storage initialized")
	}

	// Build the text-extraction engine
	extractor, err := textextract.New(config.Extraction)
	if err != nil {
		log.Fatalf("Failed to build extraction engine: %v", err)
	}

	// Create API handler
	handler := api.NewHandler(config, receipts, extractor)
	router := handler.SetupRoutes()

	// Wrap router with JWT middleware (skips /health and /api/login)
	protectedRouter := auth.JWTMiddleware(router)

	// Start server
	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	log.Printf("Starting Receipt OCR Service v%s on %s", api.Version, addr)
	log.Printf("Extraction engine: %s", config.Extraction.Engine)
	log.Printf("Database: %v", db.Pool != nil)
	log.Printf("Storage: %v", storage.Enabled())
	log.Printf("Endpoints:")
	log.Printf("  POST http://%s/api/login            - Authenticate", addr)
	log.Printf("  POST http://%s/api/process-receipt  - Process receipt (requires JWT)", addr)
	log.Printf("  GET  http://%s/api/receipts         - List receipts (requires JWT)", addr)
	log.Printf("  GET  http://%s/api/receipt/{id}     - Get single receipt (requires JWT)", addr)
	log.Printf("  DELETE http://%s/api/receipt/{id}   - Delete receipt (requires JWT)", addr)
	log.Printf("  GET  http://%s/api/stats            - Get monthly stats (requires JWT)", addr)
	log.Printf("  GET  http://%s/health               - Health check", addr)

	if err := http.ListenAndServe(addr, protectedRouter); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func loadConfig(path string) (*models.Config, error) {
	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var config models.Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables if present
	if port := os.Getenv("PORT"); port != "" {
		fmt.Sscanf(port, "%d", &config.Port)
	}
	if host := os.Getenv("HOST"); host != "" {
		config.Host = host
	}
	if engine := os.Getenv("EXTRACTION_ENGINE"); engine != "" {
		config.Extraction.Engine = engine
	}
	if language := os.Getenv("EXTRACTION_LANGUAGE"); language != "" {
		config.Extraction.Language = language
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Extraction.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		config.Extraction.Gemini.Model = model
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.Extraction.OpenAI.APIKey = apiKey
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.Extraction.OpenAI.BaseURL = baseURL
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		config.Extraction.OpenAI.Model = model
	}
	if username := os.Getenv("AUTH_USERNAME"); username != "" {
		config.Auth.Username = username
	}
	if hash := os.Getenv("AUTH_PASSWORD_HASH"); hash != "" {
		config.Auth.PasswordHash = hash
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Auth.JWTSecret = secret
	}

	return &config, nil
}
