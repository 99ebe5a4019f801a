package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"sitedocs/internal/auth"
	"sitedocs/internal/config"
	"sitedocs/internal/filekind"
	"sitedocs/internal/handler"
	"sitedocs/internal/middleware"
	"sitedocs/internal/repository/postgres"
	"sitedocs/internal/service/docstore"
	"sitedocs/internal/service/forge"
	"sitedocs/internal/storage"
	"sitedocs/migrations"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create JWT verifier
	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected")

	// Apply schema migrations for this environment's table prefix
	if err := postgres.ApplyMigrations(ctx, pool, migrations.FS, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	// Create repositories
	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	projectRepo := postgres.NewProjectRepository(repoConfig)
	docRepo := postgres.NewDocumentRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Blob store for document binaries
	blobStore, err := storage.NewMinioService(&cfg.Minio)
	if err != nil {
		log.Fatalf("Failed to create blob store: %v", err)
	}
	if err := blobStore.EnsureBucket(ctx); err != nil {
		log.Fatalf("Failed to ensure blob bucket: %v", err)
	}

	// File kind registry for viewer dispatch
	kinds, err := filekind.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load file kind registry: %v", err)
	}

	// Create document store services
	validator := docstore.NewResourceValidator(projectRepo, docRepo)
	projectService := docstore.NewProjectService(projectRepo, docRepo, blobStore, txManager, logger)
	docService := docstore.NewDocumentService(docRepo, blobStore, txManager, validator, logger)
	treeService := docstore.NewTreeService(docRepo, validator, logger)

	// Forge integration services
	forgeClient := forge.NewClient(&cfg.Forge, logger)
	ossService := forge.NewOSSService(&cfg.Forge, forgeClient, logger)
	derivativeService := forge.NewDerivativeService(&cfg.Forge, forgeClient, logger)

	// Create handlers
	projectHandler := handler.NewProjectHandler(projectService, logger)
	docHandler := handler.NewDocumentHandler(docService, kinds, logger)
	treeHandler := handler.NewTreeHandler(treeService, logger)
	forgeHandler := handler.NewForgeHandler(forgeClient, ossService, derivativeService, docService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", handler.HealthCheck)

	// Project routes
	mux.HandleFunc("GET /api/projects", projectHandler.ListProjects)
	mux.HandleFunc("POST /api/projects", projectHandler.CreateProject)
	mux.HandleFunc("GET /api/projects/stats", projectHandler.GetStats) // Must come before {id} route
	mux.HandleFunc("GET /api/projects/{id}", projectHandler.GetProject)
	mux.HandleFunc("PATCH /api/projects/{id}", projectHandler.UpdateProject)
	mux.HandleFunc("DELETE /api/projects/{id}", projectHandler.DeleteProject)

	// Project tree endpoint
	mux.HandleFunc("GET /api/projects/{id}/tree", treeHandler.GetTree)

	// Document routes
	mux.HandleFunc("POST /api/documents", docHandler.CreateDocument)
	mux.HandleFunc("POST /api/documents/upload", docHandler.UploadFile) // Must come before {id} route
	mux.HandleFunc("GET /api/documents/{id}", docHandler.GetDocument)
	mux.HandleFunc("PATCH /api/documents/{id}", docHandler.UpdateDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", docHandler.DeleteDocument)
	mux.HandleFunc("GET /api/documents/{id}/viewer", docHandler.GetViewer)

	// Forge routes
	mux.HandleFunc("GET /api/forge/token", forgeHandler.GetToken)
	mux.HandleFunc("POST /api/forge/upload", forgeHandler.Upload)
	mux.HandleFunc("POST /api/forge/translate", forgeHandler.Translate)
	mux.HandleFunc("GET /api/forge/translate", forgeHandler.GetManifest)

	// Build middleware chain
	var srvHandler http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	srvHandler = middleware.Auth(jwtVerifier)(srvHandler)
	srvHandler = middleware.Recovery(logger)(srvHandler)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	srvHandler = corsHandler.Handler(srvHandler)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srvHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute, // long enough for uploads and awaited translations
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
