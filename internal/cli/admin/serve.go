package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/docsense-ai/docsense/internal/api/handlers"
	"github.com/docsense-ai/docsense/internal/config"
	"github.com/docsense-ai/docsense/internal/database"
	"github.com/docsense-ai/docsense/internal/index/pgvector"
	"github.com/docsense-ai/docsense/internal/jobs"
	"github.com/docsense-ai/docsense/internal/loader"
	"github.com/docsense-ai/docsense/internal/openai"
	"github.com/docsense-ai/docsense/internal/repository"
	"github.com/docsense-ai/docsense/internal/retry"
	"github.com/docsense-ai/docsense/internal/server"
	"github.com/docsense-ai/docsense/internal/service"
	"github.com/docsense-ai/docsense/internal/storage"
	"github.com/docsense-ai/docsense/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the docsense API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.HasOpenAI() {
		return fmt.Errorf("DOCSENSE_OPENAI_API_KEY is required: embeddings and summaries need a model provider")
	}

	// Initialize Sentry with tracing if a DSN is set
	if cfg.SentryDSN != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	documentRepo := repository.NewDocumentRepository(pool)
	jobStore := repository.NewBatchJobRepository(pool)
	vectorIndex := pgvector.New(pool)

	var blobs service.BlobStore
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		blobs = s3Client
	} else {
		log.Println("no S3 configured, document text is held in memory and lost on restart")
		blobs = storage.NewMemoryBlobStore()
	}

	modelClient := openai.NewClient(cfg.OpenAIAPIKey)
	embedder := service.NewEmbedder(modelClient)

	chunkCfg := service.ChunkConfig{
		MaxChars:  cfg.ChunkMaxChars,
		Overlap:   cfg.ChunkOverlap,
		MaxChunks: cfg.ChunkMaxCount,
	}

	documentSvc := service.NewDocumentService(documentRepo, blobs, loader.NewTextExtractor(), embedder, vectorIndex, chunkCfg)
	searchSvc := service.NewSearchService(embedder, vectorIndex)
	answerSvc := service.NewAnswerService(searchSvc, modelClient)
	summarySvc := service.NewSummaryService(documentRepo, blobs, modelClient)
	statsSvc := service.NewStatsService(documentRepo, vectorIndex, embedder)

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.JobRetryAttempts
	orchestrator := jobs.NewOrchestrator(jobStore, summarySvc, jobs.Config{
		Workers:       cfg.JobWorkers,
		RatePerMinute: cfg.JobRatePerMinute,
		Retry:         retryCfg,
	})

	routerCfg := server.RouterConfig{
		APIKey:           cfg.APIKey,
		DocumentHandler:  handlers.NewDocumentHandler(documentSvc),
		SearchHandler:    handlers.NewSearchHandler(searchSvc, answerSvc),
		SummarizeHandler: handlers.NewSummarizeHandler(summarySvc),
		JobHandler:       handlers.NewJobHandler(orchestrator),
		StatsHandler:     handlers.NewStatsHandler(statsSvc),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := orchestrator.Shutdown(shutdownCtx); err != nil {
		log.Printf("job orchestrator did not drain in time: %v", err)
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func runMigrations(databaseURL string) error {
	// golang-migrate needs a database/sql connection
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
