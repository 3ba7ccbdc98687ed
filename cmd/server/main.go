/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the funding eligibility server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, flags)
  2. Build the logger
  3. Load thresholds (defaults or THRESHOLDS_FILE)
  4. Open the SQLite store and load reference data
     - sample courses (SEED_SAMPLES) and COURSES_FILE
     - postcode mapping (POSTCODE_MAP_FILE, written by cmd/preprocess)
  5. Create API handler and router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides PORT)
  -db      SQLite database path (overrides DB_PATH)
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (SERVER_SHUTDOWN_TIMEOUT)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/funding.db"

  # Custom thresholds and postcode data
  THRESHOLDS_FILE=config/thresholds.yaml POSTCODE_MAP_FILE=data/postcodes.json ./server

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - cmd/preprocess: Builds the postcode mapping
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/warp/funding-engine/api"
	"github.com/warp/funding-engine/config"
	"github.com/warp/funding-engine/courses"
	"github.com/warp/funding-engine/factory"
	"github.com/warp/funding-engine/funding"
	"github.com/warp/funding-engine/logging"
	"github.com/warp/funding-engine/postcode"
	"github.com/warp/funding-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	flag.Parse()
	cfg.Port = *port
	cfg.DBPath = *dbPath

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	handler, store, err := setup(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	defer store.Close()

	server := &http.Server{
		Addr: cfg.Addr(),
		Handler: api.NewRouter(handler, api.RouterConfig{
			AllowedOrigins:  cfg.CORSAllowOrigins,
			RateLimitPerMin: cfg.RateLimitPerMin,
		}),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting", zap.String("addr", server.Addr), zap.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ServerShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// setup opens the store, loads reference data and builds the handler.
// The caller owns the returned store.
func setup(ctx context.Context, cfg config.Config, logger *zap.Logger) (*api.Handler, *sqlite.Store, error) {
	th := funding.DefaultThresholds()
	if cfg.ThresholdsFile != "" {
		loaded, err := factory.LoadThresholdsFile(cfg.ThresholdsFile)
		if err != nil {
			return nil, nil, err
		}
		th = loaded
		logger.Info("thresholds loaded", zap.String("file", cfg.ThresholdsFile))
	}

	validator, err := funding.NewValidator(th)
	if err != nil {
		return nil, nil, err
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	resolver, err := loadReferenceData(ctx, cfg, store, validator, logger)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	assessor, err := funding.NewAssessor(th, funding.WithAuthorities(resolver))
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	handler := api.NewHandler(assessor, validator, courses.NewCatalogue(store), resolver,
		api.WithLogger(logger),
		api.WithMetrics(api.NewMetrics()),
		api.WithDatabase(store),
	)
	return handler, store, nil
}

func loadReferenceData(ctx context.Context, cfg config.Config, store *sqlite.Store, v *funding.Validator, logger *zap.Logger) (*postcode.Resolver, error) {
	catalogue := courses.NewCatalogue(store)
	if cfg.SeedSamples {
		if err := catalogue.Seed(ctx); err != nil {
			return nil, fmt.Errorf("seed courses: %w", err)
		}
	}
	if cfg.CoursesFile != "" {
		imported, err := factory.LoadCoursesFile(cfg.CoursesFile, v)
		if err != nil {
			return nil, err
		}
		if err := catalogue.SaveAll(ctx, imported); err != nil {
			return nil, fmt.Errorf("import courses: %w", err)
		}
		logger.Info("courses imported", zap.String("file", cfg.CoursesFile), zap.Int("count", len(imported)))
	}

	if cfg.PostcodeMapFile != "" {
		n, err := importPostcodeMap(ctx, cfg.PostcodeMapFile, store)
		if err != nil {
			return nil, err
		}
		logger.Info("postcode map imported", zap.String("file", cfg.PostcodeMapFile), zap.Int("count", n))
	}

	resolver, err := postcode.FromStore(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("load postcodes: %w", err)
	}
	if resolver.Len() == 0 {
		logger.Warn("no postcode mapping loaded; authorities will not be reported")
	}
	return resolver, nil
}

func importPostcodeMap(ctx context.Context, path string, store *sqlite.Store) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open postcode map: %w", err)
	}
	defer f.Close()

	raw, err := postcode.LoadJSON(f)
	if err != nil {
		return 0, err
	}
	entries := make(map[string]string, len(raw))
	for pc, label := range raw {
		if key := postcode.Normalize(pc); key != "" {
			entries[key] = label
		}
	}
	if err := store.SaveAuthorities(ctx, entries); err != nil {
		return 0, fmt.Errorf("save postcode map: %w", err)
	}
	return len(entries), nil
}
