// Prism Core - Addressable Lighting Presentation Service
//
// Prism Core sits between the hardware service (reachable over MQTT) and
// UI clients (REST + WebSocket). It owns the device snapshot, scope
// selection and mutation semantics, zone projection, layout geometry,
// and frame rendering for previews.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/prismled/prism-core/migrations"

	"github.com/prismled/prism-core/internal/api"
	"github.com/prismled/prism-core/internal/infrastructure/config"
	"github.com/prismled/prism-core/internal/infrastructure/database"
	"github.com/prismled/prism-core/internal/infrastructure/logging"
	"github.com/prismled/prism-core/internal/infrastructure/mqtt"
	"github.com/prismled/prism-core/internal/inventory"
	"github.com/prismled/prism-core/internal/stream"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Prism Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Device inventory and persisted scope config
	registry := inventory.NewRegistry(log)
	configRepo := inventory.NewSQLiteRepository(db.DB)

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Set up MQTT logging callbacks
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	topics := mqtt.Topics{Prefix: cfg.MQTT.TopicPrefix}
	qos := byte(cfg.MQTT.QoS)

	// Colour stream distributor over the hardware frame topics. The API
	// server calls EnsureListening when the first consumer appears.
	source := stream.NewMQTTSource(mqttClient, topics, qos, log)
	distributor := stream.New(source, log)
	defer func() {
		log.Info("shutting down colour stream")
		distributor.Shutdown()
	}()

	// Start REST API + WebSocket server
	apiServer, err := api.New(api.Deps{
		Config:     cfg.API,
		WS:         cfg.WebSocket,
		Logger:     log,
		Registry:   registry,
		ConfigRepo: configRepo,
		MQTT:       mqttClient,
		Topics:     topics,
		QoS:        qos,
		Stream:     distributor,
		Throttle:   cfg.GetThrottleInterval(),
		PixelRatio: cfg.Render.PixelRatio,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()
	log.Info("API server started",
		"addr", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
	)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	// Ask the hardware service to announce its devices. The retained
	// snapshot topic covers restarts; this covers a hardware service
	// that started after us.
	if pubErr := mqttClient.Publish(topics.ScanRequest(), []byte("{}"), qos, false); pubErr != nil {
		log.Warn("initial scan request failed", "error", pubErr)
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. Colour stream distributor
	// 3. MQTT
	// 4. Database

	log.Info("Prism Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses PRISM_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("PRISM_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	return nil
}
