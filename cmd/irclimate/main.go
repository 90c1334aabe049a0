// irclimate runs infrared-controlled air conditioners over MQTT.
//
// It reads the device configuration (climate units, IR blasters, IR
// receivers and room sensors), validates it the same way the firmware
// generator does, and drives each unit from MQTT commands and the HTTP API.
// Unit state is kept in SQLite, optionally mirrored to InfluxDB, and
// exported to Prometheus.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nerrad567/gray-logic-irclimate/internal/api"
	"github.com/nerrad567/gray-logic-irclimate/internal/auth"
	"github.com/nerrad567/gray-logic-irclimate/internal/bridges/ir"
	"github.com/nerrad567/gray-logic-irclimate/internal/codegen"
	"github.com/nerrad567/gray-logic-irclimate/internal/component"
	"github.com/nerrad567/gray-logic-irclimate/internal/device"
	"github.com/nerrad567/gray-logic-irclimate/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-irclimate/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-irclimate/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-irclimate/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-irclimate/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-irclimate/internal/platforms"
	"github.com/nerrad567/gray-logic-irclimate/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// pruneInterval is how often old state history is deleted.
const pruneInterval = 6 * time.Hour

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := dispatch(ctx, os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

const usage = "usage: irclimate [migrate-down | token [-scope read|control] [-ttl duration] <subject>]"

// dispatch runs the daemon, or one of the maintenance commands when args
// name one.
func dispatch(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return run(ctx)
	}
	switch args[0] {
	case "migrate-down":
		if len(args) != 1 {
			return errors.New(usage)
		}
		return migrateDown(ctx)
	case "token":
		return issueToken(args[1:], stdout)
	default:
		return fmt.Errorf("unknown command %q (%s)", args[0], usage)
	}
}

// run is the application logic, separated from main for testability.
// It returns nil on clean shutdown.
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // startup sequence: each step depends on the previous
	log := logging.Default()
	log.Info("starting irclimate",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Validate the device file before touching any external system.
	instances, err := loadDevices(cfg.Devices.File)
	if err != nil {
		return err
	}
	log.Info("device configuration loaded",
		"path", cfg.Devices.File,
		"instances", len(instances.Instances()),
	)

	db, err := database.Open(database.FromConfig(cfg.Database))
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

	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	deviceRegistry := device.NewRegistry(device.NewSQLiteRepository(db.DB))
	deviceRegistry.SetLogger(log.Component("device"))
	if refreshErr := deviceRegistry.RefreshCache(ctx); refreshErr != nil {
		return fmt.Errorf("loading device registry: %w", refreshErr)
	}
	log.Info("device registry initialised", "devices", deviceRegistry.GetDeviceCount())

	stateHistory := device.NewSQLiteStateHistoryRepository(db.DB)
	if retention := cfg.GetHistoryRetention(); retention > 0 {
		go pruneHistoryLoop(ctx, stateHistory, retention, pruneInterval, log)
	}

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
	mqttClient.SetLogger(log.Component("mqtt"))
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB, cfg.Site.ID)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	metrics := ir.NewMetricsCollector()
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		metrics,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := ir.Options{
		Instances:    instances,
		MQTT:         mqttClient,
		Factories:    platforms.Factories(),
		Devices:      deviceRegistry,
		History:      stateHistory,
		Metrics:      metrics,
		RestoreState: cfg.Devices.RestoreState,
		BridgeID:     cfg.Site.ID + "-ir",
		Version:      version,
		Logger:       log.Component("ir"),
	}
	// A nil *influxdb.Client must not become a non-nil interface.
	if influxClient != nil {
		opts.Telemetry = influxClient
	}

	bridge, err := ir.NewBridge(opts)
	if err != nil {
		return fmt.Errorf("creating IR bridge: %w", err)
	}
	if startErr := bridge.Start(ctx); startErr != nil {
		bridge.Stop()
		return fmt.Errorf("starting IR bridge: %w", startErr)
	}
	defer func() {
		log.Info("stopping IR bridge")
		bridge.Stop()
	}()

	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
		bridge.SetConnected(true)
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
		bridge.SetConnected(false)
	})

	apiServer, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Security: cfg.Security,
		Logger:   log.Component("api"),
		Devices:  deviceRegistry,
		History:  stateHistory,
		Bridge:   bridge,
		MQTT:     mqttClient,
		Gatherer: promRegistry,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal",
		"devices", len(bridge.DeviceIDs()),
		"api", apiServer.Addr(),
	)

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("irclimate stopped")
	return nil
}

// migrateDown rolls the database back by one migration and exits.
func migrateDown(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log := logging.New(cfg.Logging, version)

	db, err := database.Open(database.FromConfig(cfg.Database))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close() //nolint:errcheck // process exits next

	if err := db.MigrateDown(ctx, migrations.FS); err != nil {
		return fmt.Errorf("rolling back migration: %w", err)
	}
	applied, pending, err := db.GetMigrationStatus(ctx, migrations.FS)
	if err != nil {
		return fmt.Errorf("reading migration status: %w", err)
	}
	log.Info("migration rolled back",
		"path", cfg.Database.Path,
		"applied", len(applied),
		"pending", len(pending),
	)
	return nil
}

// issueToken prints a signed API token for a client.
func issueToken(args []string, stdout io.Writer) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	scopeFlag := fs.String("scope", string(auth.ScopeControl), "token scope: read or control")
	ttl := fs.Duration("ttl", cfg.GetAccessTokenTTL(), "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New(usage)
	}
	scope, err := auth.ParseScope(*scopeFlag)
	if err != nil {
		return err
	}

	token, err := auth.GenerateToken(fs.Arg(0), scope, cfg.Security.JWT.Secret, cfg.Security.JWT.Issuer, *ttl)
	if err != nil {
		return fmt.Errorf("issuing token: %w", err)
	}
	_, err = fmt.Fprintln(stdout, token)
	return err
}

// getConfigPath returns the configuration file path.
// Uses GRAYLOGIC_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAYLOGIC_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// loadDevices validates the device file and runs code generation into a
// fresh instance registry. The rendered firmware is discarded; the bridge
// builds its units from the registry.
func loadDevices(path string) (*codegen.Registry, error) {
	doc, err := component.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading devices: %w", err)
	}
	catalog, err := platforms.Catalog()
	if err != nil {
		return nil, fmt.Errorf("building platform catalogue: %w", err)
	}
	registry := codegen.NewRegistry()
	if _, err := component.Build(catalog, doc, registry); err != nil {
		return nil, fmt.Errorf("invalid device configuration %s: %w", path, err)
	}
	return registry, nil
}

// historyPruner deletes old state history.
type historyPruner interface {
	PruneHistory(ctx context.Context, olderThan time.Duration) (int64, error)
}

// pruneHistoryLoop prunes once at start and then every interval until ctx
// is cancelled.
func pruneHistoryLoop(ctx context.Context, repo historyPruner, retention, interval time.Duration, log *logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		removed, err := repo.PruneHistory(ctx, retention)
		switch {
		case err != nil && ctx.Err() == nil:
			log.Warn("state history prune failed", "error", err)
		case removed > 0:
			log.Info("state history pruned", "removed", removed, "retention", retention.String())
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// healthCheck verifies all infrastructure connections are healthy.
// influxClient may be nil when InfluxDB is disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
