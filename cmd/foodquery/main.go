package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/saltyorg/foodquery/internal/config"
	"github.com/saltyorg/foodquery/internal/database"
	"github.com/saltyorg/foodquery/internal/logging"
	"github.com/saltyorg/foodquery/internal/monitor"
	"github.com/saltyorg/foodquery/internal/web"
	"github.com/saltyorg/foodquery/internal/web/handlers"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	defaultPort   = 3000
	defaultDBPath = "./database.sqlite"
)

// CLI flags
var (
	port          int
	bind          string
	allowSubnet   string
	dbPath        string
	logFile       string
	verbosity     int
	probeSchedule string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "foodquery",
		Short: "Foodquery - read-only restaurant and dish query service",
		Long:  `Foodquery serves restaurants and dishes from a SQLite database as JSON over HTTP.`,
		RunE:  run,
	}

	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", defaultDBPath, "SQLite database path (or set DB_PATH env var)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path (default: next to the database)")

	rootCmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP server port (or set PORT env var, default 3000)")
	rootCmd.Flags().StringVarP(&bind, "bind", "b", "", "IP address to bind to (e.g., 127.0.0.1, 0.0.0.0)")
	rootCmd.Flags().StringVarP(&allowSubnet, "allow-subnet", "a", "", "CIDR subnet allowed to connect (e.g., 192.168.1.0/24)")
	rootCmd.Flags().StringVar(&probeSchedule, "probe-schedule", monitor.DefaultSchedule, "Cron schedule for store health probes (empty disables)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "init-db",
		Short: "Create the restaurants and dishes tables if they do not exist",
		RunE:  initDB,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("foodquery %s (commit: %s, built: %s)\n", version, commit, date)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveDBPath applies the DB_PATH env var when the flag was left at its default
func resolveDBPath() {
	if dbPath == defaultDBPath {
		if envDB := os.Getenv("DB_PATH"); envDB != "" {
			dbPath = envDB
		}
	}
}

func setupLogging() {
	path := logFile
	if path == "" {
		path = logging.FilePathForDB(dbPath)
	}
	logging.Apply(logging.LevelForVerbosity(verbosity), config.NewLoader(config.EnvSettings{}), path)
}

func initDB(cmd *cobra.Command, args []string) error {
	resolveDBPath()
	setupLogging()

	db, err := database.New(dbPath, database.Options{})
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Migrate(cmd.Context())
}

func run(cmd *cobra.Command, args []string) error {
	// Check for PORT env var if flag not set
	if port == 0 {
		if envPort := os.Getenv("PORT"); envPort != "" {
			if _, err := fmt.Sscanf(envPort, "%d", &port); err != nil {
				return fmt.Errorf("invalid PORT environment variable %q: %w", envPort, err)
			}
		}
	}
	if port == 0 {
		port = defaultPort
	}

	resolveDBPath()

	// Validate bind address if provided
	if bind != "" {
		if ip := net.ParseIP(bind); ip == nil {
			return fmt.Errorf("invalid bind address: %s", bind)
		}
	}

	// Validate and parse allow-subnet if provided
	var allowedNet *net.IPNet
	if allowSubnet != "" {
		_, parsedNet, err := net.ParseCIDR(allowSubnet)
		if err != nil {
			return fmt.Errorf("invalid allow-subnet CIDR: %s", allowSubnet)
		}
		allowedNet = parsedNet
	}

	setupLogging()

	instanceID := uuid.NewString()

	log.Info().
		Str("version", version).
		Str("instance_id", instanceID).
		Int("port", port).
		Str("bind", bind).
		Str("allow_subnet", allowSubnet).
		Str("database", dbPath).
		Msg("Starting Foodquery")

	// The store is opened read-only and checked before the listener starts,
	// so no request can observe a handle that is not ready.
	db, err := database.New(dbPath, database.Options{ReadOnly: true})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := db.Verify(cmd.Context()); err != nil {
		log.Fatal().Err(err).Msg("Database is missing required tables")
	}

	mon := monitor.New(db, dbPath, probeSchedule)
	if err := mon.Start(); err != nil {
		log.Warn().Err(err).Msg("Store monitor started with errors")
	}
	defer mon.Stop()

	server := web.NewServer(db, mon, web.Options{
		Port:       port,
		Bind:       bind,
		AllowedNet: allowedNet,
		Timeouts:   config.LoadTimeouts(config.NewLoader(config.EnvSettings{})),
	})
	server.Handlers().SetVersionInfo(handlers.VersionInfo{
		Version:    version,
		Commit:     commit,
		InstanceID: instanceID,
	})

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}

	log.Info().Msg("Foodquery stopped")
	return nil
}
