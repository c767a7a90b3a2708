package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/TsarRusi/mindmate/internal/api"
	"github.com/TsarRusi/mindmate/internal/bot"
	"github.com/TsarRusi/mindmate/internal/messaging"
	"github.com/TsarRusi/mindmate/internal/provider"
	"github.com/TsarRusi/mindmate/internal/router"
	"github.com/TsarRusi/mindmate/internal/sms"
	"github.com/TsarRusi/mindmate/internal/store"
	"github.com/TsarRusi/mindmate/internal/util"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for MindMate state data
	DefaultStateDir = "/var/lib/mindmate"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "mindmate.db"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Build the storage backend
	st, err := buildStore(flags)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// Completion providers in priority order; empty is fine, the
	// router falls back to canned replies.
	providers := provider.FromEnv()
	timeout := time.Duration(util.ParseIntEnv("PROVIDER_TIMEOUT_SECONDS", 10)) * time.Second
	rt := router.New(providers, st, router.WithTimeout(timeout))
	if !rt.HasProviders() {
		slog.Warn("No completion providers configured, using canned replies only")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	apiOpts := buildAPIOptions(flags)

	// Optional SMS transport: wires the Twilio webhook and the bot loop.
	if *flags.enableSMS {
		smsClient, err := sms.NewClient()
		if err != nil {
			slog.Error("Failed to initialize Twilio SMS client", "error", err)
			os.Exit(1)
		}
		svc := messaging.NewSMSService(smsClient)
		defer svc.Stop()

		b := bot.New(st, rt, svc)
		b.Run(ctx)
		apiOpts = append(apiOpts, api.WithWebhookHandler(svc.WebhookHandler))
		slog.Info("SMS transport enabled")
	}

	slog.Info("Bootstrapping MindMate", "providers", len(providers), "sms", *flags.enableSMS)
	server := api.NewServer(st, rt, apiOpts...)
	if err := server.Run(ctx); err != nil {
		slog.Error("MindMate failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("MindMate exited successfully")
}

// Config holds environment configuration
type Config struct {
	DatabaseURL string
	StateDir    string
	APIAddr     string
	EnableSMS   bool
}

// Flags holds command line flag values
type Flags struct {
	stateDir  *string
	dbDSN     *string
	apiAddr   *string
	enableSMS *bool
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		StateDir:    os.Getenv("MINDMATE_STATE_DIR"),
		APIAddr:     os.Getenv("API_ADDR"),
		EnableSMS:   util.ParseBoolEnv("ENABLE_SMS", false),
	}

	// Set default state directory if not specified
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No MINDMATE_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"MINDMATE_STATE_DIR", config.StateDir,
		"API_ADDR", config.APIAddr,
		"ENABLE_SMS", config.EnableSMS)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:  flag.String("state-dir", config.StateDir, "state directory for MindMate data (overrides $MINDMATE_STATE_DIR)"),
		dbDSN:     flag.String("db-dsn", config.DatabaseURL, "database DSN for the store (overrides $DATABASE_URL)"),
		apiAddr:   flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		enableSMS: flag.Bool("enable-sms", config.EnableSMS, "enable the Twilio SMS transport (overrides $ENABLE_SMS)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"apiAddr", *flags.apiAddr,
		"enableSMS", *flags.enableSMS)

	// Update database DSN if not explicitly set but state directory is provided
	if *flags.dbDSN == config.DatabaseURL && config.DatabaseURL == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "new_state_dir", *flags.stateDir)
	}

	return flags
}

// buildStore constructs the storage backend from the DSN flag.
func buildStore(flags Flags) (store.Store, error) {
	if *flags.dbDSN == "" {
		slog.Debug("No database DSN provided, using in-memory store")
		return store.NewInMemoryStore(), nil
	}

	if store.DetectDSNType(*flags.dbDSN) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store", "dsn_type", "postgresql")
		return store.NewPostgresStore(store.WithPostgresDSN(*flags.dbDSN))
	}

	slog.Debug("Detected SQLite DSN, configuring SQLite store", "db_path", *flags.dbDSN)
	return store.NewSQLiteStore(store.WithSQLiteDSN(*flags.dbDSN))
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	return apiOpts
}
