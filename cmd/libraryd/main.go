package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/lending/internal/oplog"
	"github.com/MarkoPoloResearchLab/lending/internal/server"
	"github.com/MarkoPoloResearchLab/lending/internal/store"
	"github.com/MarkoPoloResearchLab/lending/pkg/library"
)

const (
	flagConfig          = "config"
	flagDatabaseURL     = "database-url"
	flagPostgresDriver  = "postgres-driver"
	flagListenAddr      = "listen-addr"
	flagAllowedOrigins  = "allowed-origins"
	flagJWTSigningKey   = "jwt-signing-key"
	flagJWTIssuer       = "jwt-issuer"
	flagShutdownTimeout = "shutdown-timeout"
	envPrefix           = "LIBRARY"
	defaultDatabaseURL  = "file://./data/library.json"
)

type runtimeConfig struct {
	DatabaseURL    string
	PostgresDriver string
	Server         server.Config
}

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "libraryd: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := &runtimeConfig{}
	cmd := &cobra.Command{
		Use:           "libraryd",
		Short:         "Lending library HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg)
		},
	}

	cmd.Flags().String(flagConfig, "", "optional YAML config file")
	cmd.Flags().String(flagDatabaseURL, defaultDatabaseURL, "file://, sqlite:// or postgres:// location of the library")
	cmd.Flags().String(flagPostgresDriver, store.PostgresDriverGorm, "postgres access layer: gorm, pgx or pq")
	cmd.Flags().String(flagListenAddr, "", "HTTP listen address")
	cmd.Flags().String(flagAllowedOrigins, "", "comma-separated list of allowed CORS origins")
	cmd.Flags().String(flagJWTSigningKey, "", "HS256 key for bearer tokens; empty disables auth")
	cmd.Flags().String(flagJWTIssuer, "", "expected JWT issuer")
	cmd.Flags().Duration(flagShutdownTimeout, 0, "graceful shutdown timeout")

	return cmd
}

func loadConfig(cmd *cobra.Command, cfg *runtimeConfig) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, flagName := range []string{flagConfig, flagDatabaseURL, flagPostgresDriver, flagListenAddr, flagAllowedOrigins, flagJWTSigningKey, flagJWTIssuer, flagShutdownTimeout} {
		if err := v.BindPFlag(flagName, cmd.Flags().Lookup(flagName)); err != nil {
			return err
		}
	}

	if configPath := v.GetString(flagConfig); configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	cfg.DatabaseURL = v.GetString(flagDatabaseURL)
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return fmt.Errorf("%s is required", flagDatabaseURL)
	}
	cfg.PostgresDriver = v.GetString(flagPostgresDriver)
	cfg.Server = server.Config{
		ListenAddr:      v.GetString(flagListenAddr),
		AllowedOrigins:  server.ParseAllowedOrigins(v.GetString(flagAllowedOrigins)),
		JWTSigningKey:   v.GetString(flagJWTSigningKey),
		JWTIssuer:       v.GetString(flagJWTIssuer),
		ShutdownTimeout: v.GetDuration(flagShutdownTimeout),
	}
	return cfg.Server.Validate()
}

func runServer(ctx context.Context, cfg *runtimeConfig) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	opened, err := store.Open(ctx, cfg.DatabaseURL, cfg.PostgresDriver)
	if err != nil {
		return fmt.Errorf("database open: %w", err)
	}
	defer func() {
		if closeErr := opened.Close(); closeErr != nil {
			logger.Warn("database close error", zap.Error(closeErr))
		}
	}()

	clock := func() time.Time { return time.Now().UTC() }
	service, err := library.NewService(opened.Store, clock, library.WithOperationLogger(oplog.New(logger)))
	if err != nil {
		return fmt.Errorf("library service init: %w", err)
	}

	logger.Info("library store ready", zap.String("backend", opened.Backend))
	return server.Run(ctx, cfg.Server, service, logger)
}
