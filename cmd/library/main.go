package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/lending/internal/oplog"
	"github.com/MarkoPoloResearchLab/lending/internal/store"
	"github.com/MarkoPoloResearchLab/lending/pkg/library"
)

const (
	flagConfig         = "config"
	flagDatabaseURL    = "database-url"
	flagPostgresDriver = "postgres-driver"
	flagVerbose        = "verbose"
	envPrefix          = "LIBRARY"
	defaultDatabaseURL = "file://./data/library.json"
)

// app carries what every subcommand needs once the store is open.
type app struct {
	service *library.Service
	out     io.Writer
	styles  styles
	close   func() error
}

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, newStyles().Error.Render("library: "+err.Error()))
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	state := &app{styles: newStyles()}
	cmd := &cobra.Command{
		Use:           "library",
		Short:         "Lending library management",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return state.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return state.shutdown()
		},
	}

	cmd.PersistentFlags().String(flagConfig, "", "optional YAML config file")
	cmd.PersistentFlags().String(flagDatabaseURL, defaultDatabaseURL, "file://, sqlite:// or postgres:// location of the library")
	cmd.PersistentFlags().String(flagPostgresDriver, store.PostgresDriverGorm, "postgres access layer: gorm, pgx or pq")
	cmd.PersistentFlags().Bool(flagVerbose, false, "log every operation to stderr")

	cmd.AddCommand(newLibCommand(state), newMembersCommand(state), newBooksCommand(state))
	return cmd
}

func (state *app) open(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, flagName := range []string{flagConfig, flagDatabaseURL, flagPostgresDriver, flagVerbose} {
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
	databaseURL := v.GetString(flagDatabaseURL)
	if strings.TrimSpace(databaseURL) == "" {
		return fmt.Errorf("%s is required", flagDatabaseURL)
	}

	logger := zap.NewNop()
	if v.GetBool(flagVerbose) {
		developmentLogger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("logger init: %w", err)
		}
		logger = developmentLogger
	}

	opened, err := store.Open(cmd.Context(), databaseURL, v.GetString(flagPostgresDriver))
	if err != nil {
		return fmt.Errorf("database open: %w", err)
	}
	clock := func() time.Time { return time.Now().UTC() }
	service, err := library.NewService(opened.Store, clock, library.WithOperationLogger(oplog.New(logger)))
	if err != nil {
		_ = opened.Close()
		return fmt.Errorf("library service init: %w", err)
	}
	state.service = service
	state.out = cmd.OutOrStdout()
	state.close = func() error {
		_ = logger.Sync()
		return opened.Close()
	}
	return nil
}

func (state *app) shutdown() error {
	if state.close == nil {
		return nil
	}
	closeFn := state.close
	state.close = nil
	return closeFn()
}
