package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"servewise-backend/internal/config"
	"servewise-backend/internal/db"
	"servewise-backend/utilities"
)

const version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:           "servewise",
	Short:         "Staff training lessons generated from a restaurant's menu",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "config.xml", "Path to the XML configuration file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "servewise:", err)
		os.Exit(1)
	}
}

// runtime is what every subcommand needs before doing its own work.
type runtime struct {
	cfg *config.APIConfig
	log *utilities.Logger
}

func bootstrap(cmd *cobra.Command) (*runtime, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := utilities.NewLogger(utilities.LogOptions{
		Level:      cfg.Logging.Level,
		Dir:        cfg.Logging.Dir,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	if err := db.InitDBFromConfig(cfg); err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}
	utilities.SetTokenSecrets(cfg.Authentication.AccessSecret, cfg.Authentication.RefreshSecret)
	utilities.SetAccessTokenExpiry(time.Duration(cfg.Authentication.SessionTimeout) * time.Second)

	log.Info("configuration loaded", "config", path, "driver", cfg.DB.Driver)
	return &runtime{cfg: cfg, log: log}, nil
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer rt.log.Sync()

		if err := db.AutoMigrate(db.GetDB()); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		rt.log.Info("schema migrated")
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token <employee-email>",
	Short: "Issue an access and refresh token for an active employee",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer rt.log.Sync()

		a, err := newApp(db.GetDB(), rt.cfg, rt.log)
		if err != nil {
			return err
		}
		pair, err := a.services.Auth.IssueTokens(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "access_token:  %s\nrefresh_token: %s\n", pair.AccessToken, pair.RefreshToken)
		return nil
	},
}
