package migrate

import (
	"github.com/spf13/cobra"

	"github.com/racelab/lapsmith/log"
	"github.com/racelab/lapsmith/pkg/config"
	"github.com/racelab/lapsmith/pkg/store"
	"github.com/racelab/lapsmith/pkg/utils"
)

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "performs database migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startMigration()
		},
	}
	cmd.Flags().StringVar(&config.LogLevel,
		"log-level",
		"info",
		"controls the log level (debug, info, warn, error, fatal)")
	cmd.Flags().StringVar(&config.LogFormat,
		"log-format",
		"json",
		"controls the log output format")
	return cmd
}

func startMigration() error {
	if _, err := utils.SetupLogger(
		config.LogFormat, config.LogLevel, config.LogConfig); err != nil {
		return err
	}

	s, err := store.Open(config.DB)
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck // migration done before

	if err := s.Migrate(); err != nil {
		log.Error("migration failed", log.ErrorField(err))
		return err
	}
	log.Info("database is up to date", log.String("db", config.DB))
	return nil
}
