package export

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/racelab/lapsmith/log"
	"github.com/racelab/lapsmith/pkg/config"
	featexport "github.com/racelab/lapsmith/pkg/export"
	"github.com/racelab/lapsmith/pkg/store"
	"github.com/racelab/lapsmith/pkg/utils"
)

func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "writes the stored feature table as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport()
		},
	}
	cmd.Flags().StringVarP(&config.Output,
		"output",
		"o",
		"features.csv",
		"path of the CSV export")
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

func runExport() error {
	if _, err := utils.SetupLogger(
		config.LogFormat, config.LogLevel, config.LogConfig); err != nil {
		return err
	}

	s, err := store.Open(config.DB)
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck // read only

	rows, err := s.Load(context.Background())
	if err != nil {
		return err
	}
	if err := featexport.WriteFile(config.Output, rows); err != nil {
		return err
	}
	log.Info("feature table exported",
		log.String("path", config.Output), log.Int("rows", len(rows)))
	return nil
}
