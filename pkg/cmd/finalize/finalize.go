package finalize

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/racelab/lapsmith/log"
	"github.com/racelab/lapsmith/pkg/config"
	"github.com/racelab/lapsmith/pkg/processing/normalize"
	"github.com/racelab/lapsmith/pkg/store"
	"github.com/racelab/lapsmith/pkg/utils"
)

func NewFinalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finalize",
		Short: "runs the cleanup and cross-sectional normalization over the stored table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFinalize()
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

func runFinalize() error {
	if _, err := utils.SetupLogger(
		config.LogFormat, config.LogLevel, config.LogConfig); err != nil {
		return err
	}

	s, err := store.Open(config.DB)
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck // read-write done before

	ctx := context.Background()
	rows, err := s.Load(ctx)
	if err != nil {
		return err
	}

	out := normalize.NewNormalizer().Finalize(rows)
	if err := s.Replace(ctx, out); err != nil {
		return err
	}
	log.Info("feature table finalized",
		log.Int("in", len(rows)), log.Int("out", len(out)))
	return nil
}
