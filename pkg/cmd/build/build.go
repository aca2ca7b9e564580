package build

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/racelab/lapsmith/log"
	"github.com/racelab/lapsmith/pkg/config"
	"github.com/racelab/lapsmith/pkg/export"
	"github.com/racelab/lapsmith/pkg/pipeline"
	"github.com/racelab/lapsmith/pkg/provider"
	"github.com/racelab/lapsmith/pkg/refdata"
	"github.com/racelab/lapsmith/pkg/store"
	"github.com/racelab/lapsmith/pkg/utils"
)

const defaultCooldown = 5 * time.Second

func NewBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "fetches sessions from the provider and builds the feature table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild()
		},
	}
	cmd.Flags().IntSliceVar(&config.Years,
		"years",
		[]int{time.Now().Year()},
		"seasons to process")
	cmd.Flags().StringVar(&config.Cooldown,
		"cooldown",
		"5s",
		"delay after each session to respect provider rate limits")
	cmd.Flags().IntVar(&config.MaxRounds,
		"max-rounds",
		pipeline.DefaultMaxRounds,
		"upper bound for the per-year round probe")
	cmd.Flags().BoolVar(&config.PriorPoints,
		"prior-points",
		true,
		"attach prior-year driver and team points")
	cmd.Flags().StringVar(&config.BackupDir,
		"backup-dir",
		"backup",
		"directory for per-year CSV checkpoints")
	cmd.Flags().StringVar(&config.LogLevel,
		"log-level",
		"info",
		"controls the log level (debug, info, warn, error, fatal)")
	cmd.Flags().StringVar(&config.LogFormat,
		"log-format",
		"json",
		"controls the log output format")
	cmd.Flags().StringVar(&config.LogConfig,
		"log-config",
		"",
		"path to a log filter rules file")
	return cmd
}

func runBuild() error {
	if _, err := utils.SetupLogger(
		config.LogFormat, config.LogLevel, config.LogConfig); err != nil {
		return err
	}

	cooldown, err := time.ParseDuration(config.Cooldown)
	if err != nil {
		log.Warn("invalid cooldown value, using default", log.ErrorField(err))
		cooldown = defaultCooldown
	}

	refs, err := loadTables()
	if err != nil {
		return err
	}

	s, err := store.Open(config.DB)
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck // read-write done before
	if err := s.Migrate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.NewPipeline(
		pipeline.WithLoader(provider.NewHTTPLoader(config.ProviderURL)),
		pipeline.WithLookup(refs),
		pipeline.WithCooldown(cooldown),
		pipeline.WithMaxRounds(config.MaxRounds),
		pipeline.WithPriorYearPoints(config.PriorPoints))

	acc := pipeline.NewAccumulator()
	checkpoint := func(year int, a *pipeline.Accumulator) error {
		if err := s.Replace(ctx, a.Rows()); err != nil {
			return err
		}
		path := export.CheckpointPath(config.BackupDir, year)
		log.Info("writing checkpoint", log.String("path", path))
		return export.WriteFile(path, a.Rows())
	}
	if err := p.Run(ctx, config.Years, acc, checkpoint); err != nil {
		return err
	}
	if err := s.Replace(ctx, acc.Rows()); err != nil {
		return err
	}
	log.Info("build finished", log.Int("rows", acc.Len()))
	return nil
}

func loadTables() (refdata.Lookup, error) {
	if config.RefTables == "" {
		return refdata.Default(), nil
	}
	return refdata.Load(config.RefTables)
}
