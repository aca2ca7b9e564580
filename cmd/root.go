package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	buildCmd "github.com/racelab/lapsmith/pkg/cmd/build"
	exportCmd "github.com/racelab/lapsmith/pkg/cmd/export"
	finalizeCmd "github.com/racelab/lapsmith/pkg/cmd/finalize"
	migrateCmd "github.com/racelab/lapsmith/pkg/cmd/migrate"
	"github.com/racelab/lapsmith/pkg/config"
	"github.com/racelab/lapsmith/version"
)

const envPrefix = "LAPSMITH"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "lapsmith",
	Short:   "Lap-level telemetry feature construction for F1 race data",
	Long:    ``,
	Version: version.FullVersion,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.lapsmith.yml)")

	rootCmd.PersistentFlags().StringVar(&config.DB, "db",
		"lapsmith.db",
		"path of the sqlite feature database")
	rootCmd.PersistentFlags().StringVar(&config.ProviderURL, "provider-url",
		"http://localhost:8720",
		"base URL of the racing-data provider")
	rootCmd.PersistentFlags().StringVar(&config.RefTables, "ref-tables",
		"",
		"reference tables file (defaults to the embedded tables)")

	// add commands here
	rootCmd.AddCommand(buildCmd.NewBuildCmd())
	rootCmd.AddCommand(finalizeCmd.NewFinalizeCmd())
	rootCmd.AddCommand(exportCmd.NewExportCmd())
	rootCmd.AddCommand(migrateCmd.NewMigrateCmd())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".lapsmith" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".lapsmith")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	bindFlags(rootCmd, viper.GetViper())
	for _, cmd := range rootCmd.Commands() {
		bindFlags(cmd, viper.GetViper())
	}
}

// Bind each cobra flag to its associated viper configuration
// (config file and environment variable)
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Environment variables can't have dashes in them, so bind them to their
		// equivalent keys with underscores, e.g. --backup-dir to LAPSMITH_BACKUP_DIR
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name,
				fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not bind env var %s: %v", f.Name, err)
			}
		}
		// Apply the viper config value to the flag when the flag is not set and viper
		// has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(os.Stderr, "Could set flag value for %s: %v", f.Name, err)
			}
		}
	})
}
