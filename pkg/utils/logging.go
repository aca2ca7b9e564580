package utils

import (
	"os"

	"github.com/racelab/lapsmith/log"
)

// SetupLogger builds the process logger from the resolved CLI config and
// installs it as the default. An optional rules file narrows the output to
// matching named loggers (zapfilter syntax).
func SetupLogger(format, level, rulesFile string) (*log.Logger, error) {
	var logger *log.Logger
	switch format {
	case "json":
		logger = log.New(
			os.Stderr,
			parseLogLevel(level, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		logger = log.DevLogger(
			os.Stderr,
			parseLogLevel(level, log.DebugLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	if rulesFile != "" {
		rules, err := os.ReadFile(rulesFile)
		if err != nil {
			return nil, err
		}
		logger, err = log.Filtered(logger, string(rules))
		if err != nil {
			return nil, err
		}
	}
	log.ResetDefault(logger)
	return logger, nil
}

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}
