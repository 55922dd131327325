package main

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ngoyal88/quip/pkg/config"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "quip",
	Short: "Heckle your logs",
	Long: `quip annotates log lines with a short joke, generated remotely by an
LLM provider when configured and picked from a local phrase bank otherwise.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	rootCmd.AddCommand(runCmd, testCmd, initCmd)
}

// loadConfig reads the config file and installs the process logger.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, err
	}
	setupLogger(cfg)
	return cfg, nil
}

func setupLogger(cfg config.Config) {
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	log.Logger = config.NewLogger(cfg.Log)
	zerolog.DefaultContextLogger = &log.Logger
}

func component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
