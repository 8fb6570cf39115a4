package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"gchat/pkg/config"
	"gchat/pkg/grok"
	"gchat/pkg/notify"
	"gchat/pkg/orchestrate"
)

// Flag variables shared by watch and run. Flags beat the config file, which
// beats the built-in defaults; flag change state decides whether a flag
// applies.
var (
	flagChatFile    string
	flagModel       string
	flagTokenLevel  int
	flagTemperature float64
	flagTimeout     int
	flagNegotiate   bool
	flagEscalate    bool
	flagQuiet       bool
	flagVerbose     bool
)

func addTurnFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagChatFile, "chat-file", "f", "./gchat.md", "Path to the chat transcript file")
	cmd.Flags().StringVarP(&flagModel, "model", "m", grok.DefaultModel, "Model identifier to request")
	cmd.Flags().IntVarP(&flagTokenLevel, "token-level", "t", orchestrate.DefaultLevel, "Starting token-budget level (each level doubles the budget)")
	cmd.Flags().Float64VarP(&flagTemperature, "temperature", "T", 1.0, "Sampling temperature")
	cmd.Flags().IntVar(&flagTimeout, "timeout", 600, "API request timeout in seconds")
	cmd.Flags().BoolVar(&flagNegotiate, "negotiate-files", true, "Let the model request project files mid-turn")
	cmd.Flags().BoolVar(&flagEscalate, "auto-escalate", true, "Retry truncated replies with a doubled token budget")
	cmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "Disable audio feedback")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// resolveConfig merges flag > file > default for the turn settings.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(config.Locate(configPath))
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("chat-file") {
		cfg.ChatFile = flagChatFile
	}
	if flags.Changed("model") {
		cfg.Model = flagModel
	}
	if flags.Changed("token-level") {
		cfg.TokenLevel = flagTokenLevel
	}
	if flags.Changed("temperature") {
		cfg.Temperature = flagTemperature
	}
	if flags.Changed("timeout") {
		cfg.TimeoutSeconds = flagTimeout
	}
	if flags.Changed("negotiate-files") {
		cfg.NegotiateFiles = &flagNegotiate
	}
	if flags.Changed("auto-escalate") {
		cfg.AutoEscalate = &flagEscalate
	}
	if flags.Changed("quiet") {
		cfg.Quiet = flagQuiet
	}
	if flags.Changed("verbose") {
		cfg.Verbose = flagVerbose
	}

	if cfg.TokenLevel < 0 || cfg.TokenLevel > orchestrate.DefaultMaxLevel {
		return nil, fmt.Errorf("token-level must be between 0 and %d", orchestrate.DefaultMaxLevel)
	}
	return cfg, nil
}

// buildOrchestrator assembles the turn pipeline from resolved settings.
func buildOrchestrator(cfg *config.Config) (*orchestrate.Orchestrator, error) {
	apiKey := os.Getenv(grok.EnvAPIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%s not set", grok.EnvAPIKey)
	}

	client := grok.NewClient(&grok.Config{
		APIKey:  apiKey,
		Model:   cfg.Model,
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	})

	var notifier notify.Notifier = notify.NewBell()
	if cfg.Quiet {
		notifier = notify.Silent{}
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	return orchestrate.New(orchestrate.NewGrokCompleter(client), notifier, orchestrate.Options{
		ChatFile:       cfg.ChatFile,
		WorkDir:        workDir,
		Level:          cfg.TokenLevel,
		MaxLevel:       orchestrate.DefaultMaxLevel,
		Temperature:    cfg.Temperature,
		NegotiateFiles: cfg.NegotiateFilesEnabled(),
		AutoEscalate:   cfg.AutoEscalateEnabled(),
	}), nil
}
