package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/AnTengye/clausewise/config"
	"github.com/AnTengye/clausewise/service"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "clausewise",
	Short: "ClauseWise: plain-language contract and NDA analysis",
	Long: `ClauseWise segments contracts into clauses, flags risky terms, scores
fairness and extracts parties, dates and amounts.

Commands:
  serve          Start the HTTP API
  analyze        Analyse a local contract file
  mcp            Serve the analysis tools over MCP (stdio)
  hash-password  Print a bcrypt hash for the users section of the config`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
}

// loadConfig reads the config file. The default path may be absent, in which
// case built-in defaults and environment overrides apply.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", cfgFile, err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

// modelServices picks model-backed entity extraction and simplification when
// an inference endpoint is enabled, heuristics otherwise.
func modelServices(cfg *config.Config) (service.EntityExtractor, service.Simplifier) {
	if !cfg.Models.Enabled {
		return service.RegexExtractor{}, service.HeuristicSimplifier{}
	}
	client := service.NewInferenceClient(&cfg.Models)
	return service.NewModelExtractor(client, cfg.Models.NERModel),
		service.NewModelSimplifier(client, cfg.Models.SimplifyModel)
}
