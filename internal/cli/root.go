// Package cli implements the unigov command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"unigov/internal/config"
	"unigov/internal/logger"
	"unigov/internal/models"
	"unigov/internal/steps"

	"github.com/spf13/cobra"
)

// ErrUnknownCategory is returned for an unrecognized --category value.
var ErrUnknownCategory = errors.New("unknown category")

var configPath string

var rootCmd = &cobra.Command{
	Use:           "unigov",
	Short:         "UN General Assembly iGov scraper and static site generator",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/unigov.yaml", "Path to YAML configuration file")
}

// loadConfig loads the configuration and a logger configured from it.
func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	return cfg, logger.New(cfg.Logging.Level, cfg.Logging.Format), nil
}

// newStepsRenderer honors the optional template override from config.
func newStepsRenderer(cfg *config.Config) (*steps.Renderer, error) {
	if cfg.Templates.ProcedureSteps != "" {
		return steps.NewRendererFromFile(cfg.Templates.ProcedureSteps)
	}

	return steps.NewRenderer()
}

// parseCategories resolves the --category/--all flags; no flag means all
// categories.
func parseCategories(category string, all bool) ([]models.Category, error) {
	if all || category == "" {
		return models.AllCategories(), nil
	}

	c := models.Category(category)
	if !c.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}

	return []models.Category{c}, nil
}
