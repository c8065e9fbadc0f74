package cli

import (
	"fmt"
	"os"

	"unigov/internal/builder"
	"unigov/internal/pipeline"
	"unigov/internal/report"
	"unigov/internal/store"

	"github.com/spf13/cobra"
)

var (
	buildSession  string
	buildCategory string
	buildAll      bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the static HTML site from persisted JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		if _, ok := cfg.GA.Sessions[buildSession]; !ok {
			return fmt.Errorf("%w: %s", pipeline.ErrUnknownSession, buildSession)
		}

		categories, err := parseCategories(buildCategory, buildAll)
		if err != nil {
			return err
		}

		st := store.New(cfg.Site.DataDir)

		b, err := builder.New(cfg, st, log)
		if err != nil {
			return err
		}

		fmt.Printf("🏗️  Building GA session %s -> %v\n", buildSession, categories)

		rep := report.New()

		buildErr := b.Build(buildSession, categories, rep)
		rep.Render(os.Stdout)

		if buildErr != nil {
			return buildErr
		}

		if rep.AllFailed() {
			return ErrAllUnitsFailed
		}

		fmt.Printf("✨ Built session %s into %s\n", buildSession, cfg.Site.OutputDir)

		return nil
	},
}

func init() {
	buildCmd.Flags().StringVar(&buildSession, "session", "", "Session number to build (e.g. 80)")
	buildCmd.Flags().StringVar(&buildCategory, "category", "", "Single category to build")
	buildCmd.Flags().BoolVar(&buildAll, "all", false, "Build all categories")
	_ = buildCmd.MarkFlagRequired("session")

	rootCmd.AddCommand(buildCmd)
}
