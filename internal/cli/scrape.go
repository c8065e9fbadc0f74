package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"unigov/internal/igov"
	"unigov/internal/normalizer"
	"unigov/internal/pipeline"
	"unigov/internal/report"
	"unigov/internal/store"

	"github.com/spf13/cobra"
)

// ErrAllUnitsFailed signals that no unit of the run succeeded.
var ErrAllUnitsFailed = errors.New("all units failed")

var (
	scrapeSession  string
	scrapeCategory string
	scrapeAll      bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape GA data into per-category JSON files",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		sessionCfg, ok := cfg.GA.Sessions[scrapeSession]
		if !ok {
			return fmt.Errorf("%w: %s", pipeline.ErrUnknownSession, scrapeSession)
		}

		categories, err := parseCategories(scrapeCategory, scrapeAll)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		stepsRenderer, err := newStepsRenderer(cfg)
		if err != nil {
			return err
		}

		client := igov.NewClient(cfg, log)
		norm := normalizer.New(stepsRenderer, log)
		st := store.New(cfg.Site.DataDir)
		scraper := pipeline.NewScraper(cfg, client, norm, st, log)

		fmt.Printf("🕸️  Scraping GA session %s (%s) -> %v\n", scrapeSession, sessionCfg.Label, categories)

		rep := report.New()

		runErr := scraper.Run(ctx, scrapeSession, categories, rep)
		rep.Render(os.Stdout)

		if runErr != nil {
			return runErr
		}

		if rep.AllFailed() {
			return ErrAllUnitsFailed
		}

		fmt.Println("✨ Scrape complete!")

		return nil
	},
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeSession, "session", "", "Session number to scrape (e.g. 80)")
	scrapeCmd.Flags().StringVar(&scrapeCategory, "category", "", "Single category to scrape")
	scrapeCmd.Flags().BoolVar(&scrapeAll, "all", false, "Scrape all categories")
	_ = scrapeCmd.MarkFlagRequired("session")

	rootCmd.AddCommand(scrapeCmd)
}
