// Package pipeline orchestrates the scrape phase: fetch, normalize,
// persist.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"unigov/internal/config"
	"unigov/internal/igov"
	"unigov/internal/logger"
	"unigov/internal/models"
	"unigov/internal/normalizer"
	"unigov/internal/report"
	"unigov/internal/store"
)

// ErrUnknownSession is returned when the requested session is not
// configured.
var ErrUnknownSession = errors.New("unknown session")

// Fetcher is the API client surface the scraper depends on.
type Fetcher interface {
	FetchCategory(ctx context.Context, category models.Category, ref igov.SessionRef) ([]json.RawMessage, error)
}

// Scraper runs the scrape phase for one session. Each (body, category) unit
// is isolated: a fetch failure is recorded and its siblings continue.
type Scraper struct {
	cfg    *config.Config
	client Fetcher
	norm   *normalizer.Normalizer
	store  *store.Store
	logger *logger.Logger
}

// NewScraper creates a scraper with injected dependencies.
func NewScraper(cfg *config.Config, client Fetcher, norm *normalizer.Normalizer, st *store.Store, log *logger.Logger) *Scraper {
	return &Scraper{
		cfg:    cfg,
		client: client,
		norm:   norm,
		store:  st,
		logger: log,
	}
}

// Run scrapes the requested categories for one session: every category for
// the plenary, and proposals additionally per committee. Outcomes land in
// the report and the run manifest. Only context cancellation aborts the
// run early.
func (s *Scraper) Run(ctx context.Context, session string, categories []models.Category, rep *report.Report) error {
	sessionCfg, ok := s.cfg.GA.Sessions[session]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSession, session)
	}

	ref := igov.SessionRef{
		Number:        sessionCfg.Number,
		Label:         sessionCfg.Label,
		DecisionLabel: sessionCfg.DecisionLabel,
		BodyParam:     s.cfg.GA.BodyCode,
	}

	manifest := store.NewManifest()

	for _, category := range categories {
		if err := ctx.Err(); err != nil {
			return err
		}

		unit := s.scrapeUnit(ctx, config.BodyPlenary, session, category, ref, "")
		rep.Add(unit)
		manifest.AddUnit(manifestUnit(unit))

		// Proposals are tracked per committee as well as for the plenary.
		if category != models.CategoryProposals {
			continue
		}

		for _, code := range s.cfg.CommitteeCodes() {
			if err := ctx.Err(); err != nil {
				return err
			}

			unit := s.scrapeUnit(ctx, code, session, category, ref, s.cfg.GA.Committees[code])
			rep.Add(unit)
			manifest.AddUnit(manifestUnit(unit))
		}
	}

	if err := s.store.WriteManifest(manifest); err != nil {
		return err
	}

	return nil
}

// scrapeUnit fetches, normalizes and persists one (body, session, category)
// unit.
func (s *Scraper) scrapeUnit(ctx context.Context, body, session string, category models.Category, ref igov.SessionRef, committee string) report.Unit {
	unit := report.Unit{
		Body:     body,
		Session:  session,
		Category: category,
	}

	log := s.logger.With("body", body, "session", session, "category", category)
	log.Info("scraping unit")

	unitRef := ref
	unitRef.Committee = committee

	raw, err := s.client.FetchCategory(ctx, category, unitRef)
	if err != nil {
		log.Error("fetch failed", "err", err)
		unit.Status = report.StatusFailed
		unit.Err = err

		return unit
	}

	records, skipped, err := s.norm.Normalize(category, raw, session, body, committee)
	if err != nil {
		unit.Status = report.StatusFailed
		unit.Err = err

		return unit
	}

	if err := s.store.Save(body, session, category, records); err != nil {
		log.Error("save failed", "err", err)
		unit.Status = report.StatusFailed
		unit.Err = err

		return unit
	}

	unit.Status = report.StatusOK
	// Documents are flattened, so count the normalized slice rather than
	// the raw items.
	unit.Records = recordCount(records)
	unit.Skipped = skipped

	log.Info("unit persisted", "records", unit.Records, "skipped", skipped)

	return unit
}

// recordCount returns the length of a normalized record slice.
func recordCount(records any) int {
	switch r := records.(type) {
	case []models.Meeting:
		return len(r)
	case []models.AgendaItem:
		return len(r)
	case []models.Document:
		return len(r)
	case []models.Decision:
		return len(r)
	case []models.Proposal:
		return len(r)
	}

	return 0
}

func manifestUnit(unit report.Unit) store.ManifestUnit {
	mu := store.ManifestUnit{
		Body:     unit.Body,
		Session:  unit.Session,
		Category: unit.Category,
		Records:  unit.Records,
		Skipped:  unit.Skipped,
		Status:   unit.Status,
	}

	if unit.Err != nil {
		mu.Error = unit.Err.Error()
	}

	return mu
}
