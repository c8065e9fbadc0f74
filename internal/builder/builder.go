// Package builder renders persisted category JSON into the static HTML
// site.
package builder

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"unigov/internal/config"
	"unigov/internal/logger"
	"unigov/internal/models"
	"unigov/internal/report"
	"unigov/internal/steps"
	"unigov/internal/store"
)

// Builder renders pages from the data store. Rendering is a pure function
// of (templates, stored data, site config): the same input always produces
// byte-identical output.
type Builder struct {
	cfg    *config.Config
	store  *store.Store
	logger *logger.Logger
	pages  map[string]*template.Template
}

// New creates a builder and parses the embedded templates.
func New(cfg *config.Config, st *store.Store, log *logger.Logger) (*Builder, error) {
	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	return &Builder{
		cfg:    cfg,
		store:  st,
		logger: log,
		pages:  pages,
	}, nil
}

// siteContext is the site-wide template context.
type siteContext struct {
	Title      string
	HomeHref   string
	StaticHref string
}

func (b *Builder) site() siteContext {
	base := b.cfg.Site.BaseURL

	return siteContext{
		Title:      b.cfg.Site.Title,
		HomeHref:   IndexHref(base),
		StaticHref: IndexHref(base) + "static/",
	}
}

// Build renders the requested categories for one session across every
// configured body, then the site index and static assets. Unit failures are
// recorded in the report; only setup-level failures return an error.
func (b *Builder) Build(session string, categories []models.Category, rep *report.Report) error {
	for _, body := range b.cfg.Bodies() {
		for _, category := range categories {
			rep.Add(b.buildUnit(body, session, category))
		}
	}

	if err := b.buildIndex(); err != nil {
		return err
	}

	return b.copyStatic()
}

// buildUnit renders one (body, session, category) combination. A missing
// category file is a silent skip; a corrupt file or render failure is a
// failure for this unit only.
func (b *Builder) buildUnit(body, session string, category models.Category) report.Unit {
	unit := report.Unit{
		Body:     body,
		Session:  session,
		Category: category,
	}

	var (
		records int
		pages   []page
		err     error
	)

	switch category {
	case models.CategoryMeetings:
		records, pages, err = b.meetingPages(body, session)
	case models.CategoryAgenda:
		records, pages, err = b.agendaPage(body, session)
	case models.CategoryDocuments:
		records, pages, err = b.documentsPage(body, session)
	case models.CategoryDecisions:
		records, pages, err = b.decisionsPage(body, session)
	case models.CategoryProposals:
		records, pages, err = b.proposalsPage(body, session)
	default:
		unit.Status = report.StatusFailed
		unit.Err = fmt.Errorf("unknown category: %s", category)

		return unit
	}

	if errors.Is(err, store.ErrNotFound) {
		b.logger.Debug("no data for unit", "body", body, "session", session, "category", category)
		unit.Status = report.StatusSkipped

		return unit
	}

	if err != nil {
		unit.Status = report.StatusFailed
		unit.Err = err

		return unit
	}

	unit.Records = records

	// Each page is isolated: one bad record fails its page, not the unit's
	// siblings.
	var firstErr error

	for _, p := range pages {
		if renderErr := b.writePage(p); renderErr != nil {
			b.logger.Error("failed to render page", "path", p.relPath, "err", renderErr)

			if firstErr == nil {
				firstErr = renderErr
			}

			continue
		}

		unit.Pages++
	}

	if firstErr != nil {
		unit.Status = report.StatusFailed
		unit.Err = firstErr
	} else {
		unit.Status = report.StatusOK
	}

	return unit
}

// page pairs a template name and data with its output location.
type page struct {
	template string
	relPath  string
	data     any
}

// writePage renders to memory first, then commits atomically.
func (b *Builder) writePage(p page) error {
	tmpl, ok := b.pages[p.template]
	if !ok {
		return fmt.Errorf("unknown template: %s", p.template)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", p.data); err != nil {
		return fmt.Errorf("failed to execute %s: %w", p.template, err)
	}

	outPath := filepath.Join(b.cfg.Site.OutputDir, filepath.FromSlash(p.relPath))
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	return store.WriteFileAtomic(outPath, buf.Bytes())
}

func (b *Builder) bodyName(body string) string {
	if body == config.BodyPlenary {
		return "Plenary"
	}

	if name, ok := b.cfg.GA.Committees[body]; ok {
		return name
	}

	return body
}

// listingPage is the shared context of category listing templates.
type listingPage struct {
	Site     siteContext
	Body     string
	BodyName string
	Session  string
}

func (b *Builder) listing(body, session string) listingPage {
	return listingPage{
		Site:     b.site(),
		Body:     body,
		BodyName: b.bodyName(body),
		Session:  session,
	}
}

type meetingRow struct {
	Meeting models.Meeting
	Href    string
}

type meetingsData struct {
	listingPage
	Meetings []meetingRow
}

type segmentGroup struct {
	ID    int
	Steps []models.RenderedStep
}

type meetingData struct {
	listingPage
	Meeting     models.Meeting
	Segments    []segmentGroup
	ListingHref string
	AgendaHref  string
}

// meetingPages produces the meetings listing plus one detail page per
// meeting.
func (b *Builder) meetingPages(body, session string) (int, []page, error) {
	var meetings []models.Meeting
	if err := b.store.Load(body, session, models.CategoryMeetings, &meetings); err != nil {
		return 0, nil, err
	}

	base := b.cfg.Site.BaseURL

	rows := make([]meetingRow, 0, len(meetings))
	for _, m := range meetings {
		rows = append(rows, meetingRow{
			Meeting: m,
			Href:    DetailHref(base, body, session, models.CategoryMeetings, m.ID),
		})
	}

	pages := []page{{
		template: "meetings",
		relPath:  ListingPath(body, session, models.CategoryMeetings),
		data: meetingsData{
			listingPage: b.listing(body, session),
			Meetings:    rows,
		},
	}}

	for _, m := range meetings {
		pages = append(pages, page{
			template: "meeting",
			relPath:  DetailPath(body, session, models.CategoryMeetings, m.ID),
			data: meetingData{
				listingPage: b.listing(body, session),
				Meeting:     m,
				Segments:    groupSegments(m.Steps),
				ListingHref: ListingHref(base, body, session, models.CategoryMeetings),
				// Computed by convention; the agenda page may not exist.
				AgendaHref: ListingHref(base, body, session, models.CategoryAgenda),
			},
		})
	}

	return len(meetings), pages, nil
}

// groupSegments orders procedure steps into their meeting segments.
func groupSegments(rendered []models.RenderedStep) []segmentGroup {
	grouped := steps.GroupBySegment(rendered)

	ids := make([]int, 0, len(grouped))
	for id := range grouped {
		ids = append(ids, id)
	}

	sort.Ints(ids)

	segments := make([]segmentGroup, 0, len(ids))
	for _, id := range ids {
		segments = append(segments, segmentGroup{ID: id, Steps: grouped[id]})
	}

	return segments
}

type agendaData struct {
	listingPage
	Items []models.AgendaItem
}

func (b *Builder) agendaPage(body, session string) (int, []page, error) {
	var items []models.AgendaItem
	if err := b.store.Load(body, session, models.CategoryAgenda, &items); err != nil {
		return 0, nil, err
	}

	return len(items), []page{{
		template: "agenda",
		relPath:  ListingPath(body, session, models.CategoryAgenda),
		data: agendaData{
			listingPage: b.listing(body, session),
			Items:       items,
		},
	}}, nil
}

type documentsData struct {
	listingPage
	Documents []models.Document
}

func (b *Builder) documentsPage(body, session string) (int, []page, error) {
	var docs []models.Document
	if err := b.store.Load(body, session, models.CategoryDocuments, &docs); err != nil {
		return 0, nil, err
	}

	return len(docs), []page{{
		template: "documents",
		relPath:  ListingPath(body, session, models.CategoryDocuments),
		data: documentsData{
			listingPage: b.listing(body, session),
			Documents:   docs,
		},
	}}, nil
}

type decisionsData struct {
	listingPage
	Decisions []models.Decision
}

func (b *Builder) decisionsPage(body, session string) (int, []page, error) {
	var decisions []models.Decision
	if err := b.store.Load(body, session, models.CategoryDecisions, &decisions); err != nil {
		return 0, nil, err
	}

	return len(decisions), []page{{
		template: "decisions",
		relPath:  ListingPath(body, session, models.CategoryDecisions),
		data: decisionsData{
			listingPage: b.listing(body, session),
			Decisions:   decisions,
		},
	}}, nil
}

type proposalsData struct {
	listingPage
	Proposals []models.Proposal
}

func (b *Builder) proposalsPage(body, session string) (int, []page, error) {
	var proposals []models.Proposal
	if err := b.store.Load(body, session, models.CategoryProposals, &proposals); err != nil {
		return 0, nil, err
	}

	return len(proposals), []page{{
		template: "proposals",
		relPath:  ListingPath(body, session, models.CategoryProposals),
		data: proposalsData{
			listingPage: b.listing(body, session),
			Proposals:   proposals,
		},
	}}, nil
}

type sessionStats struct {
	Session       string
	Label         string
	Meetings      int
	Agenda        int
	Documents     int
	Decisions     int
	Proposals     int
	MeetingsHref  string
	AgendaHref    string
	DocumentsHref string
	DecisionsHref string
	ProposalsHref string
}

type indexData struct {
	Site     siteContext
	Sessions []sessionStats
}

// buildIndex aggregates plenary counts across every configured session.
func (b *Builder) buildIndex() error {
	base := b.cfg.Site.BaseURL
	body := config.BodyPlenary

	sessions := make([]sessionStats, 0, len(b.cfg.GA.Sessions))

	for _, number := range b.cfg.SessionNumbers() {
		stats := sessionStats{
			Session:       number,
			Label:         b.cfg.GA.Sessions[number].Label,
			Meetings:      b.countRecords(body, number, models.CategoryMeetings, &[]models.Meeting{}),
			Agenda:        b.countRecords(body, number, models.CategoryAgenda, &[]models.AgendaItem{}),
			Documents:     b.countRecords(body, number, models.CategoryDocuments, &[]models.Document{}),
			Decisions:     b.countRecords(body, number, models.CategoryDecisions, &[]models.Decision{}),
			Proposals:     b.countRecords(body, number, models.CategoryProposals, &[]models.Proposal{}),
			MeetingsHref:  ListingHref(base, body, number, models.CategoryMeetings),
			AgendaHref:    ListingHref(base, body, number, models.CategoryAgenda),
			DocumentsHref: ListingHref(base, body, number, models.CategoryDocuments),
			DecisionsHref: ListingHref(base, body, number, models.CategoryDecisions),
			ProposalsHref: ListingHref(base, body, number, models.CategoryProposals),
		}

		sessions = append(sessions, stats)
	}

	return b.writePage(page{
		template: "index",
		relPath:  IndexPath,
		data: indexData{
			Site:     b.site(),
			Sessions: sessions,
		},
	})
}

// countRecords loads one unit purely for its record count. Missing or
// corrupt data counts as zero; corruption is surfaced by the unit build, not
// the index.
func (b *Builder) countRecords(body, session string, category models.Category, out any) int {
	if err := b.store.Load(body, session, category, out); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			b.logger.Warn("ignoring unreadable data for index stats",
				"body", body, "session", session, "category", category, "err", err)
		}

		return 0
	}

	switch records := out.(type) {
	case *[]models.Meeting:
		return len(*records)
	case *[]models.AgendaItem:
		return len(*records)
	case *[]models.Document:
		return len(*records)
	case *[]models.Decision:
		return len(*records)
	case *[]models.Proposal:
		return len(*records)
	}

	return 0
}

// copyStatic writes the embedded static assets under <output>/static/.
func (b *Builder) copyStatic() error {
	return fs.WalkDir(staticFS, "static", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		data, err := staticFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read embedded asset %s: %w", path, err)
		}

		outPath := filepath.Join(b.cfg.Site.OutputDir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
			return fmt.Errorf("failed to create static directory: %w", err)
		}

		return store.WriteFileAtomic(outPath, data)
	})
}
