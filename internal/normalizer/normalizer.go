// Package normalizer maps heterogeneous raw iGov payloads onto the uniform
// per-category record types.
package normalizer

import (
	"encoding/json"
	"errors"
	"fmt"

	"unigov/internal/logger"
	"unigov/internal/models"
	"unigov/internal/steps"

	"github.com/mattn/go-runewidth"
)

// ErrUnknownCategory is returned when asked to normalize an untracked
// category.
var ErrUnknownCategory = errors.New("unknown category")

// titleWidth bounds record titles quoted in warning logs.
const titleWidth = 60

// Normalizer converts raw API items into typed records. Malformed items are
// skipped with a warning; the batch always completes.
type Normalizer struct {
	steps  *steps.Renderer
	logger *logger.Logger
}

// New creates a normalizer. The steps renderer is used for meeting
// procedure steps.
func New(stepsRenderer *steps.Renderer, log *logger.Logger) *Normalizer {
	return &Normalizer{
		steps:  stepsRenderer,
		logger: log,
	}
}

// Normalize dispatches on category and returns the normalized record slice
// (typed per category) along with the number of skipped items. committee is
// only consulted for proposals.
func (n *Normalizer) Normalize(category models.Category, raw []json.RawMessage, session, body, committee string) (any, int, error) {
	switch category {
	case models.CategoryMeetings:
		records, skipped := n.Meetings(raw, session, body)
		return records, skipped, nil
	case models.CategoryAgenda:
		records, skipped := n.AgendaItems(raw, session)
		return records, skipped, nil
	case models.CategoryDocuments:
		records, skipped := n.Documents(raw, session)
		return records, skipped, nil
	case models.CategoryDecisions:
		records, skipped := n.Decisions(raw, session)
		return records, skipped, nil
	case models.CategoryProposals:
		records, skipped := n.Proposals(raw, session, committee)
		return records, skipped, nil
	}

	return nil, 0, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
}

// Meetings normalizes raw meeting items, rendering procedure steps to text.
func (n *Normalizer) Meetings(raw []json.RawMessage, session, body string) ([]models.Meeting, int) {
	records := make([]models.Meeting, 0, len(raw))
	skipped := 0

	for i, item := range raw {
		var rm models.RawMeeting
		if err := json.Unmarshal(item, &rm); err != nil {
			n.warnMalformed(models.CategoryMeetings, i, "undecodable item", err)
			skipped++

			continue
		}

		if rm.ID == "" || rm.Title == "" {
			n.warnIncomplete(models.CategoryMeetings, i, rm.ID, rm.Title)
			skipped++

			continue
		}

		records = append(records, models.Meeting{
			ID:      rm.ID,
			Title:   rm.Title,
			Date:    rm.Date,
			Session: session,
			Body:    body,
			Steps:   n.steps.RenderSteps(rm.Steps),
		})
	}

	return records, skipped
}

// AgendaItems normalizes raw agenda lookup items.
func (n *Normalizer) AgendaItems(raw []json.RawMessage, session string) ([]models.AgendaItem, int) {
	records := make([]models.AgendaItem, 0, len(raw))
	skipped := 0

	for i, item := range raw {
		var ra models.RawAgendaItem
		if err := json.Unmarshal(item, &ra); err != nil {
			n.warnMalformed(models.CategoryAgenda, i, "undecodable item", err)
			skipped++

			continue
		}

		if ra.ID == "" || ra.Title == "" {
			n.warnIncomplete(models.CategoryAgenda, i, ra.ID, ra.Title)
			skipped++

			continue
		}

		records = append(records, models.AgendaItem{
			ID:         ra.ID,
			ItemNumber: ra.ItemNumber,
			Title:      ra.Title,
			Session:    session,
		})
	}

	return records, skipped
}

// Documents flattens agenda-item groups into one record per document. A
// document missing an id falls back to its symbol for identity.
func (n *Normalizer) Documents(raw []json.RawMessage, session string) ([]models.Document, int) {
	var records []models.Document

	skipped := 0

	for i, item := range raw {
		var group models.RawDocumentGroup
		if err := json.Unmarshal(item, &group); err != nil {
			n.warnMalformed(models.CategoryDocuments, i, "undecodable group", err)
			skipped++

			continue
		}

		for _, doc := range group.Documents {
			id := doc.ID
			if id == "" {
				id = doc.Symbol
			}

			title := doc.OfficialTitle
			if title == "" {
				title = doc.WorkingTitle
			}

			if id == "" || title == "" {
				n.warnIncomplete(models.CategoryDocuments, i, id, title)
				skipped++

				continue
			}

			records = append(records, models.Document{
				ID:           id,
				Symbol:       doc.Symbol,
				Title:        title,
				DocumentType: doc.DocumentType,
				Date:         doc.OfficialDate,
				AgendaTitle:  group.AgendaTitle,
				AgendaItem:   group.AgendaItem,
				Session:      session,
			})
		}
	}

	if records == nil {
		records = []models.Document{}
	}

	return records, skipped
}

// Decisions normalizes raw decision items.
func (n *Normalizer) Decisions(raw []json.RawMessage, session string) ([]models.Decision, int) {
	records := make([]models.Decision, 0, len(raw))
	skipped := 0

	for i, item := range raw {
		var rd models.RawDecision
		if err := json.Unmarshal(item, &rd); err != nil {
			n.warnMalformed(models.CategoryDecisions, i, "undecodable item", err)
			skipped++

			continue
		}

		if rd.ID == "" || rd.Title == "" {
			n.warnIncomplete(models.CategoryDecisions, i, rd.ID, rd.Title)
			skipped++

			continue
		}

		records = append(records, models.Decision{
			ID:      rd.ID,
			Number:  rd.Number,
			Title:   rd.Title,
			Date:    rd.Date,
			Session: session,
		})
	}

	return records, skipped
}

// Proposals normalizes raw proposal items for one committee (or the
// plenary, with an empty committee name).
func (n *Normalizer) Proposals(raw []json.RawMessage, session, committee string) ([]models.Proposal, int) {
	records := make([]models.Proposal, 0, len(raw))
	skipped := 0

	for i, item := range raw {
		var rp models.RawProposal
		if err := json.Unmarshal(item, &rp); err != nil {
			n.warnMalformed(models.CategoryProposals, i, "undecodable item", err)
			skipped++

			continue
		}

		id := rp.ID
		if id == "" {
			id = rp.Symbol
		}

		if id == "" || rp.Title == "" {
			n.warnIncomplete(models.CategoryProposals, i, id, rp.Title)
			skipped++

			continue
		}

		records = append(records, models.Proposal{
			ID:        id,
			Symbol:    rp.Symbol,
			Title:     rp.Title,
			Sponsor:   rp.Sponsor,
			Status:    rp.Status,
			Committee: committee,
			Session:   session,
		})
	}

	return records, skipped
}

func (n *Normalizer) warnMalformed(category models.Category, index int, reason string, err error) {
	n.logger.Warn("skipping malformed item",
		"category", category,
		"index", index,
		"reason", reason,
		"err", err,
	)
}

func (n *Normalizer) warnIncomplete(category models.Category, index int, id, title string) {
	n.logger.Warn("skipping item missing required fields",
		"category", category,
		"index", index,
		"id", id,
		"title", runewidth.Truncate(title, titleWidth, "…"),
	)
}
