// Package models defines the normalized record types persisted between the
// scrape and build phases.
package models

// Category identifies one of the tracked iGov content types.
type Category string

// Tracked categories.
const (
	CategoryMeetings  Category = "meetings"
	CategoryAgenda    Category = "agenda"
	CategoryDocuments Category = "documents"
	CategoryDecisions Category = "decisions"
	CategoryProposals Category = "proposals"
)

// AllCategories returns the five tracked categories in display order.
func AllCategories() []Category {
	return []Category{
		CategoryMeetings,
		CategoryAgenda,
		CategoryDocuments,
		CategoryDecisions,
		CategoryProposals,
	}
}

// IsValid reports whether c is one of the tracked categories.
func (c Category) IsValid() bool {
	switch c {
	case CategoryMeetings, CategoryAgenda, CategoryDocuments, CategoryDecisions, CategoryProposals:
		return true
	}

	return false
}

// Speaker is a participant attached to a rendered procedure step.
type Speaker struct {
	Name string `json:"name"`
}

// RenderedStep is a procedure step rendered to display text.
type RenderedStep struct {
	TypeLabel string    `json:"typeLabel"`
	Text      string    `json:"text"`
	Speakers  []Speaker `json:"speakers"`
	SeqNo     string    `json:"seqNo"`
	Segment   int       `json:"segment"`
}

// Meeting is a plenary or committee meeting record.
type Meeting struct {
	ID      string         `json:"id"`
	Title   string         `json:"title"`
	Date    string         `json:"date"`
	Session string         `json:"session"`
	Body    string         `json:"body"`
	Steps   []RenderedStep `json:"steps"`
}

// AgendaItem is a single item on a session agenda.
type AgendaItem struct {
	ID         string `json:"id"`
	ItemNumber string `json:"itemNumber"`
	Title      string `json:"title"`
	Session    string `json:"session"`
}

// Document is an official document issued under an agenda item.
type Document struct {
	ID           string `json:"id"`
	Symbol       string `json:"symbol"`
	Title        string `json:"title"`
	DocumentType string `json:"documentType"`
	Date         string `json:"date"`
	AgendaTitle  string `json:"agendaTitle"`
	AgendaItem   string `json:"agendaItem"`
	Session      string `json:"session"`
}

// Decision is an adopted GA decision.
type Decision struct {
	ID      string `json:"id"`
	Number  string `json:"number"`
	Title   string `json:"title"`
	Date    string `json:"date"`
	Session string `json:"session"`
}

// Proposal is a draft resolution or decision before a body.
type Proposal struct {
	ID        string `json:"id"`
	Symbol    string `json:"symbol"`
	Title     string `json:"title"`
	Sponsor   string `json:"sponsor"`
	Status    string `json:"status"`
	Committee string `json:"committee"`
	Session   string `json:"session"`
}
