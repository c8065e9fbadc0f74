package models

// Raw payload shapes as returned by the iGov API. Field names follow the
// upstream's prefixed keys; anything not listed here is dropped at the
// normalization boundary.

// RawMeeting mirrors one meeting item from meetings/getbysession.
type RawMeeting struct {
	ID    string           `json:"id"`
	Title string           `json:"MTG_title"`
	Date  string           `json:"MTG_date"`
	Steps []map[string]any `json:"procedureSteps"`
}

// RawAgendaItem mirrors one item from getlookups/getAgendas.
type RawAgendaItem struct {
	ID         string `json:"id"`
	ItemNumber string `json:"AG_Item"`
	Title      string `json:"AG_Title"`
}

// RawDocumentGroup mirrors one agenda-item group from
// meetings/getdocumentsbysession. Documents arrive grouped under their
// agenda item and are flattened during normalization.
type RawDocumentGroup struct {
	AgendaTitle string        `json:"AG_Title"`
	AgendaItem  string        `json:"AG_Item"`
	Documents   []RawDocument `json:"documents"`
}

// RawDocument mirrors one document inside a RawDocumentGroup.
type RawDocument struct {
	ID            string `json:"id"`
	Symbol        string `json:"DD_symbol1"`
	OfficialTitle string `json:"DD_officialTitle"`
	WorkingTitle  string `json:"DD_workingTitle"`
	DocumentType  string `json:"DD_documentType"`
	OfficialDate  string `json:"DD_officialDate"`
}

// RawDecision mirrors one item from decision/getbysession.
type RawDecision struct {
	ID     string `json:"id"`
	Number string `json:"DC_number"`
	Title  string `json:"DC_title"`
	Date   string `json:"DC_date"`
}

// RawProposal mirrors one item from the proposals endpoint.
type RawProposal struct {
	ID      string `json:"id"`
	Symbol  string `json:"symbol"`
	Title   string `json:"title"`
	Sponsor string `json:"sponsor"`
	Status  string `json:"status"`
}
