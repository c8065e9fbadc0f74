package normalizer

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"unigov/internal/logger"
	"unigov/internal/models"
	"unigov/internal/steps"

	"github.com/stretchr/testify/require"
)

func newTestNormalizer(t *testing.T) (*Normalizer, *bytes.Buffer) {
	t.Helper()

	renderer, err := steps.NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "warn", "text")

	return New(renderer, log), &buf
}

func rawItems(t *testing.T, items ...string) []json.RawMessage {
	t.Helper()

	raw := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		raw = append(raw, json.RawMessage(item))
	}

	return raw
}

func countWarnings(buf *bytes.Buffer) int {
	return strings.Count(buf.String(), "level=WARN")
}

func TestMeetings(t *testing.T) {
	n, _ := newTestNormalizer(t)

	raw := rawItems(t,
		`{"id": "m-1", "MTG_title": "1st plenary meeting", "MTG_date": "2025-09-09",
		  "procedureSteps": [{"PS_type_label": "Opening of the meeting", "seqNo": "1.01"}]}`,
		`{"id": "m-2", "MTG_title": "2nd plenary meeting", "MTG_date": "2025-09-10"}`,
	)

	records, skipped := n.Meetings(raw, "80", "plenary")
	require.Equal(t, 0, skipped)
	require.Len(t, records, 2)

	require.Equal(t, "m-1", records[0].ID)
	require.Equal(t, "1st plenary meeting", records[0].Title)
	require.Equal(t, "80", records[0].Session)
	require.Equal(t, "plenary", records[0].Body)
	require.Len(t, records[0].Steps, 1)
	require.Equal(t, "The meeting was called to order.", records[0].Steps[0].Text)
}

func TestMeetings_SkipsIncompleteWithOneWarning(t *testing.T) {
	n, buf := newTestNormalizer(t)

	raw := rawItems(t,
		`{"id": "m-1", "MTG_title": "1st plenary meeting"}`,
		`{"id": "m-2"}`,
		`{"id": "m-3", "MTG_title": "3rd plenary meeting"}`,
	)

	records, skipped := n.Meetings(raw, "80", "plenary")
	require.Equal(t, 1, skipped)
	require.Len(t, records, 2)
	require.Equal(t, "m-1", records[0].ID)
	require.Equal(t, "m-3", records[1].ID)

	require.Equal(t, 1, countWarnings(buf))
}

func TestMeetings_SkipsUndecodableItem(t *testing.T) {
	n, buf := newTestNormalizer(t)

	raw := rawItems(t,
		`{"id": "m-1", "MTG_title": "1st plenary meeting"}`,
		`"not an object"`,
	)

	records, skipped := n.Meetings(raw, "80", "plenary")
	require.Equal(t, 1, skipped)
	require.Len(t, records, 1)
	require.Equal(t, 1, countWarnings(buf))
}

func TestAgendaItems(t *testing.T) {
	n, _ := newTestNormalizer(t)

	raw := rawItems(t,
		`{"id": "ag-1", "AG_Item": "8", "AG_Title": "General debate"}`,
		`{"id": "ag-2", "AG_Title": "Report of the Secretary-General"}`,
	)

	records, skipped := n.AgendaItems(raw, "80")
	require.Equal(t, 0, skipped)
	require.Len(t, records, 2)
	require.Equal(t, "8", records[0].ItemNumber)
	require.Equal(t, "General debate", records[0].Title)
	require.Equal(t, "80", records[1].Session)
}

func TestDocuments_FlattensGroups(t *testing.T) {
	n, _ := newTestNormalizer(t)

	raw := rawItems(t,
		`{"AG_Title": "General debate", "AG_Item": "8", "documents": [
			{"id": "d-1", "DD_symbol1": "A/80/100", "DD_officialTitle": "Report A", "DD_documentType": "Report", "DD_officialDate": "2025-09-01"},
			{"id": "d-2", "DD_symbol1": "A/80/101", "DD_officialTitle": "Report B"}
		]}`,
		`{"AG_Title": "Elections", "AG_Item": "113", "documents": [
			{"id": "d-3", "DD_symbol1": "A/80/102", "DD_officialTitle": "Note"}
		]}`,
	)

	records, skipped := n.Documents(raw, "80")
	require.Equal(t, 0, skipped)
	require.Len(t, records, 3)

	require.Equal(t, "General debate", records[0].AgendaTitle)
	require.Equal(t, "8", records[0].AgendaItem)
	require.Equal(t, "Elections", records[2].AgendaTitle)
}

func TestDocuments_IDAndTitleFallbacks(t *testing.T) {
	n, _ := newTestNormalizer(t)

	raw := rawItems(t,
		`{"AG_Title": "General debate", "AG_Item": "8", "documents": [
			{"DD_symbol1": "A/80/100", "DD_workingTitle": "Working title only"}
		]}`,
	)

	records, skipped := n.Documents(raw, "80")
	require.Equal(t, 0, skipped)
	require.Len(t, records, 1)
	require.Equal(t, "A/80/100", records[0].ID)
	require.Equal(t, "Working title only", records[0].Title)
}

func TestDocuments_EmptyInputYieldsEmptySlice(t *testing.T) {
	n, _ := newTestNormalizer(t)

	records, skipped := n.Documents(nil, "80")
	require.Equal(t, 0, skipped)
	require.NotNil(t, records)
	require.Empty(t, records)
}

func TestDecisions(t *testing.T) {
	n, buf := newTestNormalizer(t)

	raw := rawItems(t,
		`{"id": "dc-1", "DC_number": "80/501", "DC_title": "Organization of work", "DC_date": "2025-09-09"}`,
		`{"DC_number": "80/502"}`,
	)

	records, skipped := n.Decisions(raw, "80")
	require.Equal(t, 1, skipped)
	require.Len(t, records, 1)
	require.Equal(t, "80/501", records[0].Number)
	require.Equal(t, 1, countWarnings(buf))
}

func TestProposals_CommitteeAndSymbolFallback(t *testing.T) {
	n, _ := newTestNormalizer(t)

	raw := rawItems(t,
		`{"symbol": "A/C.1/80/L.1", "title": "Nuclear disarmament", "sponsor": "Mexico", "status": "Adopted"}`,
	)

	records, skipped := n.Proposals(raw, "80", "c1")
	require.Equal(t, 0, skipped)
	require.Len(t, records, 1)
	require.Equal(t, "A/C.1/80/L.1", records[0].ID)
	require.Equal(t, "c1", records[0].Committee)
}

func TestNormalize_Dispatch(t *testing.T) {
	n, _ := newTestNormalizer(t)

	raw := rawItems(t, `{"id": "dc-1", "DC_number": "80/501", "DC_title": "Organization of work"}`)

	out, skipped, err := n.Normalize(models.CategoryDecisions, raw, "80", "plenary", "")
	require.NoError(t, err)
	require.Equal(t, 0, skipped)

	records, ok := out.([]models.Decision)
	require.True(t, ok)
	require.Len(t, records, 1)
}

func TestNormalize_UnknownCategory(t *testing.T) {
	n, _ := newTestNormalizer(t)

	_, _, err := n.Normalize(models.Category("minutes"), nil, "80", "plenary", "")
	require.ErrorIs(t, err, ErrUnknownCategory)
}
