package report

import (
	"bytes"
	"errors"
	"testing"

	"unigov/internal/models"

	"github.com/stretchr/testify/require"
)

func TestCounts(t *testing.T) {
	r := New()
	r.Add(Unit{Body: "plenary", Session: "80", Category: models.CategoryMeetings, Status: StatusOK})
	r.Add(Unit{Body: "plenary", Session: "80", Category: models.CategoryAgenda, Status: StatusSkipped})
	r.Add(Unit{Body: "c1", Session: "80", Category: models.CategoryProposals, Status: StatusFailed})
	r.Add(Unit{Body: "c2", Session: "80", Category: models.CategoryProposals, Status: StatusFailed})

	ok, skipped, failed := r.Counts()
	require.Equal(t, 1, ok)
	require.Equal(t, 1, skipped)
	require.Equal(t, 2, failed)
}

func TestAllFailed(t *testing.T) {
	r := New()
	require.False(t, r.AllFailed(), "empty report is not a total failure")

	r.Add(Unit{Status: StatusFailed})
	require.True(t, r.AllFailed())

	r.Add(Unit{Status: StatusSkipped})
	require.False(t, r.AllFailed(), "a skipped unit means the run was not a total failure")
}

func TestAllFailed_MixedOutcome(t *testing.T) {
	r := New()
	r.Add(Unit{Status: StatusOK})
	r.Add(Unit{Status: StatusFailed})

	require.False(t, r.AllFailed())
}

func TestRender(t *testing.T) {
	r := New()
	r.Add(Unit{
		Body:     "plenary",
		Session:  "80",
		Category: models.CategoryMeetings,
		Status:   StatusOK,
		Records:  6,
		Pages:    7,
	})
	r.Add(Unit{
		Body:     "c1",
		Session:  "80",
		Category: models.CategoryProposals,
		Status:   StatusFailed,
		Err:      errors.New("fetch failed after retries: unexpected status code: 500"),
	})

	var buf bytes.Buffer
	r.Render(&buf)

	out := buf.String()
	require.Contains(t, out, "plenary")
	require.Contains(t, out, "meetings")
	require.Contains(t, out, "ok")
	require.Contains(t, out, "failed")
	require.Contains(t, out, "Units: 1 ok, 0 skipped, 1 failed")

	// Long errors are truncated for the table.
	require.Contains(t, out, "…")
}
