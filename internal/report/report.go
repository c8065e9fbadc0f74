// Package report accumulates per-unit outcomes of a scrape or build run and
// renders the end-of-run summary.
package report

import (
	"fmt"
	"io"

	"unigov/internal/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
)

// Unit statuses.
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// errWidth bounds error text in the rendered table.
const errWidth = 48

// Unit is the outcome of one (body, session, category) combination.
type Unit struct {
	Body     string
	Session  string
	Category models.Category
	Status   string
	Records  int
	Skipped  int
	Pages    int
	Err      error
}

// Report collects unit outcomes. A failed unit never aborts the run; it is
// recorded here and surfaced at the end.
type Report struct {
	units []Unit
}

// New creates an empty report.
func New() *Report {
	return &Report{}
}

// Add records one unit outcome.
func (r *Report) Add(unit Unit) {
	r.units = append(r.units, unit)
}

// Units returns the recorded outcomes in insertion order.
func (r *Report) Units() []Unit {
	return r.units
}

// Counts returns the number of ok, skipped and failed units.
func (r *Report) Counts() (ok, skipped, failed int) {
	for _, unit := range r.units {
		switch unit.Status {
		case StatusOK:
			ok++
		case StatusSkipped:
			skipped++
		case StatusFailed:
			failed++
		}
	}

	return ok, skipped, failed
}

// AllFailed reports whether every recorded unit failed. Used for the exit
// status: partial failure is reported but does not fail the run.
func (r *Report) AllFailed() bool {
	ok, skipped, failed := r.Counts()

	return failed > 0 && ok == 0 && skipped == 0
}

// Render writes the summary table and a totals line.
func (r *Report) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Body", "Session", "Category", "Status", "Records", "Skipped", "Pages", "Error"})

	for _, unit := range r.units {
		errText := ""
		if unit.Err != nil {
			errText = runewidth.Truncate(unit.Err.Error(), errWidth, "…")
		}

		t.AppendRow(table.Row{
			unit.Body,
			unit.Session,
			unit.Category,
			unit.Status,
			unit.Records,
			unit.Skipped,
			unit.Pages,
			errText,
		})
	}

	t.Render()

	ok, skipped, failed := r.Counts()
	fmt.Fprintf(w, "Units: %d ok, %d skipped, %d failed\n", ok, skipped, failed)
}
