package cleaning

import (
	"fmt"
	"strings"
)

// Entry is one correction or rejection from range validation. The report is
// append-only; nothing downstream parses it back.
type Entry struct {
	Field    string
	Product  string
	Original string
	Result   string
	Rule     string
}

type droppedColumn struct {
	Name    string
	Missing int
	Rows    int
}

// Report is the audit trail of a cleaning run. Every value the engine
// alters or rejects lands here; the cleaned dataset never silently
// diverges from the raw one.
type Report struct {
	RowsIn  int
	RowsOut int

	FailedRowsDropped  int
	UnnamedRowsDropped int
	NoPriceRowsDropped int
	UnknownColumns     []string

	DroppedColumns []droppedColumn

	Corrections []Entry
	Rejections  []Entry

	DuplicatesRemoved int
}

func (r *Report) AddCorrection(field, product, original, corrected, rule string) {
	r.Corrections = append(r.Corrections, Entry{
		Field: field, Product: product, Original: original, Result: corrected, Rule: rule,
	})
}

func (r *Report) AddRejection(field, product, original, rule string) {
	r.Rejections = append(r.Rejections, Entry{
		Field: field, Product: product, Original: original, Result: "null", Rule: rule,
	})
}

// Render serializes the report as sectioned plain text.
func (r *Report) Render() string {
	var b strings.Builder

	section := func(title string) {
		b.WriteString("\n" + title + "\n")
		b.WriteString(strings.Repeat("-", 20) + "\n")
	}

	b.WriteString("DATA CLEANING REPORT\n")
	b.WriteString(strings.Repeat("=", 40) + "\n")

	section("1. SCHEMA NORMALIZATION")
	fmt.Fprintf(&b, "Rows in raw dataset: %d\n", r.RowsIn)
	fmt.Fprintf(&b, "Rows dropped (fetch failed): %d\n", r.FailedRowsDropped)
	fmt.Fprintf(&b, "Rows dropped (missing product name): %d\n", r.UnnamedRowsDropped)
	fmt.Fprintf(&b, "Unknown columns dropped: %d\n", len(r.UnknownColumns))
	for _, col := range r.UnknownColumns {
		fmt.Fprintf(&b, "  - %s\n", col)
	}

	section("2. COLUMN PRUNING")
	fmt.Fprintf(&b, "Columns dropped for excessive missingness: %d\n", len(r.DroppedColumns))
	for _, col := range r.DroppedColumns {
		fmt.Fprintf(&b, "  - %s (missing %d/%d rows)\n", col.Name, col.Missing, col.Rows)
	}

	section("3. RANGE VALIDATION")
	fmt.Fprintf(&b, "Corrections applied: %d\n", len(r.Corrections))
	for _, e := range r.Corrections {
		fmt.Fprintf(&b, "  - [%s] %s for %q: %s -> %s\n", e.Rule, e.Field, e.Product, e.Original, e.Result)
	}
	fmt.Fprintf(&b, "Rejections: %d\n", len(r.Rejections))
	for _, e := range r.Rejections {
		fmt.Fprintf(&b, "  - [%s] %s for %q: %s (field set to null)\n", e.Rule, e.Field, e.Product, e.Original)
	}
	fmt.Fprintf(&b, "Rows dropped (no valid price): %d\n", r.NoPriceRowsDropped)

	section("4. DEDUPLICATION")
	fmt.Fprintf(&b, "Duplicate rows removed: %d\n", r.DuplicatesRemoved)

	section("5. RESULT")
	fmt.Fprintf(&b, "Rows in cleaned dataset: %d\n", r.RowsOut)

	return b.String()
}
