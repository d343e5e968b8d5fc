// Package observability renders human-readable progress and result
// summaries for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/jonathan/recycling-locator/internal/db"
	"github.com/jonathan/recycling-locator/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// previewMaterials is how many accepted materials a summary row shows
	previewMaterials = 3
	// columnWidth caps the name and address columns
	columnWidth = 40
)

// Printer handles formatted CLI output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintQuery announces the search about to run.
func (p *Printer) PrintQuery(q types.SearchQuery, searchURL string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Material:    %s\n", q.Material))
	sb.WriteString(fmt.Sprintf("Postal code: %s\n", q.PostalCode))
	if searchURL != "" {
		sb.WriteString(fmt.Sprintf("Directory:   %s\n", searchURL))
	}
	p.printBox("RECYCLING FACILITY SEARCH", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSyntheticNotice warns that the live directory could not be reached.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintSyntheticNotice(attempts int, cause error) {
	fmt.Fprintf(p.out, "⚠ All %d attempts failed, using sample listings for demonstration", attempts)
	if cause != nil {
		fmt.Fprintf(p.out, " (last error: %v)", cause)
	}
	fmt.Fprintln(p.out)
}

// PrintSummary reports where results were written and lists each record.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintSummary(results types.ResultSet, outputPath string) {
	fmt.Fprintf(p.out, "\n✅ Search completed successfully!\n")
	fmt.Fprintf(p.out, "📄 Results saved to: %s\n", outputPath)
	fmt.Fprintf(p.out, "📊 Total businesses found: %d\n\n", len(results))

	p.printBox("RESULTS SUMMARY", fmt.Sprintf("%d record(s)", len(results)))
	if len(results) == 0 {
		return
	}

	p.renderRecords(results)
}

func (p *Printer) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetStyle(table.StyleRounded)
	t.Style().Options.SeparateRows = true
	return t
}

func (p *Printer) renderRecords(results types.ResultSet) {
	t := p.newTable()
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: columnWidth},
		{Number: 3, WidthMax: columnWidth},
	})
	t.AppendHeader(table.Row{"#", "Business", "Address", "Category", "Accepts"})
	for i, r := range results {
		t.AppendRow(table.Row{i + 1, r.BusinessName, r.StreetAddress, r.MaterialsCategory, AcceptsPreview(r.MaterialsAccepted)})
	}
	t.Render()
}

// PrintRuns lists archived runs, newest first.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintRuns(runs []db.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(p.out, "No archived runs.")
		return
	}

	t := p.newTable()
	t.AppendHeader(table.Row{"Run ID", "Created", "Material", "Postal Code", "Source", "Attempts", "Fallbacks"})
	for _, r := range runs {
		t.AppendRow(table.Row{
			r.ID.String(),
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.Material,
			r.PostalCode,
			r.Source,
			r.Attempts,
			r.Fallbacks,
		})
	}
	t.AppendFooter(table.Row{"Total", len(runs)})
	t.Render()
}

// PrintArchivedRun shows one archived run and its records.
func (p *Printer) PrintArchivedRun(run db.Run, facilities []db.Facility) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:         %s\n", run.ID))
	sb.WriteString(fmt.Sprintf("Material:    %s\n", run.Material))
	sb.WriteString(fmt.Sprintf("Postal code: %s\n", run.PostalCode))
	sb.WriteString(fmt.Sprintf("Source:      %s (%d attempt(s))", run.Source, run.Attempts))
	p.printBox("ARCHIVED RUN", sb.String())

	records := make(types.ResultSet, 0, len(facilities))
	for _, f := range facilities {
		records = append(records, types.FacilityRecord{
			BusinessName:      f.BusinessName,
			LastUpdateDate:    f.LastUpdateDate,
			StreetAddress:     f.StreetAddress,
			MaterialsCategory: f.MaterialsCategory,
			MaterialsAccepted: f.MaterialsAccepted,
		})
	}
	if len(records) > 0 {
		p.renderRecords(records)
	}
}

// AcceptsPreview joins the first few accepted materials and appends "...".
func AcceptsPreview(materials []string) string {
	n := min(len(materials), previewMaterials)
	return strings.Join(materials[:n], ", ") + "..."
}
