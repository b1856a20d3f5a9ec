package summary

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/masterdata/internal/aggregate"
	"github.com/verte-zerg/masterdata/internal/model"
	"github.com/verte-zerg/masterdata/internal/report"
)

const timeLayout = "02.01.2006 15:04"

// Options controls console rendering.
type Options struct {
	// Color enables lipgloss accents for titles and failures.
	Color bool
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5FA8D3"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0A800"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5534B"))
)

func (o Options) paint(style lipgloss.Style, s string) string {
	if !o.Color {
		return s
	}
	return style.Render(s)
}

// RenderRun prints the end-of-run overview: detection totals, row count
// per sheet, missing submissions and files that did not contribute.
func RenderRun(w io.Writer, res *aggregate.Result, issues []model.Issue, output string, opts Options) error {
	var b strings.Builder
	b.WriteString(opts.paint(titleStyle, "Rapor: "+output))
	b.WriteByte('\n')
	fmt.Fprintf(&b, "Tespit: %d hafta, %d temsilci, %d dosya (%d atlandı)\n",
		len(res.Weeks), len(res.Reps), len(res.Files), res.Skipped())
	b.WriteByte('\n')

	counts := report.SheetCounts(res, issues)
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Sheet, strconv.Itoa(c.Rows)})
	}
	writeLines(&b, formatTable([]string{"Sayfa", "Kayıt"}, rows, map[int]bool{1: true}))

	missing := report.MissingByType(report.Inventory(res))
	parts := make([]string, 0, len(model.DocTypes))
	total := 0
	for _, t := range model.DocTypes {
		parts = append(parts, fmt.Sprintf("%s %d", t, missing[t]))
		total += missing[t]
	}
	line := "Eksik dosyalar: " + strings.Join(parts, ", ")
	if total > 0 {
		line = opts.paint(warnStyle, line)
	}
	b.WriteByte('\n')
	b.WriteString(line)
	b.WriteByte('\n')

	var skipped []model.FileOutcome
	for _, o := range res.Outcomes {
		if o.Status != model.FileProcessed {
			skipped = append(skipped, o)
		}
	}
	if len(skipped) > 0 {
		b.WriteByte('\n')
		b.WriteString(opts.paint(warnStyle, "Atlanan dosyalar:"))
		b.WriteByte('\n')
		writeLines(&b, outcomeLines(skipped))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderRuns prints run history as a plain table.
func RenderRuns(w io.Writer, runs []model.RunRecord, opts Options) error {
	if len(runs) == 0 {
		_, err := io.WriteString(w, "No runs recorded yet.\n")
		return err
	}
	headers := []string{"Zaman", "Durum", "Hafta", "Temsilci", "Planlanan", "Yapılan", "Sipariş", "Müşteri", "Sorun", "Dosya", "Klasör"}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, RunRow(r))
	}
	lines := formatTable(headers, rows, map[int]bool{2: true, 3: true, 4: true, 5: true, 6: true, 7: true, 8: true, 9: true})
	var b strings.Builder
	for i, line := range lines {
		if i > 0 && !runs[i-1].OK {
			line = opts.paint(errStyle, line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// RunRow formats a run as table cells.
func RunRow(r model.RunRecord) []string {
	status := "ok"
	if !r.OK {
		status = "hata"
	}
	files := strconv.Itoa(r.FilesTotal)
	if r.FilesSkipped > 0 {
		files = fmt.Sprintf("%d (-%d)", r.FilesTotal, r.FilesSkipped)
	}
	return []string{
		r.EndedAt.Local().Format(timeLayout),
		status,
		strconv.Itoa(r.Weeks),
		strconv.Itoa(r.Reps),
		strconv.Itoa(r.Planned),
		strconv.Itoa(r.Completed),
		strconv.Itoa(r.Orders),
		strconv.Itoa(r.Customers),
		strconv.Itoa(r.Issues),
		files,
		r.Dir,
	}
}

// RenderRunFiles prints the per-file outcomes of one run.
func RenderRunFiles(w io.Writer, files []model.FileOutcome) error {
	var b strings.Builder
	writeLines(&b, outcomeLines(files))
	_, err := io.WriteString(w, b.String())
	return err
}

func outcomeLines(files []model.FileOutcome) []string {
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		rows = append(rows, []string{f.Name, f.Type.String(), f.Status, f.Reason})
	}
	return formatTable([]string{"Dosya", "Tip", "Durum", "Neden"}, rows, nil)
}

func writeLines(b *strings.Builder, lines []string) {
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
}
