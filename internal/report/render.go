package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/masterdata/internal/aggregate"
	"github.com/verte-zerg/masterdata/internal/model"
)

// Sheet titles, in workbook order.
const (
	SheetInventory = "Dosya Envanteri"
	SheetCalendar  = "Haftalık Takvim"
	SheetPlanned   = "Planlanan Ziyaretler"
	SheetCompleted = "Yapılan Ziyaretler"
	SheetOrders    = "Siparişler"
	SheetCustomers = "Müşteri Master"
	SheetSummary   = "Özet"
	SheetIssues    = "Veri Kalite Sorunları"
)

// SheetNames lists the rendered sheets in order.
var SheetNames = []string{
	SheetInventory,
	SheetCalendar,
	SheetPlanned,
	SheetCompleted,
	SheetOrders,
	SheetCustomers,
	SheetSummary,
	SheetIssues,
}

const (
	colorHeader    = "1F4E79"
	colorBorder    = "B0B0B0"
	colorWarn      = "FFF3CD"
	colorError     = "F8D7DA"
	colorOK        = "D4EDDA"
	colorBlue      = "D6EAF8"
	colorLight     = "FFF5F5"
	colorInfo      = "E3F2FD"
	colorPurple    = "EDE7F6"
	colorAuto      = "E8F5E9"
	colorCompleted = "F2FBF2"
	colorMuted     = "666666"

	fontFamily = "Arial"
	noFill     = ""
)

// column describes one table column.
type column struct {
	title string
	width float64
}

// styleSet caches style IDs of one workbook by fill and weight.
type styleSet struct {
	f      *excelize.File
	header int
	cells  map[cellStyle]int
}

type cellStyle struct {
	fill string
	bold bool
}

func newStyleSet(f *excelize.File) (*styleSet, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: fontFamily, Size: 10, Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{colorHeader}},
		Border:    thinBorder(),
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	return &styleSet{f: f, header: header, cells: make(map[cellStyle]int)}, nil
}

func thinBorder() []excelize.Border {
	sides := []string{"left", "right", "top", "bottom"}
	borders := make([]excelize.Border, 0, len(sides))
	for _, side := range sides {
		borders = append(borders, excelize.Border{Type: side, Color: colorBorder, Style: 1})
	}
	return borders
}

func (s *styleSet) cell(fill string, bold bool) (int, error) {
	key := cellStyle{fill: fill, bold: bold}
	if id, ok := s.cells[key]; ok {
		return id, nil
	}
	style := &excelize.Style{
		Font:      &excelize.Font{Family: fontFamily, Size: 10, Bold: bold},
		Border:    thinBorder(),
		Alignment: &excelize.Alignment{Vertical: "center", WrapText: true},
	}
	if fill != noFill {
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fill}}
	}
	id, err := s.f.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("failed to create cell style: %w", err)
	}
	s.cells[key] = id
	return id, nil
}

func (s *styleSet) font(size float64, bold bool, color string) (int, error) {
	id, err := s.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Family: fontFamily, Size: size, Bold: bold, Color: color},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create font style: %w", err)
	}
	return id, nil
}

// renderer writes one workbook.
type renderer struct {
	f      *excelize.File
	styles *styleSet
}

// Build renders the result and audit findings into a new workbook. The
// caller owns the returned file and must close it.
func Build(res *aggregate.Result, issues []model.Issue, now time.Time) (*excelize.File, error) {
	f := excelize.NewFile()
	styles, err := newStyleSet(f)
	if err != nil {
		closeQuietly(f)
		return nil, err
	}
	r := &renderer{f: f, styles: styles}

	if err := f.SetSheetName(f.GetSheetName(0), SheetInventory); err != nil {
		closeQuietly(f)
		return nil, fmt.Errorf("failed to name first sheet: %w", err)
	}
	for _, name := range SheetNames[1:] {
		if _, err := f.NewSheet(name); err != nil {
			closeQuietly(f)
			return nil, fmt.Errorf("failed to add sheet %q: %w", name, err)
		}
	}

	steps := []func() error{
		func() error { return r.inventory(res) },
		func() error { return r.calendar(res) },
		func() error { return r.planned(res) },
		func() error { return r.completed(res) },
		func() error { return r.orders(res) },
		func() error { return r.customers(res) },
		func() error { return r.summary(res, now) },
		func() error { return r.issues(issues) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			closeQuietly(f)
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func closeQuietly(f *excelize.File) {
	if cerr := f.Close(); cerr != nil {
		// Best-effort close of a discarded workbook.
		_ = cerr
	}
}

// table writes headers at headerRow and data rows beneath it, styling each
// data row with fillFor(i). It returns the last written row.
func (r *renderer) table(sheet, tab string, headerRow int, cols []column, rows [][]any, fillFor func(i int) string) (int, error) {
	if err := r.f.SetSheetProps(sheet, &excelize.SheetPropsOptions{TabColorRGB: &tab}); err != nil {
		return 0, fmt.Errorf("failed to set tab color of %q: %w", sheet, err)
	}
	titles := make([]any, len(cols))
	for i, c := range cols {
		titles[i] = c.title
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return 0, err
		}
		if err := r.f.SetColWidth(sheet, name, name, c.width); err != nil {
			return 0, fmt.Errorf("failed to set column width: %w", err)
		}
	}
	if err := r.writeRow(sheet, headerRow, titles, r.styles.header); err != nil {
		return 0, err
	}
	last := headerRow
	for i, row := range rows {
		style, err := r.styles.cell(fillFor(i), false)
		if err != nil {
			return 0, err
		}
		last = headerRow + 1 + i
		if err := r.writeRow(sheet, last, padRow(row, len(cols)), style); err != nil {
			return 0, err
		}
	}
	return last, nil
}

func (r *renderer) writeRow(sheet string, row int, values []any, style int) error {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	lastCell, err := excelize.CoordinatesToCellName(len(values), row)
	if err != nil {
		return err
	}
	if err := r.f.SetSheetRow(sheet, first, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %q: %w", row, sheet, err)
	}
	if err := r.f.SetCellStyle(sheet, first, lastCell, style); err != nil {
		return fmt.Errorf("failed to style row %d of %q: %w", row, sheet, err)
	}
	return nil
}

func padRow(row []any, width int) []any {
	if len(row) >= width {
		return row
	}
	out := make([]any, width)
	copy(out, row)
	for i := len(row); i < width; i++ {
		out[i] = ""
	}
	return out
}

// filterAndFreeze adds an autofilter over the table and freezes the rows
// above the data.
func (r *renderer) filterAndFreeze(sheet string, headerRow, cols, lastRow int) error {
	if lastRow < headerRow+1 {
		lastRow = headerRow + 1
	}
	from, err := excelize.CoordinatesToCellName(1, headerRow)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(cols, lastRow)
	if err != nil {
		return err
	}
	if err := r.f.AutoFilter(sheet, from+":"+to, nil); err != nil {
		return fmt.Errorf("failed to add autofilter to %q: %w", sheet, err)
	}
	topLeft, err := excelize.CoordinatesToCellName(1, headerRow+1)
	if err != nil {
		return err
	}
	if err := r.f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: headerRow, TopLeftCell: topLeft, ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("failed to freeze header of %q: %w", sheet, err)
	}
	return nil
}

func stripe(fill string) func(int) string {
	return func(i int) string {
		// Data starts on row 2: even sheet rows are striped.
		if i%2 == 0 {
			return fill
		}
		return noFill
	}
}

// dashZero shows zero counts as "-".
func dashZero(n int) any {
	if n == 0 {
		return "-"
	}
	return n
}

func dashEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (r *renderer) inventory(res *aggregate.Result) error {
	cols := []column{
		{"Temsilci", 22}, {"Hafta", 20}, {"Dosya Tipi", 20}, {"Dosya Adı", 55},
		{"Durum", 12}, {"Kayıt Sayısı", 14}, {"Notlar", 40},
	}
	inv := Inventory(res)
	rows := make([][]any, 0, len(inv))
	for _, item := range inv {
		status := "MEVCUT"
		if !item.Present {
			status = "EKSİK"
		}
		rows = append(rows, []any{item.Rep, item.Week, item.Type.String(), dashEmpty(item.File), status, dashZero(item.Records), item.Note()})
	}
	last, err := r.table(SheetInventory, colorHeader, 1, cols, rows, func(i int) string {
		if inv[i].Present {
			return colorOK
		}
		return colorError
	})
	if err != nil {
		return err
	}
	return r.filterAndFreeze(SheetInventory, 1, len(cols), last)
}

func (r *renderer) calendar(res *aggregate.Result) error {
	cols := []column{{"Hafta", 20}, {"Gün", 14}, {"Tarih", 14}}
	for _, rep := range res.Reps {
		cols = append(cols, column{rep + "\n(Ziyaret)", 30})
	}
	var (
		rows  [][]any
		fills []string
	)
	for _, week := range Calendar(res) {
		for _, day := range week.Days {
			row := []any{day.Week, day.Day, day.Date}
			for _, cell := range day.Cells {
				row = append(row, cell)
			}
			rows = append(rows, row)
			if day.Offset%2 == 0 {
				fills = append(fills, colorBlue)
			} else {
				fills = append(fills, noFill)
			}
		}
		// Blank spacer row between weeks.
		rows = append(rows, nil)
		fills = append(fills, noFill)
	}
	_, err := r.table(SheetCalendar, "2E7D32", 1, cols, rows, func(i int) string { return fills[i] })
	if err != nil {
		return err
	}
	return r.f.SetPanes(SheetCalendar, &excelize.Panes{Freeze: true, XSplit: 3, YSplit: 1, TopLeftCell: "D2", ActivePane: "bottomRight"})
}

func (r *renderer) planned(res *aggregate.Result) error {
	cols := []column{
		{"Temsilci", 20}, {"Hafta", 18}, {"Lokasyon", 16}, {"Müşteri", 30},
		{"Ziyaret Tarihi", 14}, {"Gün", 14}, {"Notlar", 40}, {"Kaynak", 30},
	}
	rows := make([][]any, 0, len(res.Planned))
	for _, p := range res.Planned {
		rows = append(rows, []any{p.Rep, p.Week, p.Location, p.Customer, p.Date, p.Day, p.Notes, p.Source})
	}
	last, err := r.table(SheetPlanned, "3F51B5", 1, cols, rows, stripe(colorAuto))
	if err != nil {
		return err
	}
	return r.filterAndFreeze(SheetPlanned, 1, len(cols), last)
}

func (r *renderer) completed(res *aggregate.Result) error {
	cols := []column{
		{"Temsilci", 20}, {"Hafta", 18}, {"Lokasyon", 16}, {"Müşteri", 30},
		{"Yetkili Kişi", 22}, {"İletişim No", 18}, {"Ziyaret Tarihi", 14}, {"Gün", 14},
		{"Görüşme Süresi", 12}, {"Notlar", 40}, {"Kaynak", 30},
	}
	rows := make([][]any, 0, len(res.Completed))
	for _, c := range res.Completed {
		rows = append(rows, []any{c.Rep, c.Week, c.Location, c.Customer, c.Contact, c.Phone, c.Date, c.Day, c.Duration, c.Notes, c.Source})
	}
	last, err := r.table(SheetCompleted, "2E7D32", 1, cols, rows, stripe(colorCompleted))
	if err != nil {
		return err
	}
	return r.filterAndFreeze(SheetCompleted, 1, len(cols), last)
}

func (r *renderer) orders(res *aggregate.Result) error {
	cols := []column{
		{"Temsilci", 20}, {"Hafta", 18}, {"Müşteri", 28}, {"Yetkili Kişi", 22},
		{"İletişim No", 18}, {"Sipariş Tarihi", 14}, {"Ürün Adı", 35}, {"Adet", 12},
		{"Fiyat", 16}, {"Kaynak", 30},
	}
	rows := make([][]any, 0, len(res.Orders))
	for _, o := range res.Orders {
		rows = append(rows, []any{o.Rep, o.Week, o.Customer, o.Contact, o.Phone, o.Date, o.Product, o.Quantity, o.Price, o.Source})
	}
	last, err := r.table(SheetOrders, "C62828", 1, cols, rows, stripe(colorLight))
	if err != nil {
		return err
	}
	return r.filterAndFreeze(SheetOrders, 1, len(cols), last)
}

func (r *renderer) customers(res *aggregate.Result) error {
	cols := []column{
		{"Müşteri / Firma Adı", 35}, {"Yetkili Kişi", 25}, {"İletişim No", 20},
		{"Lokasyon (İl)", 16}, {"Atanan Temsilci", 22}, {"Son Ziyaret Tarihi", 16}, {"Notlar", 40},
	}
	rows := make([][]any, 0, len(res.Customers))
	for _, c := range res.Customers {
		rows = append(rows, []any{c.Name, c.Contact, c.Phone, c.Location, c.Rep, c.LastDate, ""})
	}
	last, err := r.table(SheetCustomers, "FF6600", 1, cols, rows, stripe(colorLight))
	if err != nil {
		return err
	}
	return r.filterAndFreeze(SheetCustomers, 1, len(cols), last)
}

func (r *renderer) summary(res *aggregate.Result, now time.Time) error {
	title, err := r.styles.font(14, true, colorHeader)
	if err != nil {
		return err
	}
	muted, err := r.styles.font(10, false, colorMuted)
	if err != nil {
		return err
	}
	heading := []struct {
		cell  string
		value string
		style int
	}{
		{"A1", "SAHA SATIŞ HAFTALIK ÖZET RAPORU", title},
		{"A2", "Oluşturulma: " + now.Format("02.01.2006 15:04"), muted},
		{"A3", fmt.Sprintf("Kaynak: %d dosya | %d hafta | %d temsilci", len(res.Files), len(res.Weeks), len(res.Reps)), muted},
	}
	for _, h := range heading {
		if err := r.f.SetCellValue(SheetSummary, h.cell, h.value); err != nil {
			return fmt.Errorf("failed to write summary heading: %w", err)
		}
		if err := r.f.SetCellStyle(SheetSummary, h.cell, h.cell, h.style); err != nil {
			return fmt.Errorf("failed to style summary heading: %w", err)
		}
	}

	const headerRow = 5
	cols := []column{
		{"Temsilci", 22}, {"Hafta", 20}, {"Planlanan", 12}, {"Yapılan", 12},
		{"Gerçekleşme %", 14}, {"Sipariş Satırı", 14}, {"Benzersiz Müşteri", 16},
	}
	s := Summarize(res)
	rows := make([][]any, 0, len(s.Rows))
	for _, row := range s.Rows {
		rows = append(rows, []any{row.Rep, row.Week, dashZero(row.Planned), dashZero(row.Completed), row.Completion(), dashZero(row.Orders), dashZero(row.Customers)})
	}
	last, err := r.table(SheetSummary, "9C27B0", headerRow, cols, rows, func(int) string { return noFill })
	if err != nil {
		return err
	}

	total, err := r.styles.cell(colorPurple, true)
	if err != nil {
		return err
	}
	return r.writeRow(SheetSummary, last+1, []any{"TOPLAM", "", s.Planned, s.Completed, s.Completion(), s.Orders, ""}, total)
}

func (r *renderer) issues(issues []model.Issue) error {
	cols := []column{
		{"Öncelik", 12}, {"Kategori", 20}, {"Sorun Açıklaması", 50},
		{"Etkilenen Dosya", 45}, {"Çözüm Önerisi", 50}, {"Durum", 12},
	}
	rows := make([][]any, 0, len(issues))
	for _, is := range issues {
		rows = append(rows, []any{is.Priority, is.Category, is.Description, is.File, is.Fix, is.Status})
	}
	last, err := r.table(SheetIssues, "F44336", 1, cols, rows, func(i int) string {
		switch issues[i].Priority {
		case model.PriorityCritical:
			return colorError
		case model.PriorityHigh:
			return colorWarn
		default:
			return colorInfo
		}
	})
	if err != nil {
		return err
	}
	return r.filterAndFreeze(SheetIssues, 1, len(cols), last)
}
