// Package report derives the report views of an aggregation result and
// renders them into the consolidated workbook.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/masterdata/internal/aggregate"
	"github.com/verte-zerg/masterdata/internal/detect"
	"github.com/verte-zerg/masterdata/internal/model"
	"github.com/verte-zerg/masterdata/internal/textnorm"
)

const calendarMaxCustomers = 5

// repWeek keys per-representative, per-week tallies.
type repWeek struct {
	rep  string
	week string
}

type repDate struct {
	rep  string
	date string
}

// InventoryRow is one expected submission and whether it arrived.
type InventoryRow struct {
	Rep     string
	Week    string
	Type    model.DocType
	File    string
	Present bool
	Records int
}

// Note returns the inventory remark for the row.
func (r InventoryRow) Note() string {
	switch {
	case !r.Present:
		return "MANUEL GİRİŞ GEREKLİ"
	case r.Records == 0:
		return "Veri yok"
	default:
		return fmt.Sprintf("%d kayıt", r.Records)
	}
}

// Inventory lists every representative × week × type slot.
func Inventory(res *aggregate.Result) []InventoryRow {
	planned, completed, orders := countByRepWeek(res)
	rows := make([]InventoryRow, 0, len(res.Reps)*len(res.Weeks)*len(model.DocTypes))
	for _, rep := range res.Reps {
		for _, w := range res.Weeks {
			key := repWeek{rep: rep, week: w.Label}
			for _, t := range model.DocTypes {
				row := InventoryRow{Rep: rep, Week: w.Label, Type: t}
				row.File, row.Present = res.Status[model.StatusKey{Rep: rep, Week: w.Label, Type: t}]
				if row.Present {
					switch t {
					case model.DocPlanned:
						row.Records = planned[key]
					case model.DocCompleted:
						row.Records = completed[key]
					case model.DocOrder:
						row.Records = orders[key]
					}
				}
				rows = append(rows, row)
			}
		}
	}
	return rows
}

// MissingByType counts absent slots per document type.
func MissingByType(rows []InventoryRow) map[model.DocType]int {
	missing := make(map[model.DocType]int, len(model.DocTypes))
	for _, r := range rows {
		if !r.Present {
			missing[r.Type]++
		}
	}
	return missing
}

func countByRepWeek(res *aggregate.Result) (planned, completed, orders map[repWeek]int) {
	planned = make(map[repWeek]int)
	completed = make(map[repWeek]int)
	orders = make(map[repWeek]int)
	for _, p := range res.Planned {
		planned[repWeek{p.Rep, p.Week}]++
	}
	for _, c := range res.Completed {
		completed[repWeek{c.Rep, c.Week}]++
	}
	for _, o := range res.Orders {
		orders[repWeek{o.Rep, o.Week}]++
	}
	return planned, completed, orders
}

// SummaryRow holds the performance figures of one representative and week.
type SummaryRow struct {
	Rep       string
	Week      string
	Planned   int
	Completed int
	Orders    int
	Customers int
}

// Completion returns completed/planned as a whole percentage, or "-" when
// nothing was planned.
func (r SummaryRow) Completion() string {
	return completionPct(r.Completed, r.Planned)
}

// Summary is the performance table plus run totals.
type Summary struct {
	Rows      []SummaryRow
	Planned   int
	Completed int
	Orders    int
}

// Completion returns the overall completion percentage.
func (s Summary) Completion() string {
	return completionPct(s.Completed, s.Planned)
}

func completionPct(done, planned int) string {
	if planned <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", float64(done)/float64(planned)*100)
}

// Summarize builds the per representative × week performance table. Unique
// customers count completed visits and order lines.
func Summarize(res *aggregate.Result) Summary {
	planned, completed, orders := countByRepWeek(res)
	customers := make(map[repWeek]map[string]struct{})
	addCustomer := func(rep, week, name string) {
		if name == "" {
			return
		}
		key := repWeek{rep, week}
		if customers[key] == nil {
			customers[key] = make(map[string]struct{})
		}
		customers[key][textnorm.Normalize(name)] = struct{}{}
	}
	for _, c := range res.Completed {
		addCustomer(c.Rep, c.Week, c.Customer)
	}
	for _, o := range res.Orders {
		addCustomer(o.Rep, o.Week, o.Customer)
	}

	s := Summary{
		Planned:   len(res.Planned),
		Completed: len(res.Completed),
		Orders:    len(res.Orders),
	}
	for _, rep := range res.Reps {
		for _, w := range res.Weeks {
			key := repWeek{rep, w.Label}
			s.Rows = append(s.Rows, SummaryRow{
				Rep:       rep,
				Week:      w.Label,
				Planned:   planned[key],
				Completed: completed[key],
				Orders:    orders[key],
				Customers: len(customers[key]),
			})
		}
	}
	return s
}

// CalendarDay is one weekday row of the weekly calendar.
type CalendarDay struct {
	Week   string
	Day    string
	Date   string
	Offset int
	// Cells holds one entry per representative, in Result.Reps order.
	Cells []string
}

// CalendarWeek groups the weekday rows of one week.
type CalendarWeek struct {
	Label string
	Days  []CalendarDay
}

// Calendar lays out, per week and weekday, the distinct customers each
// representative planned or visited that day.
func Calendar(res *aggregate.Result) []CalendarWeek {
	byDate := make(map[repDate][]string)
	add := func(rep, date, customer string) {
		if date == "" {
			return
		}
		key := repDate{rep: rep, date: date}
		byDate[key] = append(byDate[key], customer)
	}
	for _, p := range res.Planned {
		add(p.Rep, p.Date, p.Customer)
	}
	for _, c := range res.Completed {
		add(c.Rep, c.Date, c.Customer)
	}

	weeks := make([]CalendarWeek, 0, len(res.Weeks))
	for _, w := range res.Weeks {
		cw := CalendarWeek{Label: w.Label}
		for offset, day := 0, w.Start; !day.After(w.End); offset, day = offset+1, day.AddDate(0, 0, 1) {
			if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
				continue
			}
			date := day.Format(detect.DateLayout)
			cd := CalendarDay{
				Week:   w.Label,
				Day:    detect.DayName(day.Weekday()),
				Date:   date,
				Offset: offset,
				Cells:  make([]string, len(res.Reps)),
			}
			for i, rep := range res.Reps {
				cd.Cells[i] = calendarCell(byDate[repDate{rep: rep, date: date}])
			}
			cw.Days = append(cw.Days, cd)
		}
		weeks = append(weeks, cw)
	}
	return weeks
}

func calendarCell(customers []string) string {
	seen := make(map[string]struct{}, len(customers))
	unique := make([]string, 0, len(customers))
	for _, c := range customers {
		key := textnorm.Normalize(c)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, c)
	}
	if len(unique) <= calendarMaxCustomers {
		return strings.Join(unique, ", ")
	}
	return fmt.Sprintf("%s (+%d)", strings.Join(unique[:calendarMaxCustomers], ", "), len(unique)-calendarMaxCustomers)
}

// SheetCount is the number of data rows a rendered sheet holds.
type SheetCount struct {
	Sheet string
	Rows  int
}

// SheetCounts returns the data row count of every sheet, in workbook order.
func SheetCounts(res *aggregate.Result, issues []model.Issue) []SheetCount {
	days := 0
	for _, w := range Calendar(res) {
		days += len(w.Days)
	}
	return []SheetCount{
		{SheetInventory, len(Inventory(res))},
		{SheetCalendar, days},
		{SheetPlanned, len(res.Planned)},
		{SheetCompleted, len(res.Completed)},
		{SheetOrders, len(res.Orders)},
		{SheetCustomers, len(res.Customers)},
		{SheetSummary, len(Summarize(res).Rows)},
		{SheetIssues, len(issues)},
	}
}
