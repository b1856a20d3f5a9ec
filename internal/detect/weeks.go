// Package detect infers reporting weeks, representatives and document types
// from source filenames.
package detect

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/masterdata/internal/model"
	"github.com/verte-zerg/masterdata/internal/textnorm"
)

var (
	longRangeRe  = regexp.MustCompile(`(\d{2})\.(\d{2})\.(\d{4})-(\d{2})\.(\d{2})\.(\d{4})`)
	longDateRe   = regexp.MustCompile(`\d{2}\.\d{2}\.(\d{4})`)
	shortRangeRe = regexp.MustCompile(`(\d{1,2})-(\d{1,2})\s+([A-Z]+)`)
	yearRe       = regexp.MustCompile(`20\d{2}`)
)

// monthTokens maps normalized Turkish month names to their month.
var monthTokens = map[string]time.Month{
	"OCAK":    time.January,
	"SUBAT":   time.February,
	"MART":    time.March,
	"NISAN":   time.April,
	"MAYIS":   time.May,
	"HAZIRAN": time.June,
	"TEMMUZ":  time.July,
	"AGUSTOS": time.August,
	"EYLUL":   time.September,
	"EKIM":    time.October,
	"KASIM":   time.November,
	"ARALIK":  time.December,
}

var monthDisplay = [...]string{
	time.January:   "Ocak",
	time.February:  "Şubat",
	time.March:     "Mart",
	time.April:     "Nisan",
	time.May:       "Mayıs",
	time.June:      "Haziran",
	time.July:      "Temmuz",
	time.August:    "Ağustos",
	time.September: "Eylül",
	time.October:   "Ekim",
	time.November:  "Kasım",
	time.December:  "Aralık",
}

var dayDisplay = [...]string{
	time.Monday:    "Pazartesi",
	time.Tuesday:   "Salı",
	time.Wednesday: "Çarşamba",
	time.Thursday:  "Perşembe",
	time.Friday:    "Cuma",
	time.Saturday:  "Cumartesi",
	time.Sunday:    "Pazar",
}

// MonthName returns the Turkish display name of m.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthDisplay[m]
}

// DayName returns the Turkish display name of d.
func DayName(d time.Weekday) string {
	return dayDisplay[d]
}

// DateLayout is the display layout for dates in reports.
const DateLayout = "02.01.2006"

// WeekIndex holds the weeks detected from a filename list and resolves
// individual filenames back to them.
type WeekIndex struct {
	weeks        []model.Week
	byKey        map[model.WeekKey]int
	fallbackYear int
}

// DetectWeeks returns the distinct weeks encoded in names, sorted ascending.
func DetectWeeks(names []string, now time.Time) []model.Week {
	return NewWeekIndex(names, now).Weeks()
}

// NewWeekIndex scans names for week ranges. now supplies the fallback year
// when no filename carries a full date.
func NewWeekIndex(names []string, now time.Time) *WeekIndex {
	idx := &WeekIndex{
		byKey:        make(map[model.WeekKey]int),
		fallbackYear: fallbackYear(names, now),
	}
	for _, name := range names {
		week, ok := idx.parse(name)
		if !ok {
			continue
		}
		if _, exists := idx.byKey[week.Key()]; exists {
			continue
		}
		idx.byKey[week.Key()] = len(idx.weeks)
		idx.weeks = append(idx.weeks, week)
	}
	sort.SliceStable(idx.weeks, func(i, j int) bool {
		a, b := idx.weeks[i], idx.weeks[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.End.Before(b.End)
	})
	for i, w := range idx.weeks {
		idx.byKey[w.Key()] = i
	}
	return idx
}

// Weeks returns a copy of the detected weeks in ascending order.
func (idx *WeekIndex) Weeks() []model.Week {
	out := make([]model.Week, len(idx.weeks))
	copy(out, idx.weeks)
	return out
}

// FallbackYear returns the year used for filenames without an explicit year.
func (idx *WeekIndex) FallbackYear() int {
	return idx.fallbackYear
}

// Lookup resolves the week a filename belongs to.
func (idx *WeekIndex) Lookup(name string) (model.Week, bool) {
	week, ok := idx.parse(name)
	if !ok {
		return model.Week{}, false
	}
	i, ok := idx.byKey[week.Key()]
	if !ok {
		return model.Week{}, false
	}
	return idx.weeks[i], true
}

func (idx *WeekIndex) parse(name string) (model.Week, bool) {
	if m := longRangeRe.FindStringSubmatch(name); m != nil {
		start, ok1 := makeDate(m[3], m[2], m[1])
		end, ok2 := makeDate(m[6], m[5], m[4])
		if ok1 && ok2 {
			return newWeek(start, end), true
		}
		return model.Week{}, false
	}

	m := shortRangeRe.FindStringSubmatch(textnorm.Normalize(name))
	if m == nil {
		return model.Week{}, false
	}
	month, ok := monthTokens[m[3]]
	if !ok {
		return model.Week{}, false
	}
	year := idx.fallbackYear
	if y := yearRe.FindString(name); y != "" {
		year, _ = strconv.Atoi(y)
	}
	startDay, _ := strconv.Atoi(m[1])
	endDay, _ := strconv.Atoi(m[2])
	start, ok1 := validDate(year, month, startDay)
	end, ok2 := validDate(year, month, endDay)
	if !ok1 || !ok2 {
		return model.Week{}, false
	}
	return newWeek(start, end), true
}

func newWeek(start, end time.Time) model.Week {
	return model.Week{
		Label:     fmt.Sprintf("%02d-%02d %s %d", start.Day(), end.Day(), MonthName(start.Month()), start.Year()),
		StartText: start.Format(DateLayout),
		EndText:   end.Format(DateLayout),
		Start:     start,
		End:       end,
	}
}

func fallbackYear(names []string, now time.Time) int {
	year := 0
	for _, name := range names {
		m := longDateRe.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		if y, err := strconv.Atoi(m[1]); err == nil && y > year {
			year = y
		}
	}
	if year == 0 {
		return now.Year()
	}
	return year
}

func makeDate(year, month, day string) (time.Time, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, false
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return time.Time{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return time.Time{}, false
	}
	return validDate(y, time.Month(m), d)
}

// validDate rejects values time.Date would silently roll over.
func validDate(year int, month time.Month, day int) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.Local)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// ParseDisplayDate parses a D.M.YYYY date as produced by the extractor.
// Unpadded day and month are accepted.
func ParseDisplayDate(s string) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	return makeDate(parts[2], parts[1], parts[0])
}
