package detect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.Local)

func TestDetectWeeksLongPattern(t *testing.T) {
	weeks := DetectWeeks([]string{"Ali Veli Planlanan 10.03.2025-14.03.2025.xlsx"}, testNow)
	require.Len(t, weeks, 1)
	w := weeks[0]
	assert.Equal(t, "10-14 Mart 2025", w.Label)
	assert.Equal(t, "10.03.2025", w.StartText)
	assert.Equal(t, "14.03.2025", w.EndText)
	assert.Equal(t, 10, w.Start.Day())
	assert.Equal(t, 14, w.End.Day())
	assert.False(t, w.End.Before(w.Start))
}

func TestDetectWeeksShortPatternUsesFallbackYear(t *testing.T) {
	names := []string{
		"26-30 OCAK Ali Veli Planlanan Ziyaret Formu.xlsx",
		"Ayşe Kaya Yapılan 02.12.2024-06.12.2024.xlsx",
	}
	weeks := DetectWeeks(names, testNow)
	require.Len(t, weeks, 2)
	assert.Equal(t, "26-30 Ocak 2024", weeks[0].Label)
	assert.Equal(t, "02-06 Aralık 2024", weeks[1].Label)
	assert.Equal(t, 2024, NewWeekIndex(names, testNow).FallbackYear())
}

func TestDetectWeeksShortPatternDefaultsToCurrentYear(t *testing.T) {
	weeks := DetectWeeks([]string{"2-6 şubat Ali Veli Sipariş Formu.xlsx"}, testNow)
	require.Len(t, weeks, 1)
	assert.Equal(t, "02-06 Şubat 2025", weeks[0].Label)
	assert.Equal(t, "02.02.2025", weeks[0].StartText)
}

func TestDetectWeeksShortPatternPrefersYearInName(t *testing.T) {
	names := []string{
		"26-30 OCAK 2026 Ali Veli Planlanan.xlsx",
		"Ali Veli 02.12.2024-06.12.2024.xlsx",
	}
	weeks := DetectWeeks(names, testNow)
	require.Len(t, weeks, 2)
	assert.Equal(t, "26-30 Ocak 2026", weeks[1].Label)
}

func TestDetectWeeksDedupAcrossPatterns(t *testing.T) {
	names := []string{
		"Ali Veli Planlanan 03.02.2025-07.02.2025.xlsx",
		"3-7 ŞUBAT 2025 Ali Veli Yapılan.xlsx",
		"03-07 Şubat Ayşe Kaya Sipariş.xlsx",
	}
	weeks := DetectWeeks(names, testNow)
	require.Len(t, weeks, 1)
	assert.Equal(t, "03-07 Şubat 2025", weeks[0].Label)
}

func TestDetectWeeksSkipsInvalidDates(t *testing.T) {
	names := []string{
		"Ali Veli 30.02.2025-05.03.2025.xlsx",
		"31-32 OCAK Ali Veli Planlanan.xlsx",
		"29-30 ŞUBAT 2025 Ali Veli Planlanan.xlsx",
		"Ali Veli Planlanan.xlsx",
		"5-9 MAYIS Ali Veli Planlanan.xlsx",
	}
	weeks := DetectWeeks(names, testNow)
	require.Len(t, weeks, 1)
	assert.Equal(t, "05-09 Mayıs 2025", weeks[0].Label)
}

func TestDetectWeeksIgnoresUnknownMonthToken(t *testing.T) {
	weeks := DetectWeeks([]string{"26-30 FOO Ali Veli Planlanan.xlsx"}, testNow)
	assert.Empty(t, weeks)
}

func TestDetectWeeksSortedAscending(t *testing.T) {
	names := []string{
		"14-18 NISAN Ali Veli Planlanan.xlsx",
		"3-7 MART Ali Veli Planlanan.xlsx",
		"7-11 NISAN Ali Veli Planlanan.xlsx",
	}
	weeks := DetectWeeks(names, testNow)
	require.Len(t, weeks, 3)
	for i := 1; i < len(weeks); i++ {
		assert.True(t, weeks[i-1].Start.Before(weeks[i].Start), "weeks not sorted: %v", weeks)
	}
}

func TestWeekIndexLookup(t *testing.T) {
	names := []string{
		"26-30 OCAK Ali Veli Planlanan Ziyaret Formu.xlsx",
		"Ali Veli Yapılan 26.01.2025-30.01.2025.xlsx",
		"Ali Veli Yapılan.xlsx",
	}
	idx := NewWeekIndex(names, testNow)
	require.Len(t, idx.Weeks(), 1)

	w, ok := idx.Lookup(names[1])
	require.True(t, ok)
	assert.Equal(t, "26-30 Ocak 2025", w.Label)

	_, ok = idx.Lookup(names[2])
	assert.False(t, ok)

	_, ok = idx.Lookup("2-6 ŞUBAT Ali Veli Planlanan.xlsx")
	assert.False(t, ok, "weeks outside the detected set must not resolve")
}

func TestParseDisplayDate(t *testing.T) {
	d, ok := ParseDisplayDate("5.2.2025")
	require.True(t, ok)
	assert.Equal(t, time.February, d.Month())
	assert.Equal(t, 5, d.Day())

	_, ok = ParseDisplayDate("31.02.2025")
	assert.False(t, ok)
	_, ok = ParseDisplayDate("next week")
	assert.False(t, ok)
}

func TestDayName(t *testing.T) {
	assert.Equal(t, "Pazartesi", DayName(time.Monday))
	assert.Equal(t, "Pazar", DayName(time.Sunday))
}
