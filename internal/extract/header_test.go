package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveHeaderFirstKeywordRow(t *testing.T) {
	s := NewSheet("Sheet1", [][]string{
		{"HAFTALIK ZİYARET PLANI"},
		{"Lokasyon", "Müşteri Adı", "Tarih"},
		{"İzmir", "ABC Ltd", "2025-01-27"},
	})
	h := ResolveHeader(s)
	assert.Equal(t, 2, h.Row)
	assert.False(t, h.EmbeddedOrder)
	assert.Equal(t, 1, h.Col(FieldLocation))
	assert.Equal(t, 2, h.Col(FieldCustomer))
	assert.Equal(t, 3, h.Col(FieldDate))
}

func TestResolveHeaderEmbeddedOrderOverridesEarlierRow(t *testing.T) {
	s := NewSheet("Sheet1", [][]string{
		{"YAPILAN ZİYARETLER"},
		{"Müşteri bilgileri"},
		{"Müşteri", "Ürün Adı", "Adet", "Birim Fiyat"},
		{"ABC Ltd", "Kalem", "5", "10"},
	})
	h := ResolveHeader(s)
	assert.Equal(t, 3, h.Row)
	assert.True(t, h.EmbeddedOrder)
	assert.Equal(t, 2, h.Col(FieldProduct))
	assert.Equal(t, 3, h.Col(FieldQuantity))
	assert.Equal(t, 4, h.Col(FieldPrice))
}

func TestResolveHeaderOnlyScansFirstFiveRows(t *testing.T) {
	rows := [][]string{{"a"}, {"b"}, {"c"}, {"d"}, {"e"}, {"Müşteri"}}
	h := ResolveHeader(NewSheet("Sheet1", rows))
	assert.Equal(t, 3, h.Row)
	assert.False(t, h.Has(FieldCustomer))
}

func TestResolveHeaderDefaultsForShortSheet(t *testing.T) {
	h := ResolveHeader(NewSheet("Sheet1", [][]string{{"x"}, {"y"}}))
	assert.Equal(t, 1, h.Row)

	h = ResolveHeader(NewSheet("Sheet1", nil))
	assert.Equal(t, 1, h.Row)
	assert.Empty(t, h.Columns)
}

func TestMapColumnsFirstMatchWinsPerField(t *testing.T) {
	s := NewSheet("Sheet1", [][]string{{
		"Görüşülen Firma",
		"Müşteri Notu",
		"Yetkili Kişi",
		"İletişim Numarası",
		"İl",
		"Görüşme Tarihi",
		"Ziyaret Tarihi",
		"Gün",
		"Görüşme Süresi",
		"Notlar",
		"Telefon",
	}})
	cols := MapColumns(s, 1)
	want := map[Field]int{
		FieldCustomer: 1,
		FieldNotes:    2,
		FieldContact:  3,
		FieldPhone:    4,
		FieldLocation: 5,
		FieldDate:     7,
		FieldDay:      8,
		FieldDuration: 9,
	}
	require.Equal(t, want, cols)
}

func TestMapColumnsLocationMatchesLiteralIl(t *testing.T) {
	s := NewSheet("Sheet1", [][]string{{"Müşteri", "(il)", "İL)"}})
	cols := MapColumns(s, 1)
	assert.Equal(t, 3, cols[FieldLocation])
}

func TestFieldString(t *testing.T) {
	assert.Equal(t, "customer", FieldCustomer.String())
	assert.Equal(t, "notes", FieldNotes.String())
	assert.Equal(t, "unknown", Field(99).String())
}
