package extract

import (
	"errors"
	"strings"

	"github.com/verte-zerg/masterdata/internal/textnorm"
)

// ErrNoCustomerColumn reports a sheet whose header has no customer column.
var ErrNoCustomerColumn = errors.New("no customer column in header")

// Field is a canonical column meaning.
type Field int

const (
	FieldCustomer Field = iota
	FieldContact
	FieldPhone
	FieldLocation
	FieldDate
	FieldDay
	FieldDuration
	FieldProduct
	FieldQuantity
	FieldPrice
	FieldNotes
)

var fieldNames = [...]string{
	FieldCustomer: "customer",
	FieldContact:  "contact",
	FieldPhone:    "phone",
	FieldLocation: "location",
	FieldDate:     "date",
	FieldDay:      "day",
	FieldDuration: "duration",
	FieldProduct:  "product",
	FieldQuantity: "quantity",
	FieldPrice:    "price",
	FieldNotes:    "notes",
}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return "unknown"
	}
	return fieldNames[f]
}

const (
	headerScanRows = 5
	dataScanCols   = 11
)

// Header is the resolved header row and its column mapping.
type Header struct {
	Row           int
	EmbeddedOrder bool
	Columns       map[Field]int
}

// Col returns the 1-based column of f, or 0 when unmapped.
func (h Header) Col(f Field) int {
	return h.Columns[f]
}

// Has reports whether f is mapped.
func (h Header) Has(f Field) bool {
	return h.Columns[f] > 0
}

// columnRule assigns field to the first column whose normalized label
// satisfies match.
type columnRule struct {
	field Field
	match func(label string) bool
}

func containsAny(label string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(label, kw) {
			return true
		}
	}
	return false
}

// columnRules is evaluated in order for each column. A rule whose field is
// already assigned is passed over, so a later rule may still claim the
// column.
var columnRules = []columnRule{
	{FieldCustomer, func(l string) bool { return containsAny(l, "MUSTERI", "GORUSULEN", "FIRMA") }},
	{FieldContact, func(l string) bool { return containsAny(l, "YETKILI", "KISI ADI") }},
	{FieldPhone, func(l string) bool { return containsAny(l, "ILETISIM", "NUMARA", "TELEFON") }},
	{FieldLocation, func(l string) bool {
		trimmed := strings.TrimSpace(l)
		return strings.Contains(l, "LOKASYON") || trimmed == "IL" || trimmed == "IL)"
	}},
	{FieldDate, func(l string) bool { return strings.Contains(l, "TARIH") && !strings.Contains(l, "GORUSME") }},
	{FieldDay, func(l string) bool { return strings.Contains(l, "GUN") }},
	{FieldDuration, func(l string) bool { return strings.Contains(l, "SURE") }},
	{FieldProduct, func(l string) bool { return strings.Contains(l, "URUN") }},
	{FieldQuantity, func(l string) bool { return strings.Contains(l, "ADET") }},
	{FieldPrice, func(l string) bool { return strings.Contains(l, "FIYAT") }},
	{FieldNotes, func(l string) bool { return strings.Contains(l, "NOT") && !strings.Contains(l, "NUMARA") }},
}

// ResolveHeader locates the header row among the first rows of s and maps
// its columns. A row naming product together with price or quantity wins
// outright and marks the sheet as carrying embedded order data; otherwise
// the first row naming location, customer or the met person is used.
func ResolveHeader(s *Sheet) Header {
	h := Header{}
	for row := 1; row <= headerScanRows && row <= s.MaxRow(); row++ {
		text := textnorm.Normalize(s.rowText(row))
		if strings.Contains(text, "URUN") && containsAny(text, "FIYAT", "ADET") {
			h.Row = row
			h.EmbeddedOrder = true
			break
		}
		if h.Row == 0 && containsAny(text, "LOKASYON", "MUSTERI", "GORUSULEN") {
			h.Row = row
		}
	}
	if h.Row == 0 {
		h.Row = 1
		if s.MaxRow() > 3 {
			h.Row = 3
		}
	}
	h.Columns = MapColumns(s, h.Row)
	return h
}

// MapColumns assigns each column of the given row to at most one field,
// first match wins per field.
func MapColumns(s *Sheet, row int) map[Field]int {
	cols := make(map[Field]int)
	for col := 1; col <= s.MaxCol(); col++ {
		label := textnorm.Normalize(s.Cell(row, col))
		if label == "" {
			continue
		}
		for _, rule := range columnRules {
			if _, taken := cols[rule.field]; taken {
				continue
			}
			if rule.match(label) {
				cols[rule.field] = col
				break
			}
		}
	}
	return cols
}
