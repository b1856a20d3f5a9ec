package extract

import (
	"regexp"
	"strings"

	"github.com/verte-zerg/masterdata/internal/model"
	"github.com/verte-zerg/masterdata/internal/textnorm"
)

// NoDetailProduct labels an order line that has a price or quantity but no
// product name.
const NoDetailProduct = "(Detaysız)"

// EmbeddedSuffix tags an order slot satisfied by a completed-visit file.
const EmbeddedSuffix = " (gömülü)"

var isoDatePrefixRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)

// Meta carries what the filename told us about a sheet.
type Meta struct {
	File string
	Rep  string
	Week string
	Type model.DocType
}

// carry holds values reused for rows whose merged cells were left blank.
type carry struct {
	customer string
	contact  string
	phone    string
	date     string
}

// row is one data row after carry-forward resolution.
type row struct {
	customer string
	contact  string
	phone    string
	date     string
	location string
	day      string
	duration string
	notes    string
	product  string
	quantity string
	price    string
}

// Extract resolves the header of s and extracts its rows into a batch. The
// batch carries the file's status claims even when ErrNoCustomerColumn is
// returned.
func Extract(s *Sheet, meta Meta) (*Batch, error) {
	header := ResolveHeader(s)
	batch := newBatch(meta, header)
	if !header.Has(FieldCustomer) {
		return batch, ErrNoCustomerColumn
	}
	ExtractRows(s, header, batch)
	return batch, nil
}

// ExtractRows walks the rows below the header and appends records to batch.
func ExtractRows(s *Sheet, header Header, batch *Batch) {
	var c carry
	for r := header.Row + 1; r <= s.MaxRow(); r++ {
		if !s.hasData(r, dataScanCols) {
			continue
		}
		rec, ok := c.resolve(s, header, r)
		if !ok {
			continue
		}
		batch.observe(rec)
		batch.emit(rec)
	}
}

// resolve applies carry-forward rules to row r. It reports false when the
// row has no customer of its own and none to inherit. The carried date is
// cleared only when the customer cell names a different customer; a row
// that restates the carried customer keeps inheriting its date.
func (c *carry) resolve(s *Sheet, h Header, r int) (row, bool) {
	customer := s.Cell(r, h.Col(FieldCustomer))
	if customer != "" {
		if customer != c.customer {
			c.date = ""
		}
		c.customer = customer
		c.contact = s.Cell(r, h.Col(FieldContact))
		c.phone = s.Cell(r, h.Col(FieldPhone))
	} else {
		customer = c.customer
	}
	if customer == "" {
		return row{}, false
	}

	rec := row{
		customer: customer,
		contact:  s.Cell(r, h.Col(FieldContact)),
		phone:    s.Cell(r, h.Col(FieldPhone)),
		date:     ParseDate(s.Cell(r, h.Col(FieldDate))),
		location: s.Cell(r, h.Col(FieldLocation)),
		day:      s.Cell(r, h.Col(FieldDay)),
		duration: s.Cell(r, h.Col(FieldDuration)),
		notes:    s.Cell(r, h.Col(FieldNotes)),
		product:  s.Cell(r, h.Col(FieldProduct)),
		quantity: s.Cell(r, h.Col(FieldQuantity)),
		price:    s.Cell(r, h.Col(FieldPrice)),
	}
	if rec.contact == "" {
		rec.contact = c.contact
	}
	if rec.phone == "" {
		rec.phone = c.phone
	}
	if rec.date != "" {
		c.date = rec.date
	} else {
		rec.date = c.date
	}
	return rec, true
}

// ParseDate converts an ISO-prefixed value (YYYY-MM-DD, optionally followed
// by a time) to DD.MM.YYYY. Other text is returned trimmed.
func ParseDate(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if m := isoDatePrefixRe.FindStringSubmatch(v); m != nil {
		return m[3] + "." + m[2] + "." + m[1]
	}
	return v
}

func (b *Batch) emit(rec row) {
	meta := b.Meta
	switch meta.Type {
	case model.DocPlanned:
		b.Planned = append(b.Planned, model.PlannedVisit{
			Rep:      meta.Rep,
			Week:     meta.Week,
			Location: rec.location,
			Customer: rec.customer,
			Date:     rec.date,
			Day:      rec.day,
			Notes:    rec.notes,
			Source:   meta.File,
		})
	case model.DocCompleted, model.DocOrder:
		if meta.Type == model.DocCompleted {
			key := visitKey{rep: meta.Rep, customer: textnorm.Normalize(rec.customer), date: rec.date, file: meta.File}
			if _, dup := b.seen[key]; !dup {
				b.seen[key] = struct{}{}
				b.completed = append(b.completed, completedCandidate{key: key, visit: model.CompletedVisit{
					Rep:      meta.Rep,
					Week:     meta.Week,
					Location: rec.location,
					Customer: rec.customer,
					Contact:  rec.contact,
					Phone:    rec.phone,
					Date:     rec.date,
					Day:      rec.day,
					Duration: rec.duration,
					Notes:    rec.notes,
					Source:   meta.File,
				}})
			}
		}
		product := rec.product
		priced := rec.price != "" || rec.quantity != ""
		if product == "" && !(meta.Type == model.DocOrder && priced) {
			return
		}
		if product == "" {
			product = NoDetailProduct
		}
		b.Orders = append(b.Orders, model.OrderLine{
			Rep:      meta.Rep,
			Week:     meta.Week,
			Customer: rec.customer,
			Contact:  rec.contact,
			Phone:    rec.phone,
			Date:     rec.date,
			Product:  product,
			Quantity: rec.quantity,
			Price:    rec.price,
			Source:   meta.File,
		})
	}
}
