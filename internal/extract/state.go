package extract

import (
	"sort"

	"github.com/verte-zerg/masterdata/internal/model"
	"github.com/verte-zerg/masterdata/internal/textnorm"
)

// visitKey identifies a completed visit; product lines of one visit share it.
type visitKey struct {
	rep      string
	customer string
	date     string
	file     string
}

type completedCandidate struct {
	key   visitKey
	visit model.CompletedVisit
}

type observation struct {
	key      string
	customer model.Customer
}

type statusClaim struct {
	key  model.StatusKey
	file string
}

// Batch stages everything one file produced. Nothing reaches the run state
// until the batch is committed, so a file that fails midway leaves no trace.
type Batch struct {
	Meta    Meta
	Header  Header
	Planned []model.PlannedVisit
	Orders  []model.OrderLine

	completed    []completedCandidate
	observations []observation
	claims       []statusClaim
	seen         map[visitKey]struct{}
}

func newBatch(meta Meta, header Header) *Batch {
	b := &Batch{
		Meta:   meta,
		Header: header,
		seen:   make(map[visitKey]struct{}),
	}
	claim := func(t model.DocType, file string) {
		b.claims = append(b.claims, statusClaim{
			key:  model.StatusKey{Rep: meta.Rep, Week: meta.Week, Type: t},
			file: file,
		})
	}
	switch meta.Type {
	case model.DocPlanned, model.DocOrder:
		claim(meta.Type, meta.File)
	case model.DocCompleted:
		claim(model.DocCompleted, meta.File)
		if header.EmbeddedOrder {
			claim(model.DocOrder, meta.File+EmbeddedSuffix)
		}
	}
	return b
}

// Records returns the number of records the batch will add.
func (b *Batch) Records() int {
	return len(b.Planned) + len(b.completed) + len(b.Orders)
}

// CompletedVisits returns the completed visits staged in the batch.
func (b *Batch) CompletedVisits() []model.CompletedVisit {
	out := make([]model.CompletedVisit, 0, len(b.completed))
	for _, c := range b.completed {
		out = append(out, c.visit)
	}
	return out
}

func (b *Batch) observe(rec row) {
	key := textnorm.Normalize(rec.customer)
	if key == "" {
		return
	}
	b.observations = append(b.observations, observation{
		key: key,
		customer: model.Customer{
			Name:     rec.customer,
			Contact:  rec.contact,
			Phone:    rec.phone,
			Location: rec.location,
			Rep:      b.Meta.Rep,
			LastDate: rec.date,
		},
	})
}

// State is the caller-owned accumulation of one run.
type State struct {
	Planned   []model.PlannedVisit
	Completed []model.CompletedVisit
	Orders    []model.OrderLine
	Customers map[string]*model.Customer
	Status    map[model.StatusKey]string

	seen map[visitKey]struct{}
}

// NewState returns an empty run state.
func NewState() *State {
	return &State{
		Customers: make(map[string]*model.Customer),
		Status:    make(map[model.StatusKey]string),
		seen:      make(map[visitKey]struct{}),
	}
}

// Commit merges a batch into the state in row order.
func (s *State) Commit(b *Batch) {
	for _, c := range b.claims {
		s.Status[c.key] = c.file
	}
	for _, o := range b.observations {
		s.observe(o)
	}
	s.Planned = append(s.Planned, b.Planned...)
	for _, c := range b.completed {
		if _, dup := s.seen[c.key]; dup {
			continue
		}
		s.seen[c.key] = struct{}{}
		s.Completed = append(s.Completed, c.visit)
	}
	s.Orders = append(s.Orders, b.Orders...)
}

// observe creates the entry on first sighting. Later sightings only fill an
// empty contact or phone; the last date always advances.
func (s *State) observe(o observation) {
	existing, ok := s.Customers[o.key]
	if !ok {
		c := o.customer
		s.Customers[o.key] = &c
		return
	}
	if existing.Contact == "" && o.customer.Contact != "" {
		existing.Contact = o.customer.Contact
	}
	if existing.Phone == "" && o.customer.Phone != "" {
		existing.Phone = o.customer.Phone
	}
	if o.customer.LastDate != "" {
		existing.LastDate = o.customer.LastDate
	}
}

// CustomerKeys returns the directory keys in sorted order.
func (s *State) CustomerKeys() []string {
	keys := make([]string, 0, len(s.Customers))
	for k := range s.Customers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
