// Package model defines shared data structures.
package model

import "time"

// DocType classifies a source file by the kind of report it carries.
type DocType int

const (
	DocUnknown DocType = iota
	DocPlanned
	DocCompleted
	DocOrder
)

// DocTypes lists the classified document types in report order.
var DocTypes = []DocType{DocPlanned, DocCompleted, DocOrder}

// String returns the display name used in report sheets.
func (d DocType) String() string {
	switch d {
	case DocPlanned:
		return "Planlanan Ziyaret"
	case DocCompleted:
		return "Yapılan Ziyaret"
	case DocOrder:
		return "Sipariş Formu"
	default:
		return ""
	}
}

// Week is a reporting period derived from filenames.
type Week struct {
	Label     string
	StartText string
	EndText   string
	Start     time.Time
	End       time.Time
}

// WeekKey identifies a week by its date pair.
type WeekKey struct {
	Start time.Time
	End   time.Time
}

// Key returns the identity of the week.
func (w Week) Key() WeekKey {
	return WeekKey{Start: w.Start, End: w.End}
}

// Contains reports whether day falls within the week, inclusive.
func (w Week) Contains(day time.Time) bool {
	return !day.Before(w.Start) && !day.After(w.End)
}

// SourceFile describes a resolved input file during a run.
type SourceFile struct {
	Name string
	Rep  string
	Week Week
	Type DocType
}

// PlannedVisit is a row from a planned-visit file.
type PlannedVisit struct {
	Rep      string
	Week     string
	Location string
	Customer string
	Date     string
	Day      string
	Notes    string
	Source   string
}

// CompletedVisit is a deduplicated row from a completed-visit file.
type CompletedVisit struct {
	Rep      string
	Week     string
	Location string
	Customer string
	Contact  string
	Phone    string
	Date     string
	Day      string
	Duration string
	Notes    string
	Source   string
}

// OrderLine is one product line from an order or completed-visit file.
type OrderLine struct {
	Rep      string
	Week     string
	Customer string
	Contact  string
	Phone    string
	Date     string
	Product  string
	Quantity string
	Price    string
	Source   string
}

// Customer is a customer directory entry.
type Customer struct {
	Name     string
	Contact  string
	Phone    string
	Location string
	Rep      string
	LastDate string
}

// StatusKey identifies one expected submission.
type StatusKey struct {
	Rep  string
	Week string
	Type DocType
}

// Issue priorities and status.
const (
	PriorityCritical = "KRİTİK"
	PriorityHigh     = "YÜKSEK"
	IssuePending     = "BEKLIYOR"
)

// Issue is a data-quality finding.
type Issue struct {
	Priority    string
	Category    string
	Description string
	File        string
	Fix         string
	Status      string
}

// FileOutcome records how a run handled one source file.
type FileOutcome struct {
	Name   string
	Rep    string
	Week   string
	Type   DocType
	Status string
	Reason string
}

// File outcome statuses.
const (
	FileProcessed = "ok"
	FileSkipped   = "skipped"
	FileFailed    = "failed"
)

// RunRecord summarizes a finished run for the history store.
type RunRecord struct {
	ID           int64
	RunID        string
	StartedAt    time.Time
	EndedAt      time.Time
	Dir          string
	Output       string
	OK           bool
	Error        string
	Weeks        int
	Reps         int
	Planned      int
	Completed    int
	Orders       int
	Customers    int
	Issues       int
	FilesTotal   int
	FilesSkipped int
}
