package report

import (
	"time"

	"github.com/verte-zerg/masterdata/internal/aggregate"
	"github.com/verte-zerg/masterdata/internal/model"
)

const (
	testRep     = "Ali Veli"
	otherRep    = "Ayşe Kaya"
	testWeek    = "27-31 Ocak 2025"
	plannedFile = "27-31 OCAK Ali Veli Planlanan Ziyaret.xlsx"
	visitedFile = "27-31 OCAK Ali Veli Yapılan Ziyaret.xlsx"
)

func testWeekSpan() model.Week {
	return model.Week{
		Label:     testWeek,
		StartText: "27.01.2025",
		EndText:   "31.01.2025",
		Start:     time.Date(2025, time.January, 27, 0, 0, 0, 0, time.Local),
		End:       time.Date(2025, time.January, 31, 0, 0, 0, 0, time.Local),
	}
}

// sampleResult has one week, two representatives and partial submissions.
func sampleResult() *aggregate.Result {
	return &aggregate.Result{
		RunID:     "run-1",
		Dir:       "/in",
		StartedAt: time.Date(2025, time.February, 3, 9, 0, 0, 0, time.Local),
		Files:     []string{plannedFile, visitedFile},
		Weeks:     []model.Week{testWeekSpan()},
		Reps:      []string{testRep, otherRep},
		Planned: []model.PlannedVisit{
			{Rep: testRep, Week: testWeek, Location: "İzmir", Customer: "ABC Ltd", Date: "27.01.2025", Day: "Pazartesi", Source: plannedFile},
			{Rep: testRep, Week: testWeek, Location: "İzmir", Customer: "XYZ AŞ", Date: "28.01.2025", Day: "Salı", Source: plannedFile},
		},
		Completed: []model.CompletedVisit{
			{Rep: testRep, Week: testWeek, Customer: "ABC Ltd", Contact: "Ahmet", Phone: "555", Date: "27.01.2025", Source: visitedFile},
			{Rep: testRep, Week: testWeek, Customer: "Late Co", Date: "05.02.2025", Source: visitedFile},
		},
		Orders: []model.OrderLine{
			{Rep: testRep, Week: testWeek, Customer: "abc ltd", Date: "27.01.2025", Product: "Vida", Quantity: "10", Price: "5", Source: visitedFile},
		},
		Customers: []model.Customer{
			{Name: "ABC Ltd", Contact: "Ahmet", Phone: "555", Location: "İzmir", Rep: testRep, LastDate: "27.01.2025"},
			{Name: "Late Co", Rep: testRep, LastDate: "05.02.2025"},
		},
		Status: map[model.StatusKey]string{
			{Rep: testRep, Week: testWeek, Type: model.DocPlanned}:   plannedFile,
			{Rep: testRep, Week: testWeek, Type: model.DocCompleted}: visitedFile,
			{Rep: testRep, Week: testWeek, Type: model.DocOrder}:     visitedFile,
		},
		Outcomes: []model.FileOutcome{
			{Name: plannedFile, Rep: testRep, Week: testWeek, Type: model.DocPlanned, Status: model.FileProcessed},
			{Name: visitedFile, Rep: testRep, Week: testWeek, Type: model.DocCompleted, Status: model.FileProcessed},
		},
	}
}
