package report

import (
	"fmt"

	"github.com/verte-zerg/masterdata/internal/aggregate"
	"github.com/verte-zerg/masterdata/internal/detect"
	"github.com/verte-zerg/masterdata/internal/model"
)

const (
	categoryMissingFile = "Eksik Dosya"
	categoryDateRange   = "Tarih Hatası"

	// issueKeyRunes is how much of a description takes part in dedup.
	issueKeyRunes = 50
)

// Audit reports missing submissions and visit dates that fall outside their
// week. Findings sharing a category and description prefix are reported
// once.
func Audit(res *aggregate.Result) []model.Issue {
	var issues []model.Issue
	for _, rep := range res.Reps {
		for _, w := range res.Weeks {
			for _, t := range model.DocTypes {
				if _, ok := res.Status[model.StatusKey{Rep: rep, Week: w.Label, Type: t}]; ok {
					continue
				}
				issues = append(issues, model.Issue{
					Priority:    model.PriorityCritical,
					Category:    categoryMissingFile,
					Description: fmt.Sprintf("%s - %s %s dosyası eksik", rep, w.Label, t),
					Fix:         "Ekipten iste veya manuel gir",
					Status:      model.IssuePending,
				})
			}
		}
	}

	weeks := make(map[string]model.Week, len(res.Weeks))
	for _, w := range res.Weeks {
		weeks[w.Label] = w
	}
	checkDate := func(rep, week, date, file string) {
		if date == "" || week == "" {
			return
		}
		w, ok := weeks[week]
		if !ok {
			return
		}
		day, ok := detect.ParseDisplayDate(date)
		if !ok || w.Contains(day) {
			return
		}
		issues = append(issues, model.Issue{
			Priority:    model.PriorityHigh,
			Category:    categoryDateRange,
			Description: fmt.Sprintf("%s: %s tarihi %s aralığı dışında", rep, date, week),
			File:        file,
			Fix:         "Tarihi kontrol et",
			Status:      model.IssuePending,
		})
	}
	for _, c := range res.Completed {
		checkDate(c.Rep, c.Week, c.Date, c.Source)
	}
	for _, p := range res.Planned {
		checkDate(p.Rep, p.Week, p.Date, p.Source)
	}
	return dedupIssues(issues)
}

type issueKey struct {
	category string
	prefix   string
}

func dedupIssues(issues []model.Issue) []model.Issue {
	seen := make(map[issueKey]struct{}, len(issues))
	out := make([]model.Issue, 0, len(issues))
	for _, is := range issues {
		key := issueKey{category: is.Category, prefix: runePrefix(is.Description, issueKeyRunes)}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, is)
	}
	return out
}

func runePrefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
