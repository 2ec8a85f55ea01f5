package tasks

import (
	"maps"
	"slices"
	"time"

	"github.com/sadopc/taskdesk/internal/model"
)

// CategoryCount is the number of tasks in one category.
type CategoryCount struct {
	Category model.Category
	Count    int
}

// Stats are the dashboard aggregates.
type Stats struct {
	Total       int
	Completed   int
	Pending     int
	DueThisWeek int
	Urgent      int
	// ByCategory holds the categories in use, in declaration order.
	ByCategory []CategoryCount
	// MostUsed is empty when there are no tasks.
	MostUsed      model.Category
	MostUsedCount int
}

// Stats computes the aggregates over the current list.
func (c *Collection) Stats(now time.Time) Stats {
	return Summarize(c.Items(), now)
}

// Summarize computes the dashboard aggregates. A task is due this week when
// it is not completed and its end time falls between now and midnight seven
// days from today.
func Summarize(items []model.Task, now time.Time) Stats {
	var s Stats
	weekEnd := time.Date(now.Year(), now.Month(), now.Day()+7, 0, 0, 0, 0, now.Location())
	counts := make(map[model.Category]int)

	for _, t := range items {
		s.Total++
		if t.Completed {
			s.Completed++
		}
		if !t.Completed && t.EndTime != nil && !t.EndTime.Before(now) && !t.EndTime.After(weekEnd) {
			s.DueThisWeek++
		}
		if t.Urgent(now) {
			s.Urgent++
		}
		counts[t.Category]++
	}
	s.Pending = s.Total - s.Completed

	for _, cat := range model.Categories {
		if n := counts[cat]; n > 0 {
			s.ByCategory = append(s.ByCategory, CategoryCount{Category: cat, Count: n})
			delete(counts, cat)
		}
	}
	// Categories the client does not know about still count.
	for _, cat := range slices.Sorted(maps.Keys(counts)) {
		s.ByCategory = append(s.ByCategory, CategoryCount{Category: cat, Count: counts[cat]})
	}
	for _, cc := range s.ByCategory {
		if cc.Count > s.MostUsedCount {
			s.MostUsed = cc.Category
			s.MostUsedCount = cc.Count
		}
	}
	return s
}
