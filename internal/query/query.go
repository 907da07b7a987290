// Package query строит производные представления коллекции задач:
// поиск, сортировку, календарь и статистику. Функции не меняют входной срез.
package query

import (
	"slices"
	"strings"
	"time"
	"todoTracker/internal/models/task"
)

type SortKey string

const (
	SortDatetime SortKey = "datetime"
	SortPriority SortKey = "priority"
	SortDefault  SortKey = "default"
	// SortManual оставляет каноничный порядок, заданный перетаскиванием
	SortManual SortKey = "manual"
)

func ParseSortKey(s string) SortKey {
	switch key := SortKey(strings.ToLower(strings.TrimSpace(s))); key {
	case SortDatetime, SortPriority, SortManual:
		return key
	default:
		return SortDefault
	}
}

// FilterBySearch - регистронезависимый поиск подстроки в тексте задачи
func FilterBySearch(tasks []task.Task, term string) []task.Task {
	term = strings.ToLower(term)
	res := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if term == "" || strings.Contains(strings.ToLower(t.Text), term) {
			res = append(res, t)
		}
	}
	return res
}

// IsOverdue: срок прошёл и он не сегодня. Выполненность задачи здесь не учитывается
func IsOverdue(t task.Task, now time.Time) bool {
	due, ok := t.Due(now.Location())
	if !ok {
		return false
	}
	return due.Before(now) && !task.SameDay(due, now)
}

// Sort возвращает отсортированную копию; сортировка стабильная
func Sort(tasks []task.Task, key SortKey, now time.Time) []task.Task {
	res := slices.Clone(tasks)

	switch key {
	case SortManual:
	case SortDatetime:
		due := make(map[int64]time.Time, len(res))
		for _, t := range res {
			if d, ok := t.Due(now.Location()); ok {
				due[t.ID] = d
			}
		}
		slices.SortStableFunc(res, func(a, b task.Task) int {
			da, okA := due[a.ID]
			db, okB := due[b.ID]
			switch {
			case okA && okB:
				return da.Compare(db)
			case okA:
				return -1
			case okB:
				return 1
			}
			return 0
		})
	case SortPriority:
		slices.SortStableFunc(res, func(a, b task.Task) int {
			oa, ob := IsOverdue(a, now), IsOverdue(b, now)
			switch {
			case oa == ob:
				return 0
			case oa:
				return -1
			}
			return 1
		})
	default:
		slices.SortStableFunc(res, func(a, b task.Task) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
	return res
}

// View - то, что показывается в списке: поиск, затем сортировка
func View(tasks []task.Task, term string, key SortKey, now time.Time) []task.Task {
	return Sort(FilterBySearch(tasks, term), key, now)
}

// FormatDatetime печатает срок в виде "Sat, Jun 15, 10:00 AM"
func FormatDatetime(t time.Time) string {
	return t.Format("Mon, Jan 2, 03:04 PM")
}
