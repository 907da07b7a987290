package query

import (
	"time"
	"todoTracker/internal/models/task"
)

type Statistics struct {
	Total     int              `json:"total"`
	Completed int              `json:"completed"`
	Pending   int              `json:"pending"`
	ByTag     map[task.Tag]int `json:"by_tag"`
	Overdue   int              `json:"overdue"`
	Progress  float64          `json:"progress"`
}

// ComputeStatistics считает просроченными невыполненные задачи со сроком раньше now,
// без льготы "сегодня", которую применяет IsOverdue
func ComputeStatistics(tasks []task.Task, now time.Time) Statistics {
	stats := Statistics{
		Total: len(tasks),
		ByTag: make(map[task.Tag]int, len(task.Vocabulary)),
	}
	for _, tag := range task.Vocabulary {
		stats.ByTag[tag] = 0
	}

	for _, t := range tasks {
		if t.Completed {
			stats.Completed++
		}
		for _, tag := range task.NormalizeTags(t.Tags) {
			if tag.Valid() {
				stats.ByTag[tag]++
			}
		}
		if due, ok := t.Due(now.Location()); ok && !t.Completed && due.Before(now) {
			stats.Overdue++
		}
	}

	stats.Pending = stats.Total - stats.Completed
	if stats.Total > 0 {
		stats.Progress = float64(stats.Completed) / float64(stats.Total) * 100
	}
	return stats
}
