package query

import (
	"strings"
	"time"
	"todoTracker/internal/models/task"
)

const maxCalendarWeeks = 6

type CalendarDay struct {
	Day   int         `json:"day"`
	Tasks []task.Task `json:"tasks"`
}

func (d CalendarDay) HasTasks() bool {
	return len(d.Tasks) > 0
}

// Summary - подсказка при наведении: тексты задач дня построчно
func (d CalendarDay) Summary() string {
	texts := make([]string, len(d.Tasks))
	for i, t := range d.Tasks {
		texts[i] = t.Text
	}
	return strings.Join(texts, "\n")
}

type Month struct {
	Year         int           `json:"year"`
	Month        time.Month    `json:"month"`
	FirstWeekday time.Weekday  `json:"first_weekday"`
	Days         []CalendarDay `json:"days"`
	// Weeks - сетка по 7 ячеек начиная с воскресенья, 0 означает пустую ячейку
	Weeks [][]int `json:"weeks"`
}

func DaysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// ByCalendarDay раскладывает задачи по дням месяца в календаре loc
func ByCalendarDay(tasks []task.Task, year int, month time.Month, loc *time.Location) []CalendarDay {
	if loc == nil {
		loc = time.Local
	}

	days := make([]CalendarDay, DaysIn(year, month, loc))
	for i := range days {
		days[i] = CalendarDay{Day: i + 1, Tasks: []task.Task{}}
	}

	for _, t := range tasks {
		due, ok := t.Due(loc)
		if !ok || due.Year() != year || due.Month() != month {
			continue
		}
		days[due.Day()-1].Tasks = append(days[due.Day()-1].Tasks, t)
	}
	return days
}

func Calendar(tasks []task.Task, year int, month time.Month, loc *time.Location) Month {
	if loc == nil {
		loc = time.Local
	}

	m := Month{
		Year:         year,
		Month:        month,
		FirstWeekday: time.Date(year, month, 1, 0, 0, 0, 0, loc).Weekday(),
		Days:         ByCalendarDay(tasks, year, month, loc),
	}

	day := 1
	for week := 0; week < maxCalendarWeeks && day <= len(m.Days); week++ {
		row := make([]int, 7)
		for wd := 0; wd < 7; wd++ {
			if week == 0 && wd < int(m.FirstWeekday) {
				continue
			}
			if day <= len(m.Days) {
				row[wd] = day
				day++
			}
		}
		m.Weeks = append(m.Weeks, row)
	}
	return m
}
