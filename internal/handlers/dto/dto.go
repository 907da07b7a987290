package dto

import (
	"time"
	"todoTracker/internal/models/task"
	"todoTracker/internal/query"
)

// CreateTaskRequest: без tags задача получает отмеченные заранее метки
type CreateTaskRequest struct {
	Text     string    `json:"text"`
	Datetime string    `json:"datetime"`
	Tags     *[]string `json:"tags,omitempty"`
}

type UpdateTaskRequest struct {
	Text     string `json:"text"`
	Datetime string `json:"datetime"`
}

// ReorderRequest - значения data-id видимых элементов после перетаскивания
type ReorderRequest struct {
	IDs []string `json:"ids"`
}

type ThemeRequest struct {
	Theme string `json:"theme"`
}

type TaskResponse struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Datetime  string    `json:"datetime"`
	DueLabel  string    `json:"due_label"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	Tags      []string  `json:"tags"`
	IsOverdue bool      `json:"is_overdue"`
	Selected  bool      `json:"selected"`
}

type StateResponse struct {
	Tasks       []TaskResponse   `json:"tasks"`
	Selected    []int64          `json:"selected"`
	PendingTags []string         `json:"pending_tags"`
	Statistics  query.Statistics `json:"statistics"`
	Theme       string           `json:"theme"`
}

type CalendarDayResponse struct {
	Day     int    `json:"day"`
	Count   int    `json:"count"`
	Summary string `json:"summary,omitempty"`
}

type CalendarResponse struct {
	Year         int                   `json:"year"`
	Month        int                   `json:"month"`
	FirstWeekday int                   `json:"first_weekday"`
	Weeks        [][]int               `json:"weeks"`
	Days         []CalendarDayResponse `json:"days"`
}

func FromTask(t task.Task, now time.Time, selected bool) TaskResponse {
	label := t.Datetime
	if due, ok := t.Due(now.Location()); ok {
		label = query.FormatDatetime(due)
	}
	return TaskResponse{
		ID:        t.ID,
		Text:      t.Text,
		Datetime:  t.Datetime,
		DueLabel:  label,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt,
		Tags:      TagStrings(t.Tags),
		IsOverdue: !t.Completed && query.IsOverdue(t, now),
		Selected:  selected,
	}
}

func FromTaskList(tasks []task.Task, now time.Time, selected []int64) []TaskResponse {
	marked := make(map[int64]struct{}, len(selected))
	for _, id := range selected {
		marked[id] = struct{}{}
	}

	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		_, ok := marked[t.ID]
		result[i] = FromTask(t, now, ok)
	}
	return result
}

func TagStrings(tags []task.Tag) []string {
	res := make([]string, len(tags))
	for i, tag := range tags {
		res[i] = string(tag)
	}
	return res
}

func FromMonth(m query.Month) CalendarResponse {
	days := make([]CalendarDayResponse, len(m.Days))
	for i, d := range m.Days {
		days[i] = CalendarDayResponse{
			Day:     d.Day,
			Count:   len(d.Tasks),
			Summary: d.Summary(),
		}
	}
	return CalendarResponse{
		Year:         m.Year,
		Month:        int(m.Month),
		FirstWeekday: int(m.FirstWeekday),
		Weeks:        m.Weeks,
		Days:         days,
	}
}
