package query_test

import (
	"testing"
	"time"
	"todoTracker/internal/models/task"
	"todoTracker/internal/query"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func created(hour int) time.Time {
	return time.Date(2024, 3, 1, hour, 0, 0, 0, time.UTC)
}

func ids(tasks []task.Task) []int64 {
	res := make([]int64, len(tasks))
	for i, t := range tasks {
		res[i] = t.ID
	}
	return res
}

func fixture() []task.Task {
	return []task.Task{
		{ID: 1, Text: "Купить молоко", Datetime: "2024-03-12T10:00", CreatedAt: created(1)},
		{ID: 2, Text: "Отчёт по работе", Datetime: "2024-03-08T10:00", CreatedAt: created(3)},
		{ID: 3, Text: "Позвонить маме", Datetime: "not a date", CreatedAt: created(2)},
		{ID: 4, Text: "купить хлеб", Datetime: "2024-03-10T09:00", CreatedAt: created(4)},
	}
}

// TestParseSortKey тестирует разбор ключа сортировки
func TestParseSortKey(t *testing.T) {
	assert.Equal(t, query.SortDatetime, query.ParseSortKey(" DateTime "))
	assert.Equal(t, query.SortPriority, query.ParseSortKey("priority"))
	assert.Equal(t, query.SortManual, query.ParseSortKey("manual"))
	assert.Equal(t, query.SortDefault, query.ParseSortKey(""))
	assert.Equal(t, query.SortDefault, query.ParseSortKey("alphabet"))
}

// TestFilterBySearch тестирует поиск без учёта регистра
func TestFilterBySearch(t *testing.T) {
	tasks := fixture()

	assert.Equal(t, []int64{1, 4}, ids(query.FilterBySearch(tasks, "КУПИТЬ")))
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(query.FilterBySearch(tasks, "")))
	assert.Empty(t, query.FilterBySearch(tasks, "отпуск"))
}

// TestIsOverdue тестирует льготу для сегодняшних задач
func TestIsOverdue(t *testing.T) {
	tasks := fixture()

	assert.False(t, query.IsOverdue(tasks[0], now), "срок в будущем")
	assert.True(t, query.IsOverdue(tasks[1], now), "срок вчера и раньше")
	assert.False(t, query.IsOverdue(tasks[2], now), "срок не разбирается")
	assert.False(t, query.IsOverdue(tasks[3], now), "срок сегодня утром")
}

// TestSort тестирует ключи сортировки
func TestSort(t *testing.T) {
	tests := []struct {
		name string
		key  query.SortKey
		want []int64
	}{
		{
			name: "success - default newest first",
			key:  query.SortDefault,
			want: []int64{4, 2, 3, 1},
		},
		{
			name: "success - datetime with unparseable last",
			key:  query.SortDatetime,
			want: []int64{2, 4, 1, 3},
		},
		{
			name: "success - priority puts overdue first",
			key:  query.SortPriority,
			want: []int64{2, 1, 3, 4},
		},
		{
			name: "success - manual keeps canonical order",
			key:  query.SortManual,
			want: []int64{1, 2, 3, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := fixture()
			got := query.Sort(tasks, tt.key, now)

			assert.Equal(t, tt.want, ids(got))
			assert.Equal(t, []int64{1, 2, 3, 4}, ids(tasks), "входной срез не меняется")
		})
	}
}

// TestView тестирует поиск вместе с сортировкой
func TestView(t *testing.T) {
	got := query.View(fixture(), "купить", query.SortDatetime, now)
	assert.Equal(t, []int64{4, 1}, ids(got))
}

// TestFormatDatetime тестирует формат отображения срока
func TestFormatDatetime(t *testing.T) {
	assert.Equal(t, "Sat, Jun 15, 10:00 AM", query.FormatDatetime(time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Sat, Jun 15, 07:05 PM", query.FormatDatetime(time.Date(2024, 6, 15, 19, 5, 0, 0, time.UTC)))
}

// TestComputeStatistics тестирует счётчики и прогресс
func TestComputeStatistics(t *testing.T) {
	tasks := fixture()
	tasks[0].Completed = true
	tasks[0].Tags = []task.Tag{task.TagShopping, task.TagShopping}
	tasks[1].Tags = []task.Tag{task.TagWork}
	tasks[3].Tags = []task.Tag{task.TagShopping, task.TagPersonal}

	stats := query.ComputeStatistics(tasks, now)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 3, stats.Pending)
	assert.Equal(t, map[task.Tag]int{task.TagWork: 1, task.TagPersonal: 1, task.TagShopping: 2}, stats.ByTag)
	// сегодняшняя задача с прошедшим временем тоже считается
	assert.Equal(t, 2, stats.Overdue)
	assert.InDelta(t, 25.0, stats.Progress, 0.001)
}

// TestComputeStatistics_Empty тестирует пустую коллекцию
func TestComputeStatistics_Empty(t *testing.T) {
	stats := query.ComputeStatistics(nil, now)

	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.Progress)
	assert.Len(t, stats.ByTag, len(task.Vocabulary))
}
