package worker

import (
	"context"
	"testing"
	"time"
	"todoTracker/internal/models/task"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type staticSource struct {
	tasks []task.Task
	now   time.Time
}

func (s staticSource) Tasks(ctx context.Context) []task.Task {
	return s.tasks
}

func (s staticSource) Now() time.Time {
	return s.now
}

// TestOverdueWorker_Check тестирует подсчёт просроченных задач и метрики
func TestOverdueWorker_Check(t *testing.T) {
	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	source := staticSource{
		now: now,
		tasks: []task.Task{
			{ID: 1, Text: "yesterday", Datetime: "2024-03-09 10:00", Tags: []task.Tag{task.TagWork}},
			{ID: 2, Text: "this morning", Datetime: "2024-03-10 08:00", Tags: []task.Tag{}},
			{ID: 3, Text: "done long ago", Datetime: "2024-01-01", Completed: true, Tags: []task.Tag{}},
			{ID: 4, Text: "tomorrow", Datetime: "2024-03-11 09:00", Tags: []task.Tag{}},
		},
	}

	report := NewOverdueWorker(source, nil).Check(context.Background())

	assert.Equal(t, []int64{1}, report.Overdue)
	assert.Equal(t, 4, report.Statistics.Total)
	assert.Equal(t, 2, report.Statistics.Overdue)
	assert.Equal(t, float64(4), testutil.ToFloat64(tasksGauge.WithLabelValues("total")))
	assert.Equal(t, float64(1), testutil.ToFloat64(tasksGauge.WithLabelValues("completed")))
	assert.Equal(t, float64(2), testutil.ToFloat64(tasksGauge.WithLabelValues("overdue")))
	assert.Equal(t, float64(25), testutil.ToFloat64(progressGauge))
}

// TestNewOverdueWorker тестирует интервал по умолчанию
func TestNewOverdueWorker(t *testing.T) {
	assert.Equal(t, 5*time.Minute, NewOverdueWorker(staticSource{}, nil).interval)

	interval := time.Second
	assert.Equal(t, time.Second, NewOverdueWorker(staticSource{}, &interval).interval)
}

// TestOverdueWorker_Start тестирует остановку по отмене контекста
func TestOverdueWorker_Start(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	interval := 10 * time.Millisecond
	w := NewOverdueWorker(staticSource{now: time.Now()}, &interval)

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("воркер не остановился после отмены контекста")
	}
}
