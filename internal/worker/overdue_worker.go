package worker

import (
	"context"
	"time"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/task"
	"todoTracker/internal/query"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	tasksGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "todo_tasks",
			Help: "Number of tasks in the collection by state",
		},
		[]string{"state"},
	)

	progressGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "todo_tasks_progress_percent",
			Help: "Share of completed tasks in percent",
		},
	)
)

// Source - снимок коллекции и часы хранилища
type Source interface {
	Tasks(ctx context.Context) []task.Task
	Now() time.Time
}

// Report - результат одной проверки
type Report struct {
	Statistics query.Statistics
	// просроченные по правилу отображения (без сегодняшних)
	Overdue []int64
}

type OverdueWorker struct {
	source   Source
	interval time.Duration
}

func NewOverdueWorker(source Source, interval *time.Duration) *OverdueWorker {
	var intervalToSet time.Duration
	if interval == nil || *interval <= 0 {
		intervalToSet = 5 * time.Minute
	} else {
		intervalToSet = *interval
	}

	return &OverdueWorker{
		source:   source,
		interval: intervalToSet,
	}
}

func (w *OverdueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Check(ctx)
	for {
		select {
		case <-ticker.C:
			logger.Info("Worker: Фоновая проверка задач на просроченность", zap.Time("started_at", time.Now()))
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Фоновая проверка останавливается")
			return
		}
	}
}

func (w *OverdueWorker) Check(ctx context.Context) Report {
	start := time.Now()
	now := w.source.Now()
	tasks := w.source.Tasks(ctx)

	report := Report{
		Statistics: query.ComputeStatistics(tasks, now),
		Overdue:    []int64{},
	}
	for _, t := range tasks {
		if !t.Completed && query.IsOverdue(t, now) {
			report.Overdue = append(report.Overdue, t.ID)
		}
	}

	stats := report.Statistics
	tasksGauge.WithLabelValues("total").Set(float64(stats.Total))
	tasksGauge.WithLabelValues("completed").Set(float64(stats.Completed))
	tasksGauge.WithLabelValues("pending").Set(float64(stats.Pending))
	tasksGauge.WithLabelValues("overdue").Set(float64(stats.Overdue))
	progressGauge.Set(stats.Progress)

	logger.Info(
		"Worker: Завершение проверки задач",
		zap.Duration("ms", time.Since(start)),
		zap.Int("checked", len(tasks)),
		zap.Int("overdue", len(report.Overdue)),
	)
	return report
}
