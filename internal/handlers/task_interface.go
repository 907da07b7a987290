package handlers

import (
	"context"
	"io"
	"time"
	"todoTracker/internal/models/task"
	"todoTracker/internal/service"
	"todoTracker/internal/transfer"
)

type TaskService interface {
	HealthCheck(context.Context) error
	Now() time.Time
	Snapshot(context.Context, time.Time) service.Snapshot
	Exists(context.Context, int64) bool
	Create(context.Context, string, string, []task.Tag) (*task.Task, error)
	CreateFromPending(context.Context, string, string) (*task.Task, error)
	Edit(context.Context, int64, string, string) error
	Delete(context.Context, int64) error
	ToggleComplete(context.Context, int64) error
	ToggleTaskSelection(context.Context, int64) bool
	ToggleTagPending(task.Tag) (bool, error)
	BulkComplete(context.Context) (int, error)
	BulkDelete(context.Context) (int, error)
	ClearCompleted(context.Context) (int, error)
	Theme() task.Theme
	SetTheme(context.Context, task.Theme) error
	ToggleTheme(context.Context) (task.Theme, error)
}

type Reconciler interface {
	Reconcile(context.Context, []int64) error
}

type Transfer interface {
	Export(context.Context, transfer.Format) ([]byte, string, error)
	Import(context.Context, io.Reader, transfer.Format) (int, error)
}
