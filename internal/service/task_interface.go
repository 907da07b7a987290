package service

import (
	"context"
	"todoTracker/internal/models/task"
)

// TaskRepository - каноничная упорядоченная коллекция задач
type TaskRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *task.Task) error
	Update(context.Context, *task.Task) error
	GetByID(context.Context, int64) (*task.Task, error)
	Exists(context.Context, int64) bool
	Delete(context.Context, int64) error
	List(context.Context) ([]task.Task, error)
	Reorder(context.Context, []int64) error
	ReplaceAll(context.Context, []task.Task) error
}

// Persister - долговременное хранение коллекции и темы (write-through)
type Persister interface {
	LoadTasks(context.Context) ([]task.Task, error)
	SaveTasks(context.Context, []task.Task) error
	LoadTheme(context.Context) (task.Theme, error)
	SaveTheme(context.Context, task.Theme) error
}
