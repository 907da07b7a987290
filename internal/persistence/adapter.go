package persistence

import (
	"context"
	"errors"
	"fmt"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/task"
	repo "todoTracker/internal/repository"

	"go.uber.org/zap"
)

const (
	TasksKey = "tasks"
	ThemeKey = "theme"
)

// KeyValue - долговременное локальное хранилище строк по ключу.
// Отсутствующий ключ возвращает repository.ErrNotFound
type KeyValue interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type Adapter struct {
	kv KeyValue
}

func New(kv KeyValue) *Adapter {
	return &Adapter{kv: kv}
}

// LoadTasks возвращает пустую коллекцию, если ключа ещё нет
func (a *Adapter) LoadTasks(ctx context.Context) ([]task.Task, error) {
	raw, err := a.kv.Get(ctx, TasksKey)
	if errors.Is(err, repo.ErrNotFound) {
		logger.Info("Persistence: Сохранённых задач нет, пустая коллекция")
		return []task.Task{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("загрузка задач: %w", err)
	}

	tasks, err := task.DecodeJSON([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("разбор сохранённых задач: %w", err)
	}

	logger.Info("Persistence: Задачи загружены", zap.Int("count", len(tasks)))
	return tasks, nil
}

func (a *Adapter) SaveTasks(ctx context.Context, tasks []task.Task) error {
	data, err := task.EncodeJSON(tasks)
	if err != nil {
		return err
	}
	if err := a.kv.Set(ctx, TasksKey, string(data)); err != nil {
		return fmt.Errorf("сохранение задач: %w", err)
	}
	return nil
}

// LoadTheme: отсутствие ключа или мусор в нём дают светлую тему
func (a *Adapter) LoadTheme(ctx context.Context) (task.Theme, error) {
	raw, err := a.kv.Get(ctx, ThemeKey)
	if errors.Is(err, repo.ErrNotFound) {
		return task.ThemeLight, nil
	}
	if err != nil {
		return task.ThemeLight, fmt.Errorf("загрузка темы: %w", err)
	}

	theme := task.Theme(raw)
	if !theme.Valid() {
		logger.Warn("Persistence: Неизвестная тема, используется светлая", zap.String("theme", raw))
		return task.ThemeLight, nil
	}
	return theme, nil
}

func (a *Adapter) SaveTheme(ctx context.Context, theme task.Theme) error {
	if err := a.kv.Set(ctx, ThemeKey, string(theme)); err != nil {
		return fmt.Errorf("сохранение темы: %w", err)
	}
	return nil
}
