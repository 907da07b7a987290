package app

import (
	"context"
	"fmt"
	"todoTracker/internal/config"
	"todoTracker/internal/persistence"
	"todoTracker/internal/reorder"
	"todoTracker/internal/repository/task/inmemory"
	"todoTracker/internal/service"
	"todoTracker/internal/transfer"
)

// Core - хранилище задач со всеми компонентами, без транспорта.
// Используется и HTTP-сервером, и todoctl
type Core struct {
	Backend  Backend
	Service  *service.TaskService
	Reorder  *reorder.Reconciler
	Transfer *transfer.Gateway
}

func NewCore(ctx context.Context, cfg *config.Config, opts ...service.Option) (*Core, error) {
	if cfg == nil {
		return nil, service.NewWiringError("config")
	}

	backend, err := OpenBackend(ctx, cfg.Persistence)
	if err != nil {
		return nil, err
	}

	svc := service.NewTaskService(inmemory.NewTaskStorage(), persistence.New(backend), opts...)
	if err := svc.Load(ctx); err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("загрузка состояния: %w", err)
	}

	return &Core{
		Backend:  backend,
		Service:  svc,
		Reorder:  reorder.New(svc),
		Transfer: transfer.New(svc),
	}, nil
}

func (c *Core) HealthCheck(ctx context.Context) error {
	if err := c.Backend.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка хранилища: %w", err)
	}
	return c.Service.HealthCheck(ctx)
}

func (c *Core) Close() error {
	return c.Backend.Close()
}
