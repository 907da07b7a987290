package app

import (
	"context"
	"fmt"
	"todoTracker/internal/config"
	"todoTracker/internal/logger"
	"todoTracker/internal/persistence"
	"todoTracker/internal/repository/kv/filestore"
	"todoTracker/internal/repository/kv/inmemory"
	"todoTracker/internal/repository/kv/postgres"
	"todoTracker/internal/repository/kv/redis"
	"todoTracker/internal/repository/kv/sqlite"
	"todoTracker/internal/service"

	"go.uber.org/zap"
)

// Backend - долговременное key-value хранилище, выбранное конфигурацией
type Backend interface {
	persistence.KeyValue
	HealthCheck(context.Context) error
	Close() error
}

// OpenBackend открывает хранилище по persistence.type; неизвестный тип - WiringError
func OpenBackend(ctx context.Context, cfg config.PersistenceConfig) (Backend, error) {
	var (
		backend Backend
		err     error
	)
	switch cfg.Type {
	case config.PersistenceMemory:
		backend = inmemory.New()
	case config.PersistenceSQLite:
		backend, err = openSQLite(cfg.Path)
	case config.PersistenceFile:
		backend, err = openFile(cfg.Path)
	case config.PersistenceRedis:
		backend, err = openRedis(ctx, cfg.Addr, cfg.Prefix)
	case config.PersistencePostgres:
		if cfg.URL == "" {
			return nil, service.NewWiringError("persistence.url")
		}
		backend, err = openPostgres(ctx, cfg.URL)
	default:
		return nil, service.NewWiringError(fmt.Sprintf("persistence.type=%q", cfg.Type))
	}
	if err != nil {
		return nil, fmt.Errorf("подключение хранилища %s: %w", cfg.Type, err)
	}

	logger.Info("App: Хранилище подключено", zap.String("type", cfg.Type))
	return backend, nil
}

// конструкторы возвращают конкретные типы; обёртки не дают typed nil попасть в интерфейс

func openSQLite(path string) (Backend, error) {
	s, err := sqlite.New(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openFile(path string) (Backend, error) {
	s, err := filestore.New(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openRedis(ctx context.Context, addr, prefix string) (Backend, error) {
	s, err := redis.New(ctx, addr, prefix)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openPostgres(ctx context.Context, url string) (Backend, error) {
	s, err := postgres.New(ctx, url)
	if err != nil {
		return nil, err
	}
	return s, nil
}
