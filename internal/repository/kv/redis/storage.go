package redis

import (
	"context"
	"errors"
	"fmt"
	"todoTracker/internal/logger"
	repo "todoTracker/internal/repository"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Storage хранит ключи в Redis под общим префиксом
type Storage struct {
	client *goredis.Client
	prefix string
}

func New(ctx context.Context, addr, prefix string) (*Storage, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		logger.Error("Repository: Неудачная проверка ping Redis", err, zap.String("addr", addr))
		return nil, fmt.Errorf("проверка соединения redis: %w", err)
	}

	logger.Info("Repository: Подключение к Redis", zap.String("addr", addr))
	return NewWithClient(client, prefix), nil
}

func NewWithClient(client *goredis.Client, prefix string) *Storage {
	return &Storage{client: client, prefix: prefix}
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", repo.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("чтение ключа %s: %w", key, err)
	}
	return value, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("запись ключа %s: %w", key, err)
	}
	return nil
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("проверка соединения redis: %w", err)
	}
	return nil
}

func (s *Storage) Close() error {
	logger.Info("Repository: Закрытие соединения Redis")
	return s.client.Close()
}
