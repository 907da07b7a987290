package inmemory

import (
	"context"
	"sync"
	repo "todoTracker/internal/repository"
)

// Storage - энергозависимое key-value хранилище для тестов и режима "memory"
type Storage struct {
	mtx    sync.RWMutex
	values map[string]string
}

func New() *Storage {
	return &Storage{values: make(map[string]string)}
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return "", repo.ErrNotFound
	}
	return value, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.values[key] = value
	return nil
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	return nil
}

func (s *Storage) Close() error {
	return nil
}
