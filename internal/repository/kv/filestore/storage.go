package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"todoTracker/internal/logger"
	repo "todoTracker/internal/repository"

	"github.com/bytedance/sonic"
	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

const lockSuffix = ".lock"

// Storage держит все ключи в одном JSON-файле. Доступ из разных процессов
// сериализуется файловой блокировкой, внутри процесса - мьютексом:
// повторный Lock уже захваченного flock.Flock ничего не ждёт. Запись атомарна через rename
type Storage struct {
	mu   sync.RWMutex
	path string
	flk  *flock.Flock
}

// New открывает хранилище по пути path; пустой путь - файл в каталоге данных пользователя
func New(path string) (*Storage, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("каталог данных: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("создание каталога хранилища: %w", err)
	}

	logger.Info("Repository: Файловое хранилище", zap.String("path", path))
	return &Storage{
		path: path,
		flk:  flock.New(path + lockSuffix),
	}, nil
}

// DefaultPath возвращает $XDG_DATA_HOME/todo/todo.json или ~/.local/share/todo/todo.json
func DefaultPath() (string, error) {
	appDir, err := repo.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(appDir, "todo.json"), nil
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.flk.RLock(); err != nil {
		return "", fmt.Errorf("блокировка %s: %w", s.path, err)
	}
	defer func() { _ = s.flk.Unlock() }()

	values, err := s.read()
	if err != nil {
		return "", err
	}
	value, ok := values[key]
	if !ok {
		return "", repo.ErrNotFound
	}
	return value, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.flk.Lock(); err != nil {
		return fmt.Errorf("блокировка %s: %w", s.path, err)
	}
	defer func() { _ = s.flk.Unlock() }()

	values, err := s.read()
	if err != nil {
		return err
	}
	values[key] = value
	return s.write(values)
}

func (s *Storage) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("чтение %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return map[string]string{}, nil
	}

	values := map[string]string{}
	if err := sonic.ConfigStd.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("разбор %s: %w", s.path, err)
	}
	return values, nil
}

func (s *Storage) write(values map[string]string) error {
	data, err := sonic.ConfigStd.Marshal(values)
	if err != nil {
		return fmt.Errorf("сериализация хранилища: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("запись %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("замена %s: %w", s.path, err)
	}
	return nil
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	_, err := os.Stat(filepath.Dir(s.path))
	return err
}

func (s *Storage) Close() error {
	return s.flk.Close()
}
