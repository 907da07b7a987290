package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"todoTracker/internal/logger"
	repo "todoTracker/internal/repository"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

//go:embed schema.sql
var schema string

// Storage хранит пары ключ-значение в таблице settings локального файла SQLite
type Storage struct {
	db *sql.DB
}

// New открывает базу по пути path; пустой путь - файл в каталоге данных пользователя
func New(path string) (*Storage, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("открытие sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("инициализация схемы: %w", err)
	}

	logger.Info("Repository: Открыта база SQLite", zap.String("path", path))
	return &Storage{db: db}, nil
}

// DefaultPath возвращает $XDG_DATA_HOME/todo/todo.db или ~/.local/share/todo/todo.db
func DefaultPath() (string, error) {
	appDir, err := repo.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(appDir, "todo.db"), nil
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", repo.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("чтение ключа %s: %w", key, err)
	}
	return value, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("запись ключа %s: %w", key, err)
	}
	return nil
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("проверка соединения sqlite: %w", err)
	}
	return nil
}

func (s *Storage) Close() error {
	logger.Info("Repository: Закрытие базы SQLite")
	return s.db.Close()
}
