package transfer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/task"
	"todoTracker/internal/service"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat: пустая строка означает JSON
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", service.NewValidationError("format", fmt.Sprintf("неподдерживаемый формат %q", s))
}

func (f Format) Filename() string {
	if f == FormatYAML {
		return "tasks.yaml"
	}
	return "tasks.json"
}

func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

type Store interface {
	Tasks(ctx context.Context) []task.Task
	ReplaceAll(ctx context.Context, tasks []task.Task) error
}

// Gateway - импорт и экспорт коллекции в файл
type Gateway struct {
	store Store
}

func New(store Store) *Gateway {
	return &Gateway{store: store}
}

// Export возвращает содержимое файла и его имя
func (g *Gateway) Export(ctx context.Context, format Format) ([]byte, string, error) {
	tasks := g.store.Tasks(ctx)

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatYAML:
		data, err = yaml.Marshal(task.ToRecords(tasks))
	default:
		format = FormatJSON
		data, err = task.EncodeJSON(tasks)
	}
	if err != nil {
		return nil, "", fmt.Errorf("экспорт задач: %w", err)
	}

	logger.Info("Transfer: Задачи экспортированы", zap.Int("count", len(tasks)), zap.String("format", string(format)))
	return data, format.Filename(), nil
}

// Import целиком заменяет коллекцию содержимым файла;
// при любой ошибке формата коллекция не меняется
func (g *Gateway) Import(ctx context.Context, r io.Reader, format Format) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, service.NewImportError("не удалось прочитать файл", err)
	}

	tasks, err := Decode(data, format)
	if err != nil {
		logger.Warn("Transfer: Файл импорта отклонён", zap.Error(err))
		return 0, service.NewImportError("файл не соответствует формату задач", err)
	}

	if err := g.store.ReplaceAll(ctx, tasks); err != nil {
		return 0, fmt.Errorf("импорт задач: %w", err)
	}

	logger.Info("Transfer: Задачи импортированы", zap.Int("count", len(tasks)))
	return len(tasks), nil
}

// ImportAsync читает файл в отдельной горутине и вызывает done после замены коллекции
func (g *Gateway) ImportAsync(ctx context.Context, r io.Reader, format Format, done func(int, error)) {
	go func() {
		n, err := g.Import(ctx, r, format)
		if done != nil {
			done(n, err)
		}
	}()
}

func Decode(data []byte, format Format) ([]task.Task, error) {
	if format != FormatYAML {
		return task.DecodeJSON(data)
	}

	var raw *[]*task.RawRecord
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("разбор YAML: %v: %w", err, task.ErrInvalidRecord)
	}
	if raw == nil {
		return nil, fmt.Errorf("ожидался список задач: %w", task.ErrInvalidRecord)
	}
	return task.FromRawRecords(*raw)
}
