package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

var ErrInvalidRecord = errors.New("некорректная запись задачи")

// Record - внешнее представление задачи: файл экспорта и значение ключа tasks в хранилище
type Record struct {
	ID        int64    `json:"id" yaml:"id"`
	Text      string   `json:"text" yaml:"text"`
	Datetime  string   `json:"datetime" yaml:"datetime"`
	Completed bool     `json:"completed" yaml:"completed"`
	CreatedAt string   `json:"createdAt" yaml:"createdAt"`
	Tags      []string `json:"tags" yaml:"tags"`
}

// RawRecord используется при разборе: nil означает отсутствующее поле
type RawRecord struct {
	ID        *int64    `json:"id" yaml:"id"`
	Text      *string   `json:"text" yaml:"text"`
	Datetime  *string   `json:"datetime" yaml:"datetime"`
	Completed *bool     `json:"completed" yaml:"completed"`
	CreatedAt *string   `json:"createdAt" yaml:"createdAt"`
	Tags      *[]string `json:"tags" yaml:"tags"`
}

func ToRecords(tasks []Task) []Record {
	res := make([]Record, len(tasks))
	for i, t := range tasks {
		tags := make([]string, len(t.Tags))
		for j, tag := range t.Tags {
			tags[j] = string(tag)
		}
		res[i] = Record{
			ID:        t.ID,
			Text:      t.Text,
			Datetime:  t.Datetime,
			Completed: t.Completed,
			CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339Nano),
			Tags:      tags,
		}
	}
	return res
}

// FromRawRecords проверяет схему каждой записи и уникальность id
func FromRawRecords(raw []*RawRecord) ([]Task, error) {
	tasks := make([]Task, 0, len(raw))
	seen := make(map[int64]struct{}, len(raw))

	for i, r := range raw {
		t, err := r.toTask()
		if err != nil {
			return nil, fmt.Errorf("запись %d: %w", i, err)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("запись %d: повторяющийся id %d: %w", i, t.ID, ErrInvalidRecord)
		}
		seen[t.ID] = struct{}{}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (r *RawRecord) toTask() (Task, error) {
	if r == nil {
		return Task{}, fmt.Errorf("пустая запись: %w", ErrInvalidRecord)
	}

	missing := func(field string) error {
		return fmt.Errorf("отсутствует поле %q: %w", field, ErrInvalidRecord)
	}
	switch {
	case r.ID == nil:
		return Task{}, missing("id")
	case r.Text == nil:
		return Task{}, missing("text")
	case r.Datetime == nil:
		return Task{}, missing("datetime")
	case r.Completed == nil:
		return Task{}, missing("completed")
	case r.CreatedAt == nil:
		return Task{}, missing("createdAt")
	case r.Tags == nil:
		return Task{}, missing("tags")
	}

	if strings.TrimSpace(*r.Text) == "" {
		return Task{}, fmt.Errorf("пустой text: %w", ErrInvalidRecord)
	}
	if _, err := ParseDatetime(*r.Datetime, time.Local); err != nil {
		return Task{}, fmt.Errorf("поле datetime: %v: %w", err, ErrInvalidRecord)
	}
	createdAt, err := time.Parse(time.RFC3339, *r.CreatedAt)
	if err != nil {
		return Task{}, fmt.Errorf("поле createdAt: %v: %w", err, ErrInvalidRecord)
	}

	tags := make([]Tag, 0, len(*r.Tags))
	for _, s := range *r.Tags {
		tag := Tag(s)
		if !tag.Valid() {
			return Task{}, fmt.Errorf("неизвестная метка %q: %w", s, ErrInvalidRecord)
		}
		tags = append(tags, tag)
	}

	return Task{
		ID:        *r.ID,
		Text:      *r.Text,
		Datetime:  *r.Datetime,
		Completed: *r.Completed,
		CreatedAt: createdAt.UTC(),
		Tags:      NormalizeTags(tags),
	}, nil
}

func EncodeJSON(tasks []Task) ([]byte, error) {
	data, err := sonic.ConfigStd.Marshal(ToRecords(tasks))
	if err != nil {
		return nil, fmt.Errorf("сериализация задач: %w", err)
	}
	return data, nil
}

// DecodeJSON принимает только массив записей полной формы
func DecodeJSON(data []byte) ([]Task, error) {
	var raw *[]*RawRecord
	if err := sonic.ConfigStd.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("разбор JSON: %v: %w", err, ErrInvalidRecord)
	}
	if raw == nil {
		return nil, fmt.Errorf("ожидался массив задач: %w", ErrInvalidRecord)
	}
	return FromRawRecords(*raw)
}
