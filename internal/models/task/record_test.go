package task_test

import (
	"testing"
	"time"
	"todoTracker/internal/models/task"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEncodeJSON тестирует форму записи
func TestEncodeJSON(t *testing.T) {
	tasks := []task.Task{{
		ID:        1710064800000,
		Text:      "Купить молоко",
		Datetime:  "2024-03-10T14:30",
		CreatedAt: time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC),
		Tags:      []task.Tag{task.TagShopping},
	}, {
		ID:        1710064800001,
		Text:      "Без меток",
		Datetime:  "2024-03-11T09:00",
		Completed: true,
		CreatedAt: time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC),
	}}

	data, err := task.EncodeJSON(tasks)
	require.NoError(t, err)

	assert.JSONEq(t, `[
		{"id":1710064800000,"text":"Купить молоко","datetime":"2024-03-10T14:30","completed":false,"createdAt":"2024-03-10T10:00:00Z","tags":["shopping"]},
		{"id":1710064800001,"text":"Без меток","datetime":"2024-03-11T09:00","completed":true,"createdAt":"2024-03-10T10:00:00Z","tags":[]}
	]`, string(data))

	decoded, err := task.DecodeJSON(data)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, tasks[0], decoded[0])
	assert.Empty(t, decoded[1].Tags)
}

// TestDecodeJSON_Invalid тестирует строгую проверку схемы
func TestDecodeJSON_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "error - not json", input: `{{`},
		{name: "error - object instead of array", input: `{"id":1}`},
		{name: "error - null", input: `null`},
		{name: "error - null element", input: `[null]`},
		{
			name:  "error - missing tags",
			input: `[{"id":1,"text":"a","datetime":"2024-03-10T10:00","completed":false,"createdAt":"2024-03-10T10:00:00Z"}]`,
		},
		{
			name:  "error - wrong type",
			input: `[{"id":"1","text":"a","datetime":"2024-03-10T10:00","completed":false,"createdAt":"2024-03-10T10:00:00Z","tags":[]}]`,
		},
		{
			name:  "error - empty text",
			input: `[{"id":1,"text":"  ","datetime":"2024-03-10T10:00","completed":false,"createdAt":"2024-03-10T10:00:00Z","tags":[]}]`,
		},
		{
			name:  "error - bad datetime",
			input: `[{"id":1,"text":"a","datetime":"soon","completed":false,"createdAt":"2024-03-10T10:00:00Z","tags":[]}]`,
		},
		{
			name:  "error - unknown tag",
			input: `[{"id":1,"text":"a","datetime":"2024-03-10T10:00","completed":false,"createdAt":"2024-03-10T10:00:00Z","tags":["urgent"]}]`,
		},
		{
			name: "error - duplicate id",
			input: `[{"id":1,"text":"a","datetime":"2024-03-10T10:00","completed":false,"createdAt":"2024-03-10T10:00:00Z","tags":[]},
				{"id":1,"text":"b","datetime":"2024-03-10T10:00","completed":false,"createdAt":"2024-03-10T10:00:00Z","tags":[]}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := task.DecodeJSON([]byte(tt.input))
			assert.ErrorIs(t, err, task.ErrInvalidRecord)
		})
	}
}

// TestDecodeJSON_Empty тестирует пустой массив
func TestDecodeJSON_Empty(t *testing.T) {
	tasks, err := task.DecodeJSON([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
