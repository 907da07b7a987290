package service_test

import (
	"context"
	"errors"
	"testing"
	"time"
	"todoTracker/internal/models/task"
	"todoTracker/internal/repository/task/inmemory"
	"todoTracker/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

// MockPersister - мок долговременного хранилища
type MockPersister struct {
	mock.Mock
}

func (m *MockPersister) LoadTasks(ctx context.Context) ([]task.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]task.Task), args.Error(1)
}

func (m *MockPersister) SaveTasks(ctx context.Context, tasks []task.Task) error {
	args := m.Called(ctx, tasks)
	return args.Error(0)
}

func (m *MockPersister) LoadTheme(ctx context.Context) (task.Theme, error) {
	args := m.Called(ctx)
	return args.Get(0).(task.Theme), args.Error(1)
}

func (m *MockPersister) SaveTheme(ctx context.Context, theme task.Theme) error {
	args := m.Called(ctx, theme)
	return args.Error(0)
}

var _ service.Persister = (*MockPersister)(nil)
var _ service.TaskRepository = (*inmemory.TaskStorage)(nil)

func newService(store *MockPersister) *service.TaskService {
	return service.NewTaskService(inmemory.NewTaskStorage(), store, service.WithClock(func() time.Time { return fixedNow }))
}

func acceptingStore() *MockPersister {
	store := new(MockPersister)
	store.On("SaveTasks", mock.Anything, mock.Anything).Return(nil)
	store.On("SaveTheme", mock.Anything, mock.Anything).Return(nil)
	return store
}

func ids(tasks []task.Task) []int64 {
	res := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		res = append(res, t.ID)
	}
	return res
}

// seed создаёт задачи с уникальными id и возвращает их id по порядку
func seed(t *testing.T, svc *service.TaskService, texts ...string) []int64 {
	t.Helper()
	res := make([]int64, 0, len(texts))
	for _, text := range texts {
		created, err := svc.Create(context.Background(), text, "2024-03-12 10:00", nil)
		require.NoError(t, err)
		res = append(res, created.ID)
	}
	return res
}

// TestTaskService_Create тестирует создание задачи
func TestTaskService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success - task appended and persisted", func(t *testing.T) {
		store := acceptingStore()
		svc := newService(store)

		created, err := svc.Create(ctx, "  Buy milk  ", "2024-03-12 10:00", []task.Tag{task.TagShopping, task.TagShopping})

		require.NoError(t, err)
		assert.Equal(t, fixedNow.UnixMilli(), created.ID)
		assert.Equal(t, "Buy milk", created.Text)
		assert.Equal(t, "2024-03-12 10:00", created.Datetime)
		assert.False(t, created.Completed)
		assert.Equal(t, fixedNow, created.CreatedAt)
		assert.Equal(t, []task.Tag{task.TagShopping}, created.Tags)

		tasks := svc.Tasks(ctx)
		require.Len(t, tasks, 1)
		assert.Equal(t, *created, tasks[0])
		store.AssertCalled(t, "SaveTasks", mock.Anything, mock.MatchedBy(func(saved []task.Task) bool {
			return len(saved) == 1 && saved[0].ID == created.ID
		}))
	})

	t.Run("success - same millisecond gives distinct ids", func(t *testing.T) {
		svc := newService(acceptingStore())

		created := seed(t, svc, "a", "b", "c")

		assert.Equal(t, []int64{fixedNow.UnixMilli(), fixedNow.UnixMilli() + 1, fixedNow.UnixMilli() + 2}, created)
	})

	tests := []struct {
		name     string
		text     string
		datetime string
		tags     []task.Tag
		field    string
	}{
		{name: "error - empty text", text: "   ", datetime: "2024-03-12 10:00", field: "text"},
		{name: "error - missing datetime", text: "Buy milk", datetime: " ", field: "datetime"},
		{name: "error - unparseable datetime", text: "Buy milk", datetime: "tomorrow", field: "datetime"},
		{name: "error - unknown tag", text: "Buy milk", datetime: "2024-03-12 10:00", tags: []task.Tag{"urgent"}, field: "tags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockPersister)
			svc := newService(store)

			created, err := svc.Create(ctx, tt.text, tt.datetime, tt.tags)

			assert.Nil(t, created)
			require.Error(t, err)
			assert.True(t, service.IsCode(err, service.CodeValidation))
			var busErr *service.BusinessError
			require.ErrorAs(t, err, &busErr)
			assert.Equal(t, tt.field, busErr.Details["field"])
			assert.Empty(t, svc.Tasks(ctx))
			store.AssertNotCalled(t, "SaveTasks", mock.Anything, mock.Anything)
		})
	}

	t.Run("error - persistence failure keeps task in memory", func(t *testing.T) {
		store := new(MockPersister)
		store.On("SaveTasks", mock.Anything, mock.Anything).Return(errors.New("quota exceeded"))
		svc := newService(store)

		created, err := svc.Create(ctx, "Buy milk", "2024-03-12 10:00", nil)

		require.Error(t, err)
		assert.False(t, service.IsCode(err, service.CodeValidation))
		assert.Contains(t, err.Error(), "quota exceeded")
		require.NotNil(t, created)
		assert.True(t, svc.Exists(ctx, created.ID))
	})
}

// TestTaskService_PendingTags тестирует метки для следующей задачи
func TestTaskService_PendingTags(t *testing.T) {
	ctx := context.Background()
	svc := newService(acceptingStore())

	on, err := svc.ToggleTagPending(task.TagWork)
	require.NoError(t, err)
	assert.True(t, on)
	_, err = svc.ToggleTagPending(task.TagPersonal)
	require.NoError(t, err)
	on, err = svc.ToggleTagPending(task.TagWork)
	require.NoError(t, err)
	assert.False(t, on)
	_, err = svc.ToggleTagPending(task.TagWork)
	require.NoError(t, err)

	assert.Equal(t, []task.Tag{task.TagPersonal, task.TagWork}, svc.PendingTags())

	_, err = svc.ToggleTagPending("urgent")
	assert.True(t, service.IsCode(err, service.CodeValidation))

	created, err := svc.CreateFromPending(ctx, "Report", "2024-03-12")
	require.NoError(t, err)
	assert.Equal(t, []task.Tag{task.TagPersonal, task.TagWork}, created.Tags)
	assert.Empty(t, svc.PendingTags())
}

// TestTaskService_Delete тестирует удаление
func TestTaskService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success - delete removes task and selection", func(t *testing.T) {
		svc := newService(acceptingStore())
		created := seed(t, svc, "a", "b")
		require.True(t, svc.ToggleTaskSelection(ctx, created[0]))

		require.NoError(t, svc.Delete(ctx, created[0]))

		assert.Equal(t, []int64{created[1]}, ids(svc.Tasks(ctx)))
		assert.Empty(t, svc.Selected(ctx))
	})

	t.Run("success - absent id is a no-op", func(t *testing.T) {
		store := new(MockPersister)
		svc := newService(store)

		assert.NoError(t, svc.Delete(ctx, 42))
		store.AssertNotCalled(t, "SaveTasks", mock.Anything, mock.Anything)
	})
}

// TestTaskService_ToggleComplete тестирует переключение статуса
func TestTaskService_ToggleComplete(t *testing.T) {
	ctx := context.Background()
	svc := newService(acceptingStore())
	created := seed(t, svc, "a")
	before := svc.Tasks(ctx)

	require.NoError(t, svc.ToggleComplete(ctx, created[0]))
	assert.True(t, svc.Tasks(ctx)[0].Completed)

	require.NoError(t, svc.ToggleComplete(ctx, created[0]))
	assert.Equal(t, before, svc.Tasks(ctx))

	assert.NoError(t, svc.ToggleComplete(ctx, 42))
}

// TestTaskService_Edit тестирует редактирование
func TestTaskService_Edit(t *testing.T) {
	ctx := context.Background()

	t.Run("success - text and datetime replaced, rest preserved", func(t *testing.T) {
		svc := newService(acceptingStore())
		created, err := svc.Create(ctx, "a", "2024-03-12 10:00", []task.Tag{task.TagWork})
		require.NoError(t, err)
		require.NoError(t, svc.ToggleComplete(ctx, created.ID))

		require.NoError(t, svc.Edit(ctx, created.ID, " b ", "2024-04-01T09:30"))

		edited := svc.Tasks(ctx)[0]
		assert.Equal(t, created.ID, edited.ID)
		assert.Equal(t, "b", edited.Text)
		assert.Equal(t, "2024-04-01T09:30", edited.Datetime)
		assert.True(t, edited.Completed)
		assert.Equal(t, created.CreatedAt, edited.CreatedAt)
		assert.Equal(t, []task.Tag{task.TagWork}, edited.Tags)
	})

	t.Run("error - validation leaves task unchanged", func(t *testing.T) {
		svc := newService(acceptingStore())
		created := seed(t, svc, "a")
		before := svc.Tasks(ctx)

		err := svc.Edit(ctx, created[0], "", "2024-04-01")
		assert.True(t, service.IsCode(err, service.CodeValidation))
		err = svc.Edit(ctx, created[0], "b", "")
		assert.True(t, service.IsCode(err, service.CodeValidation))

		assert.Equal(t, before, svc.Tasks(ctx))
	})

	t.Run("success - absent id is a no-op", func(t *testing.T) {
		svc := newService(acceptingStore())
		assert.NoError(t, svc.Edit(ctx, 42, "b", "2024-04-01"))
	})
}

// TestTaskService_Bulk тестирует групповые операции
func TestTaskService_Bulk(t *testing.T) {
	ctx := context.Background()

	t.Run("error - empty selection", func(t *testing.T) {
		store := acceptingStore()
		svc := newService(store)
		seed(t, svc, "a", "b")
		before := svc.Tasks(ctx)

		_, err := svc.BulkComplete(ctx)
		assert.True(t, service.IsCode(err, service.CodeNoSelection))
		_, err = svc.BulkDelete(ctx)
		assert.True(t, service.IsCode(err, service.CodeNoSelection))

		assert.Equal(t, before, svc.Tasks(ctx))
	})

	t.Run("success - bulk complete marks selected and clears selection", func(t *testing.T) {
		svc := newService(acceptingStore())
		created := seed(t, svc, "a", "b", "c")
		svc.ToggleTaskSelection(ctx, created[0])
		svc.ToggleTaskSelection(ctx, created[2])

		affected, err := svc.BulkComplete(ctx)

		require.NoError(t, err)
		assert.Equal(t, 2, affected)
		tasks := svc.Tasks(ctx)
		assert.True(t, tasks[0].Completed)
		assert.False(t, tasks[1].Completed)
		assert.True(t, tasks[2].Completed)
		assert.Empty(t, svc.Selected(ctx))
	})

	t.Run("success - bulk delete removes selected", func(t *testing.T) {
		svc := newService(acceptingStore())
		created := seed(t, svc, "a", "b", "c")
		svc.ToggleTaskSelection(ctx, created[1])

		affected, err := svc.BulkDelete(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, affected)
		assert.Equal(t, []int64{created[0], created[2]}, ids(svc.Tasks(ctx)))
		assert.Empty(t, svc.Selected(ctx))
	})

	t.Run("error - selection cleared even when persistence fails", func(t *testing.T) {
		svc := newService(acceptingStore())
		created := seed(t, svc, "a")
		svc.ToggleTaskSelection(ctx, created[0])

		failing := new(MockPersister)
		failing.On("SaveTasks", mock.Anything, mock.Anything).Return(errors.New("disk full"))
		failing.On("LoadTasks", mock.Anything).Return(svc.Tasks(ctx), nil)
		failing.On("LoadTheme", mock.Anything).Return(task.ThemeLight, nil)
		svc2 := newService(failing)
		require.NoError(t, svc2.Load(ctx))
		svc2.ToggleTaskSelection(ctx, created[0])

		_, err := svc2.BulkComplete(ctx)

		assert.Error(t, err)
		assert.Empty(t, svc2.Selected(ctx))
	})
}

// TestTaskService_Selection тестирует выбор задач
func TestTaskService_Selection(t *testing.T) {
	ctx := context.Background()
	svc := newService(acceptingStore())
	created := seed(t, svc, "a", "b")

	assert.False(t, svc.ToggleTaskSelection(ctx, 42))
	assert.True(t, svc.ToggleTaskSelection(ctx, created[1]))
	assert.True(t, svc.ToggleTaskSelection(ctx, created[0]))
	assert.Equal(t, created, svc.Selected(ctx))
	assert.False(t, svc.ToggleTaskSelection(ctx, created[1]))
	assert.Equal(t, []int64{created[0]}, svc.Selected(ctx))
}

// TestTaskService_SetOrder тестирует изменение порядка
func TestTaskService_SetOrder(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		order    func(c []int64) []int64
		expected func(c []int64) []int64
	}{
		{
			name:     "success - full permutation",
			order:    func(c []int64) []int64 { return []int64{c[3], c[1], c[0], c[2]} },
			expected: func(c []int64) []int64 { return []int64{c[3], c[1], c[0], c[2]} },
		},
		{
			name:     "success - unknown and duplicate ids dropped",
			order:    func(c []int64) []int64 { return []int64{c[3], 42, c[2], c[3], c[1], c[0]} },
			expected: func(c []int64) []int64 { return []int64{c[3], c[2], c[1], c[0]} },
		},
		{
			name:     "success - hidden tasks keep their slots",
			order:    func(c []int64) []int64 { return []int64{c[3], c[1]} },
			expected: func(c []int64) []int64 { return []int64{c[0], c[3], c[2], c[1]} },
		},
		{
			name:     "success - empty order changes nothing",
			order:    func(c []int64) []int64 { return nil },
			expected: func(c []int64) []int64 { return c },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(acceptingStore())
			created := seed(t, svc, "a", "b", "c", "d")

			require.NoError(t, svc.SetOrder(ctx, tt.order(created)))

			assert.Equal(t, tt.expected(created), ids(svc.Tasks(ctx)))
		})
	}
}

// TestTaskService_ClearCompleted тестирует удаление выполненных
func TestTaskService_ClearCompleted(t *testing.T) {
	ctx := context.Background()
	svc := newService(acceptingStore())
	created := seed(t, svc, "a", "b", "c")
	require.NoError(t, svc.ToggleComplete(ctx, created[0]))
	require.NoError(t, svc.ToggleComplete(ctx, created[2]))
	svc.ToggleTaskSelection(ctx, created[0])
	svc.ToggleTaskSelection(ctx, created[1])

	removed, err := svc.ClearCompleted(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, []int64{created[1]}, ids(svc.Tasks(ctx)))
	assert.Equal(t, []int64{created[1]}, svc.Selected(ctx))
}

// TestTaskService_Load тестирует загрузку состояния
func TestTaskService_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("success - ids continue after loaded maximum", func(t *testing.T) {
		future := fixedNow.UnixMilli() + 1000
		store := acceptingStore()
		store.On("LoadTasks", mock.Anything).Return([]task.Task{
			{ID: future, Text: "later", Datetime: "2024-03-12", CreatedAt: fixedNow, Tags: []task.Tag{}},
		}, nil)
		store.On("LoadTheme", mock.Anything).Return(task.ThemeDark, nil)
		svc := newService(store)

		require.NoError(t, svc.Load(ctx))
		created, err := svc.Create(ctx, "next", "2024-03-12", nil)

		require.NoError(t, err)
		assert.Equal(t, future+1, created.ID)
		assert.Equal(t, task.ThemeDark, svc.Theme())
	})

	t.Run("error - storage unavailable", func(t *testing.T) {
		store := new(MockPersister)
		store.On("LoadTasks", mock.Anything).Return(nil, errors.New("connection refused"))
		svc := newService(store)

		err := svc.Load(ctx)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "загрузка задач")
	})
}

// TestTaskService_ReplaceAll тестирует замену коллекции
func TestTaskService_ReplaceAll(t *testing.T) {
	ctx := context.Background()
	svc := newService(acceptingStore())
	created := seed(t, svc, "a", "b")
	svc.ToggleTaskSelection(ctx, created[0])
	svc.ToggleTaskSelection(ctx, created[1])

	kept := svc.Tasks(ctx)[1]
	replacement := []task.Task{
		{ID: 7, Text: "imported", Datetime: "2024-05-01", CreatedAt: fixedNow, Tags: []task.Tag{}},
		kept,
	}

	require.NoError(t, svc.ReplaceAll(ctx, replacement))

	assert.Equal(t, replacement, svc.Tasks(ctx))
	assert.Equal(t, []int64{created[1]}, svc.Selected(ctx))

	err := svc.ReplaceAll(ctx, []task.Task{replacement[0], replacement[0]})
	assert.Error(t, err)
	assert.Equal(t, replacement, svc.Tasks(ctx))
}

// TestTaskService_Theme тестирует тему оформления
func TestTaskService_Theme(t *testing.T) {
	ctx := context.Background()
	store := acceptingStore()
	svc := newService(store)

	assert.Equal(t, task.ThemeLight, svc.Theme())

	theme, err := svc.ToggleTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, task.ThemeDark, theme)
	store.AssertCalled(t, "SaveTheme", mock.Anything, task.ThemeDark)

	require.NoError(t, svc.SetTheme(ctx, task.ThemeLight))
	assert.Equal(t, task.ThemeLight, svc.Theme())

	err = svc.SetTheme(ctx, "sepia")
	assert.True(t, service.IsCode(err, service.CodeValidation))
	assert.Equal(t, task.ThemeLight, svc.Theme())
}

// TestTaskService_Snapshot тестирует снимок для отрисовки
func TestTaskService_Snapshot(t *testing.T) {
	ctx := context.Background()
	svc := newService(acceptingStore())
	created := seed(t, svc, "a", "b")
	require.NoError(t, svc.ToggleComplete(ctx, created[0]))
	svc.ToggleTaskSelection(ctx, created[1])
	_, err := svc.ToggleTagPending(task.TagWork)
	require.NoError(t, err)

	snap := svc.Snapshot(ctx, fixedNow)

	assert.Equal(t, created, ids(snap.Tasks))
	assert.Equal(t, []int64{created[1]}, snap.Selected)
	assert.Equal(t, []task.Tag{task.TagWork}, snap.PendingTags)
	assert.Equal(t, 2, snap.Statistics.Total)
	assert.Equal(t, 1, snap.Statistics.Completed)
	assert.Equal(t, task.ThemeLight, snap.Theme)
}
