package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/task"
	"todoTracker/internal/query"
	rep "todoTracker/internal/repository"

	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

// Snapshot - всё, что нужно отрисовщику для одного кадра
type Snapshot struct {
	Tasks       []task.Task
	Selected    []int64
	PendingTags []task.Tag
	Statistics  query.Statistics
	Theme       task.Theme
}

// TaskService сериализует все операции на одном мьютексе;
// запись в хранилище происходит внутри критической секции
type TaskService struct {
	mu       sync.Mutex
	repo     TaskRepository
	store    Persister
	selected map[int64]struct{}
	pending  []task.Tag
	theme    task.Theme
	now      func() time.Time
	lastID   int64
}

func NewTaskService(repo TaskRepository, store Persister, opts ...Option) *TaskService {
	s := &TaskService{
		repo:     repo,
		store:    store,
		selected: make(map[int64]struct{}),
		pending:  []task.Tag{},
		theme:    task.ThemeLight,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *TaskService) Now() time.Time {
	return s.now()
}

func (s *TaskService) Location() *time.Location {
	return s.now().Location()
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}

// Load поднимает коллекцию и тему из хранилища при старте
func (s *TaskService) Load(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { observe(opLoad, start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.store.LoadTasks(ctx)
	if err != nil {
		logger.Error("Service: Не удалось загрузить задачи", err)
		return fmt.Errorf("загрузка задач: %w", err)
	}
	if err := s.repo.ReplaceAll(ctx, tasks); err != nil {
		return fmt.Errorf("загрузка задач: %w", err)
	}
	s.trackIDs(tasks)
	clear(s.selected)

	theme, err := s.store.LoadTheme(ctx)
	if err != nil {
		return fmt.Errorf("загрузка темы: %w", err)
	}
	s.theme = theme

	logger.Info("Service: Состояние загружено", zap.Int("tasks", len(tasks)), zap.String("theme", string(theme)))
	return nil
}

// Create возвращает созданную задачу и ошибку сохранения, если она была;
// при ошибке сохранения задача остаётся в памяти
func (s *TaskService) Create(ctx context.Context, text, datetime string, tags []task.Tag) (created *task.Task, err error) {
	start := time.Now()
	defer func() { observe(opCreate, start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.create(ctx, text, datetime, tags)
}

func (s *TaskService) CreateFromPending(ctx context.Context, text, datetime string) (created *task.Task, err error) {
	start := time.Now()
	defer func() { observe(opCreate, start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.create(ctx, text, datetime, s.pending)
}

func (s *TaskService) create(ctx context.Context, text, datetime string, tags []task.Tag) (*task.Task, error) {
	text, datetime, err := s.validate(text, datetime)
	if err != nil {
		return nil, err
	}
	for _, tag := range tags {
		if !tag.Valid() {
			return nil, NewValidationError("tags", fmt.Sprintf("неизвестный тег %q", tag))
		}
	}

	now := s.now()
	newTask := &task.Task{
		ID:        s.nextID(now),
		Text:      text,
		Datetime:  datetime,
		CreatedAt: now.UTC().Truncate(time.Millisecond),
		Tags:      task.NormalizeTags(tags),
	}
	if err := s.repo.Create(ctx, newTask); err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}
	s.pending = []task.Tag{}

	logger.Info("Service: Задача создана", zap.Int64("id", newTask.ID))
	return newTask, s.persist(ctx, opCreate)
}

func (s *TaskService) Delete(ctx context.Context, id int64) (err error) {
	start := time.Now()
	defer func() { observe(opDelete, start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.selected, id)
	if !s.repo.Exists(ctx, id) {
		logger.Info("Service: Задача для удаления не найдена", zap.Int64("target_id", id))
		return nil
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("удаление задачи %d: %w", id, err)
	}
	return s.persist(ctx, opDelete)
}

func (s *TaskService) ToggleComplete(ctx context.Context, id int64) (err error) {
	start := time.Now()
	defer func() { observe(opToggleComplete, start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(ctx, opToggleComplete, id, task.ToggledCompleted())
}

// Edit меняет только текст и срок; теги, статус и createdAt сохраняются
func (s *TaskService) Edit(ctx context.Context, id int64, text, datetime string) (err error) {
	start := time.Now()
	defer func() { observe(opEdit, start, err) }()

	text, datetime, err = s.validate(text, datetime)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(ctx, opEdit, id, task.WithText(text), task.WithDatetime(datetime))
}

func (s *TaskService) update(ctx context.Context, op string, id int64, options ...task.TaskOption) error {
	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.Int64("target_id", id), zap.String("operation", op))
			return nil
		}
		return fmt.Errorf("получение задачи: %w", err)
	}

	target.Apply(options...)
	if err := s.repo.Update(ctx, target); err != nil {
		return fmt.Errorf("обновление задачи %d: %w", id, err)
	}
	return s.persist(ctx, op)
}

func (s *TaskService) BulkComplete(ctx context.Context) (affected int, err error) {
	start := time.Now()
	defer func() { observe(opBulkComplete, start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.bulk(ctx, opBulkComplete, func(t *task.Task) error {
		t.Apply(task.WithCompleted(true))
		return s.repo.Update(ctx, t)
	})
}

func (s *TaskService) BulkDelete(ctx context.Context) (affected int, err error) {
	start := time.Now()
	defer func() { observe(opBulkDelete, start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.bulk(ctx, opBulkDelete, func(t *task.Task) error {
		return s.repo.Delete(ctx, t.ID)
	})
}

// выбор очищается при любом исходе
func (s *TaskService) bulk(ctx context.Context, op string, apply func(*task.Task) error) (int, error) {
	if len(s.selected) == 0 {
		return 0, NewNoSelectionError(op)
	}
	defer clear(s.selected)

	tasks, err := s.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("получение задач: %w", err)
	}

	affected := 0
	for i := range tasks {
		if _, ok := s.selected[tasks[i].ID]; !ok {
			continue
		}
		if err := apply(&tasks[i]); err != nil {
			return affected, fmt.Errorf("%s, задача %d: %w", op, tasks[i].ID, err)
		}
		affected++
	}

	logger.Info("Service: Групповая операция выполнена", zap.String("operation", op), zap.Int("affected", affected))
	return affected, s.persist(ctx, op)
}

// SetOrder раскладывает перечисленные задачи в указанном порядке по слотам,
// которые они занимали; неперечисленные задачи остаются на своих местах
func (s *TaskService) SetOrder(ctx context.Context, ids []int64) (err error) {
	start := time.Now()
	defer func() { observe(opSetOrder, start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("получение задач: %w", err)
	}

	position := make(map[int64]int, len(current))
	order := make([]int64, len(current))
	for i, t := range current {
		position[t.ID] = i
		order[i] = t.ID
	}

	listed := make([]int64, 0, len(ids))
	slots := make([]int, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		slot, ok := position[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		listed = append(listed, id)
		slots = append(slots, slot)
	}
	if dropped := len(ids) - len(listed); dropped > 0 {
		logger.Warn("Service: Неизвестные или повторные id отброшены", zap.Int("dropped", dropped))
	}

	slices.Sort(slots)
	for i, slot := range slots {
		order[slot] = listed[i]
	}

	if err := s.repo.Reorder(ctx, order); err != nil {
		return fmt.Errorf("изменение порядка: %w", err)
	}
	return s.persist(ctx, opSetOrder)
}

// ToggleTaskSelection возвращает, выбрана ли задача после переключения
func (s *TaskService) ToggleTaskSelection(ctx context.Context, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.repo.Exists(ctx, id) {
		delete(s.selected, id)
		return false
	}
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
		return false
	}
	s.selected[id] = struct{}{}
	return true
}

// ToggleTagPending возвращает, отмечен ли тег после переключения
func (s *TaskService) ToggleTagPending(tag task.Tag) (bool, error) {
	if !tag.Valid() {
		return false, NewValidationError("tag", fmt.Sprintf("неизвестный тег %q", tag))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := slices.Index(s.pending, tag); i >= 0 {
		s.pending = slices.Delete(s.pending, i, i+1)
		return false, nil
	}
	s.pending = append(s.pending, tag)
	return true, nil
}

func (s *TaskService) ClearCompleted(ctx context.Context) (removed int, err error) {
	start := time.Now()
	defer func() { observe(opClearCompleted, start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("получение задач: %w", err)
	}
	for _, t := range tasks {
		if !t.Completed {
			continue
		}
		if err := s.repo.Delete(ctx, t.ID); err != nil {
			return removed, fmt.Errorf("удаление задачи %d: %w", t.ID, err)
		}
		delete(s.selected, t.ID)
		removed++
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, s.persist(ctx, opClearCompleted)
}

// ReplaceAll целиком заменяет коллекцию (импорт)
func (s *TaskService) ReplaceAll(ctx context.Context, tasks []task.Task) (err error) {
	start := time.Now()
	defer func() { observe(opReplaceAll, start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.ReplaceAll(ctx, tasks); err != nil {
		return fmt.Errorf("замена коллекции: %w", err)
	}
	s.trackIDs(tasks)
	for id := range s.selected {
		if !s.repo.Exists(ctx, id) {
			delete(s.selected, id)
		}
	}

	logger.Info("Service: Коллекция заменена", zap.Int("tasks", len(tasks)))
	return s.persist(ctx, opReplaceAll)
}

func (s *TaskService) Tasks(ctx context.Context) []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks(ctx)
}

func (s *TaskService) tasks(ctx context.Context) []task.Task {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		logger.Error("Service: Не удалось получить задачи", err)
		return []task.Task{}
	}
	return tasks
}

func (s *TaskService) Exists(ctx context.Context, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Exists(ctx, id)
}

// Selected - выбранные id в каноничном порядке
func (s *TaskService) Selected(ctx context.Context) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedIDs(s.tasks(ctx))
}

func (s *TaskService) selectedIDs(tasks []task.Task) []int64 {
	ids := make([]int64, 0, len(s.selected))
	for _, t := range tasks {
		if _, ok := s.selected[t.ID]; ok {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func (s *TaskService) PendingTags() []task.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.pending)
}

func (s *TaskService) Theme() task.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

func (s *TaskService) SetTheme(ctx context.Context, theme task.Theme) (err error) {
	start := time.Now()
	defer func() { observe(opSetTheme, start, err) }()

	if !theme.Valid() {
		return NewValidationError("theme", fmt.Sprintf("неизвестная тема %q", theme))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setTheme(ctx, theme)
}

func (s *TaskService) ToggleTheme(ctx context.Context) (theme task.Theme, err error) {
	start := time.Now()
	defer func() { observe(opSetTheme, start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	theme = s.theme.Toggle()
	return theme, s.setTheme(ctx, theme)
}

func (s *TaskService) setTheme(ctx context.Context, theme task.Theme) error {
	s.theme = theme
	if err := s.store.SaveTheme(ctx, theme); err != nil {
		logger.Error("Service: Ошибка сохранения темы", err)
		return fmt.Errorf("сохранение темы: %w", err)
	}
	return nil
}

func (s *TaskService) Snapshot(ctx context.Context, now time.Time) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := s.tasks(ctx)
	return Snapshot{
		Tasks:       tasks,
		Selected:    s.selectedIDs(tasks),
		PendingTags: slices.Clone(s.pending),
		Statistics:  query.ComputeStatistics(tasks, now),
		Theme:       s.theme,
	}
}

func (s *TaskService) validate(text, datetime string) (string, string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", "", NewValidationError("text", "описание задачи не может быть пустым")
	}
	datetime = strings.TrimSpace(datetime)
	if datetime == "" {
		return "", "", NewValidationError("datetime", "срок не задан")
	}
	if _, err := task.ParseDatetime(datetime, s.Location()); err != nil {
		return "", "", NewValidationError("datetime", fmt.Sprintf("не удалось разобрать срок %q", datetime))
	}
	return text, datetime, nil
}

// id = max(текущее время в мс, последний id + 1)
func (s *TaskService) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *TaskService) trackIDs(tasks []task.Task) {
	for _, t := range tasks {
		s.lastID = max(s.lastID, t.ID)
	}
}

func (s *TaskService) persist(ctx context.Context, op string) error {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("получение задач: %w", err)
	}
	if err := s.store.SaveTasks(ctx, tasks); err != nil {
		logger.Error("Service: Ошибка сохранения задач", err, zap.String("operation", op))
		return fmt.Errorf("сохранение после %s: %w", op, err)
	}
	return nil
}
