package inmemory

import (
	"context"
	"fmt"
	"sync"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/task"
	repo "todoTracker/internal/repository"

	"go.uber.org/zap"
)

// TaskStorage хранит каноничную коллекцию: задачи по id и их порядок в ids
type TaskStorage struct {
	storage map[int64]*task.Task
	mtx     *sync.RWMutex
	ids     []int64
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[int64]*task.Task),
		mtx:     &sync.RWMutex{},
		ids:     []int64{},
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: Коллекция задач доступна", zap.Int("tasks", s.Len()))
	return nil
}

func (s *TaskStorage) Len() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return len(s.ids)
}

// добавление в конец коллекции
func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[taskToCreate.ID]; ok {
		return fmt.Errorf("создание задачи %d: %w", taskToCreate.ID, repo.ErrDuplicateID)
	}

	stored := taskToCreate.Clone()
	s.storage[stored.ID] = &stored
	s.ids = append(s.ids, stored.ID)
	return nil
}

func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[taskToUpdate.ID]; !ok {
		return repo.ErrNotFound
	}
	stored := taskToUpdate.Clone()
	s.storage[stored.ID] = &stored
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	c := taskToGet.Clone()
	return &c, nil
}

func (s *TaskStorage) Exists(ctx context.Context, id int64) bool {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	_, ok := s.storage[id]
	return ok
}

// удаление отсутствующей задачи не ошибка
func (s *TaskStorage) Delete(ctx context.Context, id int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return nil
	}
	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return nil
}

// все задачи в каноничном порядке
func (s *TaskStorage) List(ctx context.Context) ([]task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]task.Task, 0, len(s.ids))
	for _, id := range s.ids {
		res = append(res, s.storage[id].Clone())
	}
	return res, nil
}

// Reorder принимает только перестановку текущих id
func (s *TaskStorage) Reorder(ctx context.Context, ids []int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if len(ids) != len(s.ids) {
		return fmt.Errorf("ожидалось %d id, получено %d: %w", len(s.ids), len(ids), repo.ErrOrderMismatch)
	}
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.storage[id]; !ok {
			return fmt.Errorf("id %d: %w", id, repo.ErrOrderMismatch)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("повтор id %d: %w", id, repo.ErrOrderMismatch)
		}
		seen[id] = struct{}{}
	}

	s.ids = append(make([]int64, 0, len(ids)), ids...)
	return nil
}

// ReplaceAll полностью заменяет коллекцию; при повторе id ничего не меняет
func (s *TaskStorage) ReplaceAll(ctx context.Context, tasks []task.Task) error {
	storage := make(map[int64]*task.Task, len(tasks))
	ids := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		if _, ok := storage[t.ID]; ok {
			return fmt.Errorf("замена коллекции, id %d: %w", t.ID, repo.ErrDuplicateID)
		}
		c := t.Clone()
		storage[c.ID] = &c
		ids = append(ids, c.ID)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.storage = storage
	s.ids = ids
	return nil
}
