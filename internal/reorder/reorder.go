package reorder

import (
	"context"
	"strconv"
	"strings"
	"todoTracker/internal/logger"

	"go.uber.org/zap"
)

// Store - то, что нужно сверщику от хранилища задач
type Store interface {
	Exists(ctx context.Context, id int64) bool
	SetOrder(ctx context.Context, ids []int64) error
}

// Reconciler переводит порядок видимых после перетаскивания элементов в порядок коллекции
type Reconciler struct {
	store Store
}

func New(store Store) *Reconciler {
	return &Reconciler{store: store}
}

// Reconcile копирует снимок один раз, выбрасывает исчезнувшие и повторные id
func (r *Reconciler) Reconcile(ctx context.Context, visibleIDs []int64) error {
	ids := make([]int64, 0, len(visibleIDs))
	seen := make(map[int64]struct{}, len(visibleIDs))
	for _, id := range visibleIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if !r.store.Exists(ctx, id) {
			logger.Info("Reorder: Элемент без задачи пропущен", zap.Int64("id", id))
			continue
		}
		ids = append(ids, id)
	}
	return r.store.SetOrder(ctx, ids)
}

// ParseDataIDs разбирает значения data-id; нечисловые пропускаются
func ParseDataIDs(values []string) []int64 {
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			logger.Warn("Reorder: Некорректный data-id", zap.String("value", v))
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
