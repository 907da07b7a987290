package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
	"todoTracker/internal/handlers/dto"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/task"
	"todoTracker/internal/query"
	"todoTracker/internal/reorder"
	"todoTracker/internal/service"
	"todoTracker/internal/transfer"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PersistWarningHeader выставляется, когда изменение применено, но не записано в хранилище
const PersistWarningHeader = "X-Persist-Warning"

type TaskHandler struct {
	TaskService TaskService
	Reorder     Reconciler
	Transfer    Transfer
}

func NewTaskHandler(taskService TaskService, reconciler Reconciler, gateway Transfer) *TaskHandler {
	return &TaskHandler{
		TaskService: taskService,
		Reorder:     reconciler,
		Transfer:    gateway,
	}
}

// GET /tasks?search=&sort=
func (s *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	now := s.TaskService.Now()
	snap := s.TaskService.Snapshot(r.Context(), now)
	sortKey := query.ParseSortKey(r.URL.Query().Get("sort"))
	view := query.View(snap.Tasks, r.URL.Query().Get("search"), sortKey, now)

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(view)),
		zap.String("sort", string(sortKey)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTaskList(view, now, snap.Selected))
}

// POST /tasks
func (s *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.CreateTaskRequest
	if err := decodeJSON(r, &request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	var (
		created *task.Task
		err     error
	)
	if request.Tags == nil {
		created, err = s.TaskService.CreateFromPending(r.Context(), request.Text, request.Datetime)
	} else {
		tags := make([]task.Tag, len(*request.Tags))
		for i, tag := range *request.Tags {
			tags[i] = task.Tag(tag)
		}
		created, err = s.TaskService.Create(r.Context(), request.Text, request.Datetime, tags)
	}
	if err != nil && created == nil {
		handleError(w, r, "create_task", err)
		return
	}
	if err != nil {
		// задача уже в коллекции; повтор запроса создал бы дубликат
		logger.Error("HTTP: Задача создана, но не сохранена", err, zap.Int64("task_id", created.ID))
		w.Header().Set(PersistWarningHeader, "task created but not persisted")
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.Int64("task_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithBody(w, http.StatusCreated, dto.FromTask(*created, s.TaskService.Now(), false))
}

// PUT /tasks/{id}
func (s *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := s.existingID(w, r)
	if !ok {
		return
	}

	if !checkContentType(r, "application/json") {
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.UpdateTaskRequest
	if err := decodeJSON(r, &request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверно переданы параметры обновления: "+err.Error())
		return
	}

	if err := s.TaskService.Edit(r.Context(), id, request.Text, request.Datetime); err != nil {
		handleError(w, r, "update_task", err)
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.Int64("task_id", id),
		zap.Duration("ms", time.Since(start)))

	responseWithJSON(w, http.StatusOK, toPayload("id", id))
}

// DELETE /tasks/{id}: удаление отсутствующей задачи не ошибка
func (s *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, err := parseID(r)
	if err != nil {
		handleError(w, r, "delete_task", err)
		return
	}

	if err := s.TaskService.Delete(r.Context(), id); err != nil {
		handleError(w, r, "delete_task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /tasks/{id}/toggle
func (s *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := s.existingID(w, r)
	if !ok {
		return
	}
	if err := s.TaskService.ToggleComplete(r.Context(), id); err != nil {
		handleError(w, r, "toggle_task", err)
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("id", id))
}

// POST /tasks/{id}/select
func (s *TaskHandler) SelectTask(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := s.existingID(w, r)
	if !ok {
		return
	}
	selected := s.TaskService.ToggleTaskSelection(r.Context(), id)
	responseWithJSON(w, http.StatusOK, toPayload("id", id), toPayload("selected", selected))
}

// POST /tasks/bulk/{action}, action: complete | delete
func (s *TaskHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var (
		affected int
		err      error
	)
	action := chi.URLParam(r, "action")
	switch action {
	case "complete":
		affected, err = s.TaskService.BulkComplete(r.Context())
	case "delete":
		affected, err = s.TaskService.BulkDelete(r.Context())
	default:
		err = service.NewValidationError("action", fmt.Sprintf("неизвестное действие %q", action))
	}
	if err != nil {
		handleError(w, r, "bulk_"+action, err)
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("affected", affected))
}

// POST /tasks/clear-completed
func (s *TaskHandler) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	removed, err := s.TaskService.ClearCompleted(r.Context())
	if err != nil {
		handleError(w, r, "clear_completed", err)
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("removed", removed))
}

// PUT /tasks/order
func (s *TaskHandler) SetOrder(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.ReorderRequest
	if err := decodeJSON(r, &request); err != nil {
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	if err := s.Reorder.Reconcile(r.Context(), reorder.ParseDataIDs(request.IDs)); err != nil {
		handleError(w, r, "reorder", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /tags/{tag}/toggle
func (s *TaskHandler) ToggleTag(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	tag := task.Tag(chi.URLParam(r, "tag"))
	active, err := s.TaskService.ToggleTagPending(tag)
	if err != nil {
		handleError(w, r, "toggle_tag", err)
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("tag", tag), toPayload("active", active))
}

// GET /state
func (s *TaskHandler) GetState(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	now := s.TaskService.Now()
	snap := s.TaskService.Snapshot(r.Context(), now)
	responseWithBody(w, http.StatusOK, dto.StateResponse{
		Tasks:       dto.FromTaskList(snap.Tasks, now, snap.Selected),
		Selected:    snap.Selected,
		PendingTags: dto.TagStrings(snap.PendingTags),
		Statistics:  snap.Statistics,
		Theme:       string(snap.Theme),
	})
}

// GET /statistics
func (s *TaskHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	snap := s.TaskService.Snapshot(r.Context(), s.TaskService.Now())
	responseWithBody(w, http.StatusOK, snap.Statistics)
}

// GET /calendar?year=&month=, по умолчанию текущий месяц
func (s *TaskHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	now := s.TaskService.Now()
	year, month := now.Year(), now.Month()

	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			handleError(w, r, "calendar", service.NewValidationError("year", fmt.Sprintf("некорректный год %q", v)))
			return
		}
		year = parsed
	}
	if v := r.URL.Query().Get("month"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 12 {
			handleError(w, r, "calendar", service.NewValidationError("month", fmt.Sprintf("некорректный месяц %q", v)))
			return
		}
		month = time.Month(parsed)
	}

	snap := s.TaskService.Snapshot(r.Context(), now)
	responseWithBody(w, http.StatusOK, dto.FromMonth(query.Calendar(snap.Tasks, year, month, now.Location())))
}

// GET /export?format=
func (s *TaskHandler) Export(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	format, err := transfer.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		handleError(w, r, "export", err)
		return
	}

	data, filename, err := s.Transfer.Export(r.Context(), format)
	if err != nil {
		handleError(w, r, "export", err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.Error("HTTP: Ошибка записи файла экспорта", err)
	}
}

// POST /import?format=, тело запроса - содержимое файла
func (s *TaskHandler) Import(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	format, err := transfer.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		handleError(w, r, "import", err)
		return
	}

	defer r.Body.Close()
	imported, err := s.Transfer.Import(r.Context(), r.Body, format)
	if err != nil {
		handleError(w, r, "import", err)
		return
	}

	logger.Info("HTTP_OUT: Задачи импортированы",
		zap.Int("count", imported),
		zap.Duration("ms", time.Since(start)))

	responseWithJSON(w, http.StatusOK, toPayload("imported", imported))
}

// GET /theme
func (s *TaskHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	responseWithJSON(w, http.StatusOK, toPayload("theme", s.TaskService.Theme()))
}

// PUT /theme
func (s *TaskHandler) PutTheme(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.ThemeRequest
	if err := decodeJSON(r, &request); err != nil {
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}
	if err := s.TaskService.SetTheme(r.Context(), task.Theme(request.Theme)); err != nil {
		handleError(w, r, "set_theme", err)
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("theme", request.Theme))
}

// POST /theme/toggle
func (s *TaskHandler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	theme, err := s.TaskService.ToggleTheme(r.Context())
	if err != nil {
		handleError(w, r, "toggle_theme", err)
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("theme", theme))
}

func (s *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := s.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Health check не пройден", err)
		responseWithJSON(w, http.StatusServiceUnavailable, toPayload("status", "unavailable"))
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("status", "ok"))
}

// existingID разбирает {id} и отвечает 404, если такой задачи нет
func (s *TaskHandler) existingID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := parseID(r)
	if err != nil {
		logger.Warn("HTTP: Не удалось получить id",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		handleError(w, r, "parse_id", err)
		return 0, false
	}
	if !s.TaskService.Exists(r.Context(), id) {
		handleError(w, r, "find_task", service.NewNotFound(id))
		return 0, false
	}
	return id, true
}

// Routes регистрирует маршруты адаптера на r
func (s *TaskHandler) Routes(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", s.GetTasks)                       // GET /tasks
		r.Post("/", s.PostTask)                      // POST /tasks
		r.Put("/order", s.SetOrder)                  // PUT /tasks/order
		r.Post("/clear-completed", s.ClearCompleted) // POST /tasks/clear-completed
		r.Post("/bulk/{action}", s.Bulk)             // POST /tasks/bulk/{action}

		r.Route("/{id}", func(r chi.Router) {
			r.Put("/", s.UpdateTask)        // PUT /tasks/{id}
			r.Delete("/", s.DeleteTask)     // DELETE /tasks/{id}
			r.Post("/toggle", s.ToggleTask) // POST /tasks/{id}/toggle
			r.Post("/select", s.SelectTask) // POST /tasks/{id}/select
		})
	})

	r.Post("/tags/{tag}/toggle", s.ToggleTag)

	r.Get("/state", s.GetState)
	r.Get("/statistics", s.GetStatistics)
	r.Get("/calendar", s.GetCalendar)
	r.Get("/export", s.Export)
	r.Post("/import", s.Import)

	r.Route("/theme", func(r chi.Router) {
		r.Get("/", s.GetTheme)
		r.Put("/", s.PutTheme)
		r.Post("/toggle", s.ToggleTheme)
	})

	r.Get("/health", s.HealthCheck)
}
