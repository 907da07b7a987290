package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"
	"todoTracker/internal/config"
	"todoTracker/internal/handlers"
	"todoTracker/internal/logger"
	"todoTracker/internal/middleware"
	"todoTracker/internal/service"
	"todoTracker/internal/worker"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	core      *Core
	worker    *worker.OverdueWorker
	shutdowns []func() // функции для graceful shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) (*App, error) {
	if a.config == nil {
		return nil, service.NewWiringError("config")
	}

	if err := logger.Init(a.config.Logging.Development); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	core, err := NewCore(ctx, a.config)
	if err != nil {
		return nil, err
	}
	a.core = core
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Закрытие хранилища...")
		if err := core.Close(); err != nil {
			logger.Error("App: Ошибка закрытия хранилища", err)
		}
	})

	a.router = NewRouter(handlers.NewTaskHandler(checkedService{TaskService: core.Service, core: core}, core.Reorder, core.Transfer), a.config.Server)

	if a.config.Worker.Enabled {
		interval := a.config.Worker.Interval
		a.worker = worker.NewOverdueWorker(core.Service, &interval)
	}

	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("App: Инициализация завершена", zap.String("addr", a.server.Addr))
	return a, nil
}

// Run блокируется до отмены ctx или падения сервера
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.worker != nil {
		go a.worker.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			a.Shutdown()
			return fmt.Errorf("работа сервера: %w", err)
		}
	}

	a.Shutdown()
	return nil
}

func (a *App) Shutdown() {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(ctx); err != nil {
			logger.Error("App: Ошибка остановки сервера", err)
		}
	}

	for _, fn := range slices.Backward(a.shutdowns) {
		fn()
	}
	a.shutdowns = nil
}

func (a *App) Router() http.Handler {
	return a.router
}

// checkedService дополняет проверку здоровья сервиса проверкой хранилища
type checkedService struct {
	*service.TaskService
	core *Core
}

func (s checkedService) HealthCheck(ctx context.Context) error {
	return s.core.HealthCheck(ctx)
}

func NewRouter(h *handlers.TaskHandler, server config.ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.RateLimit(server.RateLimit, server.RateWindow))

	h.Routes(r)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
