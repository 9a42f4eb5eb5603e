//Серверная часть tasksync:
//прием пакетов outbox от клиентов и разрешение конфликтов (last-writer-wins);
//мягкое удаление задач;
//отчетность по серверному хранилищу.

//POST /api/v1/sync/batch   # Пакетная синхронизация
//GET  /api/v1/sync/health  # Проба доступности
//GET  /api/v1/sync/status  # Статус синхронизации
//GET  /api/v1/tasks        # Список задач (отчетность)

package api

import (
	healthAPI "tasksync/internal/app/server/api/http/health"
	"tasksync/internal/app/server/api/http/middleware"
	"tasksync/internal/app/server/api/http/middleware/logger"
	syncAPI "tasksync/internal/app/server/api/http/sync"
	taskAPI "tasksync/internal/app/server/api/http/task"
	"tasksync/internal/domain/sync"
	"tasksync/internal/domain/task"
	"tasksync/internal/infrastructure/storage/postgres"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"
)

type Handlers struct {
	Health *healthAPI.Handler
	Sync   *syncAPI.Handler
	Task   *taskAPI.Handler
}

// New создает *chi.Mux со всеми операциями через huma.Register
func New(storage *postgres.Storage, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	config := huma.DefaultConfig("Tasksync API", "1.0.0")

	API := humachi.New(mux, config)

	h := handlers(storage, log)
	h.Health.SetupRoutes(API)
	h.Sync.SetupRoutes(API)
	h.Task.SetupRoutes(API)

	return mux
}

func handlers(storage *postgres.Storage, log *slog.Logger) *Handlers {
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(log, middlewares.GetAllAndClear())

	taskRepo := postgres.NewTaskRepository(storage, log)

	syncService := sync.NewService(taskRepo, log)
	middlewares.Add(loggerMW.Middleware())
	syncHandler := syncAPI.NewHandler(syncService, log, middlewares.GetAllAndClear())

	taskService := task.NewService(taskRepo, log)
	middlewares.Add(loggerMW.Middleware())
	taskHandler := taskAPI.NewHandler(taskService, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health: healthHandler,
		Sync:   syncHandler,
		Task:   taskHandler,
	}
}
