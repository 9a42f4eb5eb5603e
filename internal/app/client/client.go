package client

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/exp/slog"

	"tasksync/internal/app/client/config"
	"tasksync/internal/domain/sync"
)

type ctxKey string

// AppContextKey - ключ, под которым App кладется в контекст команды
const AppContextKey ctxKey = "app"

type App struct {
	config      *config.Config
	log         *slog.Logger
	storage     *SQLiteStorage
	httpClient  *httpClient
	taskService *TaskService
	syncService *SyncService
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	if err := os.MkdirAll(cfg.ConfigDir, 0700); err != nil {
		return nil, fmt.Errorf("ошибка создания каталога конфигурации: %w", err)
	}

	// Инициализируем HTTP клиент
	httpCl, err := NewHTTPClient(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации HTTP клиента: %w", err)
	}

	// Инициализируем локальное хранилище
	storage, err := NewSQLiteStorage(cfg.DataPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации хранилища: %w", err)
	}

	app := &App{
		config:      cfg,
		log:         log,
		storage:     storage,
		httpClient:  httpCl,
		taskService: NewTaskService(storage, log),
		syncService: NewSyncService(storage, httpCl, cfg.BatchSize, cfg.MaxRetries, log),
	}

	return app, nil
}

// Tasks возвращает сервис локальных мутаций
func (a *App) Tasks() *TaskService {
	return a.taskService
}

// Sync запускает синхронизацию
func (a *App) Sync(ctx context.Context) (*SyncResult, error) {
	return a.syncService.Sync(ctx)
}

// SyncStatus возвращает сводку локального состояния синхронизации
func (a *App) SyncStatus(ctx context.Context) (*SyncStatusReport, error) {
	return a.syncService.Status(ctx)
}

// ServerSyncStatus запрашивает статус синхронизации у сервера
func (a *App) ServerSyncStatus(ctx context.Context) (*sync.Status, error) {
	return a.httpClient.GetSyncStatus(ctx)
}

// CheckConnection проверяет соединение с сервером
func (a *App) CheckConnection(ctx context.Context) error {
	return a.httpClient.HealthCheck(ctx)
}

func (a *App) Close() error {
	return a.storage.Close()
}
