package client

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"golang.org/x/exp/slog"

	"tasksync/internal/domain/sync"
	"tasksync/internal/domain/task"
)

// Transport описывает серверную сторону синхронизации. Выделен в
// интерфейс, чтобы движок можно было тестировать без реального сервера.
type Transport interface {
	HealthCheck(ctx context.Context) error
	SyncBatch(ctx context.Context, req sync.BatchRequest) (*sync.BatchResponse, error)
}

// SyncService выгружает очередь outbox на сервер. Очередь вычитывается в
// порядке создания и режется на пакеты фиксированного размера; элементы
// внутри пакета отправляются одним запросом и обрабатываются по
// результатам сервера.
type SyncService struct {
	storage   *SQLiteStorage
	transport Transport
	log       *slog.Logger

	batchSize  int
	maxRetries int

	mu        gosync.RWMutex
	isSyncing bool
	lastSync  time.Time
}

// NewSyncService создает новый сервис синхронизации
func NewSyncService(storage *SQLiteStorage, transport Transport, batchSize, maxRetries int, log *slog.Logger) *SyncService {
	return &SyncService{
		storage:    storage,
		transport:  transport,
		log:        log.With("component", "sync_service"),
		batchSize:  batchSize,
		maxRetries: maxRetries,
	}
}

// Sync запускает один полный прогон синхронизации. Повторный запуск во
// время работающего прогона возвращает ErrSyncInProgress.
func (s *SyncService) Sync(ctx context.Context) (*SyncResult, error) {
	s.mu.Lock()
	if s.isSyncing {
		s.mu.Unlock()
		return nil, ErrSyncInProgress
	}
	s.isSyncing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSyncing = false
		s.mu.Unlock()
	}()

	result := &SyncResult{
		StartTime: time.Now(),
		Errors:    []SyncError{},
	}

	// Пробный запрос перед прогоном: если сервер недоступен,
	// очередь остается нетронутой.
	if err := s.transport.HealthCheck(ctx); err != nil {
		s.finish(result, false)
		return result, fmt.Errorf("сервер недоступен: %w", err)
	}

	entries, err := s.storage.ListOutbox(ctx)
	if err != nil {
		s.finish(result, false)
		return result, fmt.Errorf("ошибка чтения очереди: %w", err)
	}

	if len(entries) == 0 {
		s.finish(result, true)
		return result, nil
	}

	s.log.Info("Начало синхронизации", "pending", len(entries))

	for start := 0; start < len(entries); start += s.batchSize {
		end := start + s.batchSize
		if end > len(entries) {
			end = len(entries)
		}

		// Недоставленный пакет не прерывает прогон: его элементы уже
		// прошли через обработчик повторов, остальные пакеты отправляются
		if err := s.processBatch(ctx, entries[start:end], result); err != nil {
			s.finish(result, false)
			return result, err
		}
	}

	s.finish(result, result.Failed == 0)

	s.log.Info("Синхронизация завершена",
		"synced", result.Synced,
		"failed", result.Failed,
		"duration", result.Duration,
	)

	return result, nil
}

func (s *SyncService) processBatch(ctx context.Context, entries []*OutboxEntry, result *SyncResult) error {
	req := sync.BatchRequest{
		Items:           make([]sync.Item, 0, len(entries)),
		ClientTimestamp: time.Now().UTC(),
	}

	for _, entry := range entries {
		req.Items = append(req.Items, sync.Item{
			ID:         entry.ID,
			TaskID:     entry.TaskID,
			Operation:  entry.Operation,
			Data:       entry.Payload,
			CreatedAt:  entry.CreatedAt,
			RetryCount: entry.RetryCount,
		})
	}

	resp, err := s.transport.SyncBatch(ctx, req)
	if err != nil {
		return s.failBatch(ctx, entries, fmt.Sprintf("ошибка отправки пакета: %v", err), result)
	}

	// Искаженный ответ приравнивается к транспортному сбою пакета
	if len(resp.ProcessedItems) != len(entries) {
		return s.failBatch(ctx, entries,
			fmt.Sprintf("сервер вернул %d результатов вместо %d", len(resp.ProcessedItems), len(entries)),
			result)
	}

	// Результаты приходят в порядке отправки
	for i, item := range resp.ProcessedItems {
		entry := entries[i]

		switch item.Status {
		case sync.StatusSuccess, sync.StatusConflict:
			// Конфликт разрешен сервером: принимаем его версию и
			// считаем элемент доставленным.
			if err := s.applyOutcome(ctx, entry, &item); err != nil {
				return err
			}
			result.Synced++
		case sync.StatusError:
			if err := s.handleFailure(ctx, entry, item.Error, result); err != nil {
				return err
			}
		default:
			// Неизвестный статус - ошибка только этого элемента
			if err := s.handleFailure(ctx, entry,
				fmt.Sprintf("неизвестный статус элемента: %s", item.Status), result); err != nil {
				return err
			}
		}
	}

	return nil
}

// failBatch обрабатывает транспортный сбой: каждый элемент недоставленного
// пакета проходит через обработчик повторов, прогон продолжается
func (s *SyncService) failBatch(ctx context.Context, entries []*OutboxEntry, message string, result *SyncResult) error {
	s.log.Warn("пакет не доставлен", "entries", len(entries), "error", message)

	for _, entry := range entries {
		if err := s.handleFailure(ctx, entry, message, result); err != nil {
			return err
		}
	}

	return nil
}

// applyOutcome помечает задачу синхронизированной и удаляет доставленный
// элемент из очереди. Если сервер прислал свою версию, она замещает
// локальные поля. Элемент удаляется последним: сбой между шагами оставит
// его в очереди, а повторная доставка безопасна.
func (s *SyncService) applyOutcome(ctx context.Context, entry *OutboxEntry, item *sync.ProcessedItem) error {
	t, err := s.storage.GetTaskIncludingDeleted(ctx, entry.TaskID)
	if errors.Is(err, task.ErrNotFound) {
		s.log.Warn("задача не найдена после синхронизации", "task_id", entry.TaskID)
		return s.storage.DeleteOutboxEntry(ctx, entry.ID)
	}
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	if item.ResolvedData != nil {
		t.Title = item.ResolvedData.Title
		t.Description = item.ResolvedData.Description
		t.Completed = item.ResolvedData.Completed
		t.UpdatedAt = item.ResolvedData.UpdatedAt
		t.IsDeleted = item.ResolvedData.IsDeleted
	}
	if item.ServerID != "" {
		t.ServerID = item.ServerID
	}
	t.SyncStatus = SyncStatusSynced
	t.LastSyncedAt = &now

	if err := s.storage.SaveTask(ctx, t); err != nil {
		return err
	}

	return s.storage.DeleteOutboxEntry(ctx, entry.ID)
}

// handleFailure увеличивает счетчик попыток элемента. После исчерпания
// лимита задача помечается ошибочной, но элемент остается в очереди для
// ручного вмешательства.
func (s *SyncService) handleFailure(ctx context.Context, entry *OutboxEntry, message string, result *SyncResult) error {
	entry.RetryCount++

	result.Failed++
	result.Errors = append(result.Errors, SyncError{
		TaskID:    entry.TaskID,
		Operation: string(entry.Operation),
		Error:     message,
		Timestamp: time.Now(),
	})

	if entry.RetryCount >= s.maxRetries {
		s.log.Warn("лимит попыток исчерпан",
			"entry_id", entry.ID,
			"task_id", entry.TaskID,
			"retries", entry.RetryCount,
		)

		if err := s.storage.UpdateOutboxFailure(ctx, entry.ID, entry.RetryCount,
			fmt.Sprintf("permanent failure after %d retries: %s", entry.RetryCount, message)); err != nil {
			return err
		}

		t, err := s.storage.GetTaskIncludingDeleted(ctx, entry.TaskID)
		if errors.Is(err, task.ErrNotFound) {
			s.log.Warn("задача не найдена при фиксации отказа", "task_id", entry.TaskID)
			return nil
		}
		if err != nil {
			return err
		}
		t.SyncStatus = SyncStatusError
		return s.storage.SaveTask(ctx, t)
	}

	return s.storage.UpdateOutboxFailure(ctx, entry.ID, entry.RetryCount, message)
}

func (s *SyncService) finish(result *SyncResult, success bool) {
	result.Success = success
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	if success {
		s.mu.Lock()
		s.lastSync = result.EndTime
		s.mu.Unlock()
	}
}

// Status возвращает сводку локального состояния синхронизации
func (s *SyncService) Status(ctx context.Context) (*SyncStatusReport, error) {
	pending, err := s.storage.CountOutbox(ctx)
	if err != nil {
		return nil, err
	}

	needing, err := s.storage.ListTasksNeedingSync(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return &SyncStatusReport{
		PendingEntries:   pending,
		TasksNeedingSync: len(needing),
		LastSyncTime:     s.lastSync,
		IsSyncing:        s.isSyncing,
	}, nil
}
