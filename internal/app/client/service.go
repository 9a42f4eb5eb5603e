package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"tasksync/internal/domain/sync"
)

// TaskService реализует локальные мутации задач. Каждая запись задачи и
// соответствующий элемент outbox фиксируются в одной транзакции, поэтому
// очередь синхронизации никогда не расходится с локальным состоянием.
type TaskService struct {
	storage *SQLiteStorage
	log     *slog.Logger
}

func NewTaskService(storage *SQLiteStorage, log *slog.Logger) *TaskService {
	return &TaskService{
		storage: storage,
		log:     log.With("component", "task_service"),
	}
}

// Create создает задачу локально и ставит операцию create в очередь
func (s *TaskService) Create(ctx context.Context, req CreateRequest) (*Task, error) {
	now := time.Now().UTC()

	t := &Task{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		CreatedAt:   now,
		UpdatedAt:   now,
		SyncStatus:  SyncStatusPending,
	}

	payload, err := json.Marshal(sync.ItemPayload{
		Title:       &t.Title,
		Description: &t.Description,
		Completed:   &t.Completed,
		UpdatedAt:   t.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации задачи: %w", err)
	}

	entry := &OutboxEntry{
		ID:        uuid.NewString(),
		TaskID:    t.ID,
		Operation: sync.OpCreate,
		Payload:   payload,
		CreatedAt: now,
	}

	if err := s.storage.SaveTaskWithOutbox(ctx, t, entry); err != nil {
		return nil, err
	}

	s.log.Debug("задача создана", "task_id", t.ID)

	return t, nil
}

// Update применяет частичное обновление. Обновлять можно и задачу,
// помеченную удаленной: операция все равно попадет в очередь.
func (s *TaskService) Update(ctx context.Context, id string, patch TaskPatch) (*Task, error) {
	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}

	t, err := s.storage.GetTaskIncludingDeleted(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	t.UpdatedAt = now
	t.SyncStatus = SyncStatusPending

	// В payload уходит только дельта и новый updated_at: серверу этого
	// достаточно для last-write-wins.
	payload, err := json.Marshal(sync.ItemPayload{
		Title:       patch.Title,
		Description: patch.Description,
		Completed:   patch.Completed,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации изменений: %w", err)
	}

	entry := &OutboxEntry{
		ID:        uuid.NewString(),
		TaskID:    t.ID,
		Operation: sync.OpUpdate,
		Payload:   payload,
		CreatedAt: now,
	}

	if err := s.storage.SaveTaskWithOutbox(ctx, t, entry); err != nil {
		return nil, err
	}

	s.log.Debug("задача обновлена", "task_id", t.ID)

	return t, nil
}

// Delete помечает задачу удаленной и ставит операцию delete в очередь.
// Повторное удаление не является ошибкой.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	t, err := s.storage.GetTaskIncludingDeleted(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	t.IsDeleted = true
	t.UpdatedAt = now
	t.SyncStatus = SyncStatusPending

	entry := &OutboxEntry{
		ID:        uuid.NewString(),
		TaskID:    t.ID,
		Operation: sync.OpDelete,
		Payload:   nil,
		CreatedAt: now,
	}

	if err := s.storage.SaveTaskWithOutbox(ctx, t, entry); err != nil {
		return err
	}

	s.log.Debug("задача удалена", "task_id", t.ID)

	return nil
}

// Get возвращает задачу; удаленные задачи не видны
func (s *TaskService) Get(ctx context.Context, id string) (*Task, error) {
	return s.storage.GetTask(ctx, id)
}

// GetIncludingDeleted возвращает задачу независимо от флага удаления
func (s *TaskService) GetIncludingDeleted(ctx context.Context, id string) (*Task, error) {
	return s.storage.GetTaskIncludingDeleted(ctx, id)
}

// ListActive возвращает все неудаленные задачи
func (s *TaskService) ListActive(ctx context.Context) ([]*Task, error) {
	return s.storage.ListActiveTasks(ctx)
}

// ListNeedingSync возвращает задачи, ожидающие синхронизации
func (s *TaskService) ListNeedingSync(ctx context.Context) ([]*Task, error) {
	return s.storage.ListTasksNeedingSync(ctx)
}
