package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"tasksync/internal/domain/task"
)

// Servicer интерфейс сервиса синхронизации на стороне сервера
type Servicer interface {
	// ProcessBatch обрабатывает пакет элементов outbox и возвращает
	// по одному результату на каждый элемент
	ProcessBatch(ctx context.Context, req BatchRequest) (*BatchResponse, error)

	// GetStatus возвращает сводку состояния синхронизации
	GetStatus(ctx context.Context) (*Status, error)
}

// Service разрешает конфликты по правилу "последняя запись побеждает":
// побеждает версия с более поздним updated_at, при равенстве - серверная.
type Service struct {
	repo task.Repository
	log  *slog.Logger

	mu        gosync.Mutex
	lastBatch time.Time
}

// NewService создает новый сервис синхронизации
func NewService(repo task.Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("component", "sync_service"),
	}
}

// ProcessBatch обрабатывает каждый элемент независимо: ошибка одного
// элемента не прерывает обработку остальных.
func (s *Service) ProcessBatch(ctx context.Context, req BatchRequest) (*BatchResponse, error) {
	resp := &BatchResponse{
		ProcessedItems: make([]ProcessedItem, 0, len(req.Items)),
	}

	for _, item := range req.Items {
		resp.ProcessedItems = append(resp.ProcessedItems, s.processItem(ctx, item))
	}

	s.mu.Lock()
	s.lastBatch = time.Now()
	s.mu.Unlock()

	s.log.Info("batch processed",
		"items", len(req.Items),
		"client_timestamp", req.ClientTimestamp,
	)

	return resp, nil
}

// GetStatus возвращает сводку состояния синхронизации
func (s *Service) GetStatus(ctx context.Context) (*Status, error) {
	total, err := s.repo.Count(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}

	s.mu.Lock()
	lastBatch := s.lastBatch
	s.mu.Unlock()

	return &Status{
		TotalTasks:    total,
		LastBatchTime: lastBatch,
		ServerTime:    time.Now(),
	}, nil
}

// processItem обрабатывает один элемент пакета. Любой сбой, включая панику,
// превращается в результат со статусом error только для этого элемента.
func (s *Service) processItem(ctx context.Context, item Item) (result ProcessedItem) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("panic while processing item",
				"item_id", item.ID, "task_id", item.TaskID, "panic", r)
			result = ProcessedItem{
				ClientID: item.TaskID,
				Status:   StatusError,
				Error:    fmt.Sprintf("internal error: %v", r),
			}
		}
	}()

	switch item.Operation {
	case OpCreate:
		return s.applyCreate(ctx, item)
	case OpUpdate:
		return s.applyUpdate(ctx, item)
	case OpDelete:
		return s.applyDelete(ctx, item)
	default:
		return ProcessedItem{
			ClientID: item.TaskID,
			Status:   StatusError,
			Error:    fmt.Sprintf("%v: %q", ErrUnknownOperation, item.Operation),
		}
	}
}

// applyCreate всегда создает новую задачу. Повторная доставка create после
// потерянного ответа даст дубликат - принятое ограничение at-least-once.
func (s *Service) applyCreate(ctx context.Context, item Item) ProcessedItem {
	payload, err := decodePayload(item.Data)
	if err != nil {
		return errorItem(item, err)
	}

	t, err := s.createFromPayload(ctx, item, payload)
	if err != nil {
		return errorItem(item, err)
	}

	return ProcessedItem{
		ClientID:     item.TaskID,
		ServerID:     t.ID,
		Status:       StatusSuccess,
		ResolvedData: snapshot(t),
	}
}

// applyUpdate сравнивает updated_at клиента с серверным. Строго больше -
// клиент побеждает и дельта применяется; иначе возвращается conflict
// с неизмененным серверным снимком, который клиент обязан принять.
func (s *Service) applyUpdate(ctx context.Context, item Item) ProcessedItem {
	payload, err := decodePayload(item.Data)
	if err != nil {
		return errorItem(item, err)
	}

	stored, err := s.repo.GetByClientID(ctx, item.TaskID)
	if errors.Is(err, task.ErrNotFound) {
		// Задача не дошла до сервера - считаем update созданием
		t, cerr := s.createFromPayload(ctx, item, payload)
		if cerr != nil {
			return errorItem(item, cerr)
		}
		return ProcessedItem{
			ClientID:     item.TaskID,
			ServerID:     t.ID,
			Status:       StatusSuccess,
			ResolvedData: snapshot(t),
		}
	}
	if err != nil {
		return errorItem(item, err)
	}

	if !payload.UpdatedAt.After(stored.UpdatedAt) {
		s.log.Debug("update rejected, server version wins",
			"task_id", item.TaskID,
			"client_updated_at", payload.UpdatedAt,
			"server_updated_at", stored.UpdatedAt,
		)
		return ProcessedItem{
			ClientID:     item.TaskID,
			ServerID:     stored.ID,
			Status:       StatusConflict,
			ResolvedData: snapshot(stored),
		}
	}

	if payload.Title != nil {
		stored.Title = *payload.Title
	}
	if payload.Description != nil {
		stored.Description = *payload.Description
	}
	if payload.Completed != nil {
		stored.Completed = *payload.Completed
	}
	stored.UpdatedAt = payload.UpdatedAt

	if err := s.repo.Update(ctx, stored); err != nil {
		return errorItem(item, err)
	}

	return ProcessedItem{
		ClientID:     item.TaskID,
		ServerID:     stored.ID,
		Status:       StatusSuccess,
		ResolvedData: snapshot(stored),
	}
}

// applyDelete идемпотентен: удаление отсутствующей или уже удаленной
// задачи - это success, а не ошибка.
func (s *Service) applyDelete(ctx context.Context, item Item) ProcessedItem {
	err := s.repo.SoftDeleteByClientID(ctx, item.TaskID, time.Now())
	if err != nil && !errors.Is(err, task.ErrNotFound) {
		return errorItem(item, err)
	}

	return ProcessedItem{
		ClientID: item.TaskID,
		Status:   StatusSuccess,
	}
}

func (s *Service) createFromPayload(ctx context.Context, item Item, payload *ItemPayload) (*task.Task, error) {
	now := time.Now()
	updatedAt := payload.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = item.CreatedAt
	}

	t := &task.Task{
		ID:        uuid.NewString(),
		ClientID:  item.TaskID,
		CreatedAt: now,
		UpdatedAt: updatedAt,
	}
	if payload.Title != nil {
		t.Title = *payload.Title
	}
	if payload.Description != nil {
		t.Description = *payload.Description
	}
	if payload.Completed != nil {
		t.Completed = *payload.Completed
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	return t, nil
}

func decodePayload(data json.RawMessage) (*ItemPayload, error) {
	var payload ItemPayload
	if len(data) == 0 {
		return &payload, nil
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode item payload: %w", err)
	}
	return &payload, nil
}

func errorItem(item Item, err error) ProcessedItem {
	return ProcessedItem{
		ClientID: item.TaskID,
		Status:   StatusError,
		Error:    err.Error(),
	}
}

func snapshot(t *task.Task) *TaskSnapshot {
	return &TaskSnapshot{
		ServerID:    t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		UpdatedAt:   t.UpdatedAt,
		IsDeleted:   t.IsDeleted(),
	}
}
