package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasksync/internal/domain/sync"
)

// fakeTransport записывает отправленные пакеты и отвечает по сценарию
type fakeTransport struct {
	healthErr error
	respond   func(req sync.BatchRequest) (*sync.BatchResponse, error)
	requests  []sync.BatchRequest
}

func (f *fakeTransport) HealthCheck(ctx context.Context) error {
	return f.healthErr
}

func (f *fakeTransport) SyncBatch(ctx context.Context, req sync.BatchRequest) (*sync.BatchResponse, error) {
	f.requests = append(f.requests, req)
	return f.respond(req)
}

// respondAll отвечает одинаковым статусом на каждый элемент пакета
func respondAll(status sync.ItemStatus, errMsg string) func(sync.BatchRequest) (*sync.BatchResponse, error) {
	return func(req sync.BatchRequest) (*sync.BatchResponse, error) {
		resp := &sync.BatchResponse{}
		for _, item := range req.Items {
			resp.ProcessedItems = append(resp.ProcessedItems, sync.ProcessedItem{
				ClientID: item.TaskID,
				ServerID: "srv-" + item.TaskID,
				Status:   status,
				Error:    errMsg,
			})
		}
		return resp, nil
	}
}

func newTestSyncService(t *testing.T, transport Transport, batchSize int) (*SyncService, *TaskService, *SQLiteStorage) {
	t.Helper()

	storage := newTestStorage(t)
	tasks := NewTaskService(storage, testLogger())
	engine := NewSyncService(storage, transport, batchSize, 3, testLogger())

	return engine, tasks, storage
}

func TestSyncService_Success(t *testing.T) {
	transport := &fakeTransport{respond: respondAll(sync.StatusSuccess, "")}
	engine, tasks, storage := newTestSyncService(t, transport, 50)
	ctx := context.Background()

	created, err := tasks.Create(ctx, CreateRequest{Title: "buy milk"})
	require.NoError(t, err)

	result, err := engine.Sync(ctx)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Synced)
	assert.Equal(t, 0, result.Failed)

	// Очередь опустела, задача помечена синхронизированной
	count, err := storage.CountOutbox(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	got, err := tasks.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, SyncStatusSynced, got.SyncStatus)
	assert.Equal(t, "srv-"+created.ID, got.ServerID)
	assert.NotNil(t, got.LastSyncedAt)
}

func TestSyncService_FIFOOrder(t *testing.T) {
	transport := &fakeTransport{respond: respondAll(sync.StatusSuccess, "")}
	engine, tasks, _ := newTestSyncService(t, transport, 50)
	ctx := context.Background()

	first, err := tasks.Create(ctx, CreateRequest{Title: "first"})
	require.NoError(t, err)

	newTitle := "first edited"
	_, err = tasks.Update(ctx, first.ID, TaskPatch{Title: &newTitle})
	require.NoError(t, err)

	second, err := tasks.Create(ctx, CreateRequest{Title: "second"})
	require.NoError(t, err)

	_, err = engine.Sync(ctx)
	require.NoError(t, err)

	// Операции уходят в порядке постановки в очередь
	require.Len(t, transport.requests, 1)
	items := transport.requests[0].Items
	require.Len(t, items, 3)
	assert.Equal(t, sync.OpCreate, items[0].Operation)
	assert.Equal(t, first.ID, items[0].TaskID)
	assert.Equal(t, sync.OpUpdate, items[1].Operation)
	assert.Equal(t, sync.OpCreate, items[2].Operation)
	assert.Equal(t, second.ID, items[2].TaskID)
}

func TestSyncService_Batching(t *testing.T) {
	transport := &fakeTransport{respond: respondAll(sync.StatusSuccess, "")}
	engine, tasks, _ := newTestSyncService(t, transport, 2)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := tasks.Create(ctx, CreateRequest{Title: "task"})
		require.NoError(t, err)
	}

	result, err := engine.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Synced)

	// 5 элементов при размере пакета 2 дают пакеты 2+2+1
	require.Len(t, transport.requests, 3)
	assert.Len(t, transport.requests[0].Items, 2)
	assert.Len(t, transport.requests[1].Items, 2)
	assert.Len(t, transport.requests[2].Items, 1)
}

func TestSyncService_ConflictAdoptsServerVersion(t *testing.T) {
	serverTitle := "server version"
	transport := &fakeTransport{
		respond: func(req sync.BatchRequest) (*sync.BatchResponse, error) {
			resp := &sync.BatchResponse{}
			for _, item := range req.Items {
				resp.ProcessedItems = append(resp.ProcessedItems, sync.ProcessedItem{
					ClientID: item.TaskID,
					ServerID: "srv-1",
					Status:   sync.StatusConflict,
					ResolvedData: &sync.TaskSnapshot{
						ServerID:  "srv-1",
						Title:     serverTitle,
						Completed: true,
						UpdatedAt: req.ClientTimestamp,
					},
				})
			}
			return resp, nil
		},
	}
	engine, tasks, storage := newTestSyncService(t, transport, 50)
	ctx := context.Background()

	created, err := tasks.Create(ctx, CreateRequest{Title: "local version"})
	require.NoError(t, err)

	result, err := engine.Sync(ctx)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Synced)

	// Конфликт считается доставленным: очередь пуста, локальная версия
	// замещена серверной
	count, err := storage.CountOutbox(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	got, err := tasks.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, serverTitle, got.Title)
	assert.True(t, got.Completed)
	assert.Equal(t, SyncStatusSynced, got.SyncStatus)
}

func TestSyncService_ErrorIncrementsRetry(t *testing.T) {
	transport := &fakeTransport{respond: respondAll(sync.StatusError, "validation failed")}
	engine, tasks, storage := newTestSyncService(t, transport, 50)
	ctx := context.Background()

	created, err := tasks.Create(ctx, CreateRequest{Title: "buy milk"})
	require.NoError(t, err)

	result, err := engine.Sync(ctx)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, created.ID, result.Errors[0].TaskID)

	// Элемент остается в очереди с увеличенным счетчиком
	entries, err := storage.ListOutbox(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].RetryCount)

	got, err := tasks.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, SyncStatusPending, got.SyncStatus)
}

func TestSyncService_RetryExhaustion(t *testing.T) {
	transport := &fakeTransport{respond: respondAll(sync.StatusError, "validation failed")}
	engine, tasks, storage := newTestSyncService(t, transport, 50)
	ctx := context.Background()

	created, err := tasks.Create(ctx, CreateRequest{Title: "buy milk"})
	require.NoError(t, err)

	// Три прогона исчерпывают лимит попыток
	for i := 0; i < 3; i++ {
		_, err := engine.Sync(ctx)
		require.NoError(t, err)
	}

	got, err := tasks.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, SyncStatusError, got.SyncStatus)

	// Элемент не удаляется, текст ошибки сохранен
	entries, err := storage.ListOutbox(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 3, entries[0].RetryCount)
	require.NotNil(t, entries[0].ErrorMessage)
	assert.Contains(t, *entries[0].ErrorMessage, "permanent failure")
}

func TestSyncService_HealthCheckFailureAborts(t *testing.T) {
	transport := &fakeTransport{
		healthErr: errors.New("connection refused"),
		respond:   respondAll(sync.StatusSuccess, ""),
	}
	engine, tasks, storage := newTestSyncService(t, transport, 50)
	ctx := context.Background()

	_, err := tasks.Create(ctx, CreateRequest{Title: "buy milk"})
	require.NoError(t, err)

	result, err := engine.Sync(ctx)
	require.Error(t, err)
	assert.False(t, result.Success)

	// Пакеты не отправлялись, очередь нетронута
	assert.Empty(t, transport.requests)
	count, err := storage.CountOutbox(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSyncService_TransportFailureRetriesBatch(t *testing.T) {
	transport := &fakeTransport{
		respond: func(req sync.BatchRequest) (*sync.BatchResponse, error) {
			return nil, errors.New("connection reset")
		},
	}
	engine, tasks, storage := newTestSyncService(t, transport, 50)
	ctx := context.Background()

	created, err := tasks.Create(ctx, CreateRequest{Title: "buy milk"})
	require.NoError(t, err)

	// Транспортный сбой - не жесткая ошибка прогона
	result, err := engine.Sync(ctx)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Failed)

	// Элементы недоставленного пакета проходят через обработчик повторов
	entries, err := storage.ListOutbox(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].RetryCount)
	require.NotNil(t, entries[0].ErrorMessage)
	assert.Contains(t, *entries[0].ErrorMessage, "connection reset")

	got, err := tasks.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, SyncStatusPending, got.SyncStatus)
}

func TestSyncService_FailedBatchDoesNotAbortRun(t *testing.T) {
	// Первый пакет теряется в сети, остальные доходят
	calls := 0
	transport := &fakeTransport{}
	transport.respond = func(req sync.BatchRequest) (*sync.BatchResponse, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("connection reset")
		}
		return respondAll(sync.StatusSuccess, "")(req)
	}
	engine, tasks, storage := newTestSyncService(t, transport, 1)
	ctx := context.Background()

	first, err := tasks.Create(ctx, CreateRequest{Title: "first"})
	require.NoError(t, err)
	second, err := tasks.Create(ctx, CreateRequest{Title: "second"})
	require.NoError(t, err)

	result, err := engine.Sync(ctx)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Synced)
	assert.Equal(t, 1, result.Failed)

	// Оба пакета были отправлены
	require.Len(t, transport.requests, 2)

	// Первый элемент остался в очереди со счетчиком, второй доставлен
	entries, err := storage.ListOutbox(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, first.ID, entries[0].TaskID)
	assert.Equal(t, 1, entries[0].RetryCount)

	got, err := tasks.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, SyncStatusSynced, got.SyncStatus)
}

func TestSyncService_ResponseLengthMismatch(t *testing.T) {
	transport := &fakeTransport{
		respond: func(req sync.BatchRequest) (*sync.BatchResponse, error) {
			return &sync.BatchResponse{}, nil
		},
	}
	engine, tasks, storage := newTestSyncService(t, transport, 50)
	ctx := context.Background()

	_, err := tasks.Create(ctx, CreateRequest{Title: "buy milk"})
	require.NoError(t, err)

	// Искаженный ответ обрабатывается как транспортный сбой пакета
	result, err := engine.Sync(ctx)
	require.NoError(t, err)
	assert.False(t, result.Success)

	entries, err := storage.ListOutbox(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].RetryCount)
}

func TestSyncService_SingleFlight(t *testing.T) {
	transport := &fakeTransport{respond: respondAll(sync.StatusSuccess, "")}
	engine, _, _ := newTestSyncService(t, transport, 50)

	engine.mu.Lock()
	engine.isSyncing = true
	engine.mu.Unlock()

	_, err := engine.Sync(context.Background())
	assert.ErrorIs(t, err, ErrSyncInProgress)
}

func TestSyncService_Status(t *testing.T) {
	transport := &fakeTransport{respond: respondAll(sync.StatusSuccess, "")}
	engine, tasks, _ := newTestSyncService(t, transport, 50)
	ctx := context.Background()

	_, err := tasks.Create(ctx, CreateRequest{Title: "buy milk"})
	require.NoError(t, err)

	report, err := engine.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.PendingEntries)
	assert.Equal(t, 1, report.TasksNeedingSync)
	assert.False(t, report.IsSyncing)
	assert.True(t, report.LastSyncTime.IsZero())

	_, err = engine.Sync(ctx)
	require.NoError(t, err)

	report, err = engine.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.PendingEntries)
	assert.Equal(t, 0, report.TasksNeedingSync)
	assert.False(t, report.LastSyncTime.IsZero())
}
