package client

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasksync/internal/domain/sync"
	"tasksync/internal/domain/task"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	storage, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	return storage
}

func testTask(id string, createdAt time.Time) *Task {
	return &Task{
		ID:         id,
		Title:      "test task " + id,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
		SyncStatus: SyncStatusPending,
	}
}

func testEntry(id, taskID string, op sync.Operation, createdAt time.Time) *OutboxEntry {
	return &OutboxEntry{
		ID:        id,
		TaskID:    taskID,
		Operation: op,
		CreatedAt: createdAt,
	}
}

func TestSQLiteStorage_SaveTaskWithOutbox(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	now := time.Now().UTC()

	err := storage.SaveTaskWithOutbox(ctx, testTask("t1", now), testEntry("e1", "t1", sync.OpCreate, now))
	require.NoError(t, err)

	got, err := storage.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "test task t1", got.Title)
	assert.Equal(t, SyncStatusPending, got.SyncStatus)

	count, err := storage.CountOutbox(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSQLiteStorage_GetTask_NotFound(t *testing.T) {
	storage := newTestStorage(t)

	_, err := storage.GetTask(context.Background(), "missing")
	assert.ErrorIs(t, err, task.ErrNotFound)
}

func TestSQLiteStorage_GetTask_HidesDeleted(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	now := time.Now().UTC()

	deleted := testTask("t1", now)
	deleted.IsDeleted = true
	require.NoError(t, storage.SaveTask(ctx, deleted))

	_, err := storage.GetTask(ctx, "t1")
	assert.ErrorIs(t, err, task.ErrNotFound)

	got, err := storage.GetTaskIncludingDeleted(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
}

func TestSQLiteStorage_ListActiveTasks(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, storage.SaveTask(ctx, testTask("t1", now)))

	deleted := testTask("t2", now.Add(time.Second))
	deleted.IsDeleted = true
	require.NoError(t, storage.SaveTask(ctx, deleted))

	tasks, err := storage.ListActiveTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "t1", tasks[0].ID)
}

func TestSQLiteStorage_ListTasksNeedingSync(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	now := time.Now().UTC()

	pending := testTask("t1", now)
	require.NoError(t, storage.SaveTask(ctx, pending))

	failed := testTask("t2", now.Add(time.Second))
	failed.SyncStatus = SyncStatusError
	require.NoError(t, storage.SaveTask(ctx, failed))

	synced := testTask("t3", now.Add(2*time.Second))
	synced.SyncStatus = SyncStatusSynced
	require.NoError(t, storage.SaveTask(ctx, synced))

	tasks, err := storage.ListTasksNeedingSync(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "t1", tasks[0].ID)
	assert.Equal(t, "t2", tasks[1].ID)
}

func TestSQLiteStorage_ListOutbox_FIFO(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	now := time.Now().UTC()

	// Вставляем в обратном хронологическом порядке
	require.NoError(t, storage.SaveTaskWithOutbox(ctx,
		testTask("t3", now.Add(2*time.Second)),
		testEntry("e3", "t3", sync.OpDelete, now.Add(2*time.Second))))
	require.NoError(t, storage.SaveTaskWithOutbox(ctx,
		testTask("t1", now),
		testEntry("e1", "t1", sync.OpCreate, now)))
	require.NoError(t, storage.SaveTaskWithOutbox(ctx,
		testTask("t2", now.Add(time.Second)),
		testEntry("e2", "t2", sync.OpUpdate, now.Add(time.Second))))

	entries, err := storage.ListOutbox(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "e1", entries[0].ID)
	assert.Equal(t, "e2", entries[1].ID)
	assert.Equal(t, "e3", entries[2].ID)
}

func TestSQLiteStorage_DeleteOutboxEntry(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, storage.SaveTaskWithOutbox(ctx, testTask("t1", now), testEntry("e1", "t1", sync.OpCreate, now)))
	require.NoError(t, storage.DeleteOutboxEntry(ctx, "e1"))

	count, err := storage.CountOutbox(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSQLiteStorage_UpdateOutboxFailure(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, storage.SaveTaskWithOutbox(ctx, testTask("t1", now), testEntry("e1", "t1", sync.OpCreate, now)))
	require.NoError(t, storage.UpdateOutboxFailure(ctx, "e1", 2, "connection refused"))

	entries, err := storage.ListOutbox(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].RetryCount)
	require.NotNil(t, entries[0].ErrorMessage)
	assert.Equal(t, "connection refused", *entries[0].ErrorMessage)
}

func TestSQLiteStorage_TimestampPrecision(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	// Наносекундные метки должны пережить запись и чтение без округления
	ts := time.Date(2025, 3, 14, 15, 9, 26, 535897932, time.UTC)
	saved := testTask("t1", ts)
	require.NoError(t, storage.SaveTask(ctx, saved))

	got, err := storage.GetTaskIncludingDeleted(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.Equal(ts))
}
