package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"tasksync/internal/domain/sync"
	"tasksync/internal/domain/task"
)

type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных: %w", err)
	}

	storage := &SQLiteStorage{db: db}

	// Создаем таблицы
	if err := storage.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка инициализации таблиц: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) initTables() error {
	// Таблицы задач и очереди исходящих изменений
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			completed BOOLEAN NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			is_deleted BOOLEAN NOT NULL DEFAULT 0,
			sync_status TEXT NOT NULL DEFAULT 'pending',
			last_synced_at TEXT,
			server_id TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS outbox_entries (
			id TEXT PRIMARY KEY,
			task_id TEXT NOT NULL,
			operation TEXT NOT NULL,
			payload BLOB,
			created_at TEXT NOT NULL,
			retry_count INTEGER NOT NULL DEFAULT 0,
			error_message TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_deleted ON tasks(is_deleted);
		CREATE INDEX IF NOT EXISTS idx_tasks_sync_status ON tasks(sync_status);
		CREATE INDEX IF NOT EXISTS idx_outbox_created ON outbox_entries(created_at);
	`)

	return err
}

// SaveTaskWithOutbox пишет задачу и элемент outbox в одной транзакции:
// мутация не считается зафиксированной, пока не записана очередь.
func (s *SQLiteStorage) SaveTaskWithOutbox(ctx context.Context, t *Task, entry *OutboxEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка открытия транзакции: %w", err)
	}
	defer tx.Rollback()

	if err := s.upsertTask(ctx, tx, t); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO outbox_entries (id, task_id, operation, payload, created_at, retry_count, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.TaskID, string(entry.Operation), entry.Payload,
		formatTime(entry.CreatedAt), entry.RetryCount, entry.ErrorMessage)
	if err != nil {
		return fmt.Errorf("ошибка записи в outbox: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}

	return nil
}

// SaveTask сохраняет задачу без записи в outbox. Используется движком
// синхронизации для обновления статуса по результатам прогона.
func (s *SQLiteStorage) SaveTask(ctx context.Context, t *Task) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка открытия транзакции: %w", err)
	}
	defer tx.Rollback()

	if err := s.upsertTask(ctx, tx, t); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) upsertTask(ctx context.Context, tx *sql.Tx, t *Task) error {
	var lastSynced interface{}
	if t.LastSyncedAt != nil {
		lastSynced = formatTime(*t.LastSyncedAt)
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, completed, created_at, updated_at,
		                   is_deleted, sync_status, last_synced_at, server_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			completed = excluded.completed,
			updated_at = excluded.updated_at,
			is_deleted = excluded.is_deleted,
			sync_status = excluded.sync_status,
			last_synced_at = excluded.last_synced_at,
			server_id = excluded.server_id
	`, t.ID, t.Title, t.Description, t.Completed,
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
		t.IsDeleted, string(t.SyncStatus), lastSynced, t.ServerID)
	if err != nil {
		return fmt.Errorf("ошибка сохранения задачи: %w", err)
	}

	return nil
}

// GetTask возвращает задачу, если она существует и не удалена
func (s *SQLiteStorage) GetTask(ctx context.Context, id string) (*Task, error) {
	t, err := s.GetTaskIncludingDeleted(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.IsDeleted {
		return nil, task.ErrNotFound
	}
	return t, nil
}

// GetTaskIncludingDeleted возвращает задачу независимо от флага удаления
func (s *SQLiteStorage) GetTaskIncludingDeleted(ctx context.Context, id string) (*Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, completed, created_at, updated_at,
		       is_deleted, sync_status, last_synced_at, server_id
		FROM tasks
		WHERE id = ?
	`, id)

	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, task.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения задачи: %w", err)
	}

	return t, nil
}

// ListActiveTasks возвращает все неудаленные задачи
func (s *SQLiteStorage) ListActiveTasks(ctx context.Context) ([]*Task, error) {
	return s.listTasks(ctx, `
		SELECT id, title, description, completed, created_at, updated_at,
		       is_deleted, sync_status, last_synced_at, server_id
		FROM tasks
		WHERE is_deleted = 0
		ORDER BY created_at ASC
	`)
}

// ListTasksNeedingSync возвращает задачи со статусом pending или error
func (s *SQLiteStorage) ListTasksNeedingSync(ctx context.Context) ([]*Task, error) {
	return s.listTasks(ctx, `
		SELECT id, title, description, completed, created_at, updated_at,
		       is_deleted, sync_status, last_synced_at, server_id
		FROM tasks
		WHERE sync_status IN ('pending', 'error')
		ORDER BY created_at ASC
	`)
}

func (s *SQLiteStorage) listTasks(ctx context.Context, query string) ([]*Task, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования задачи: %w", err)
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

// ListOutbox возвращает все элементы очереди в порядке создания (FIFO)
func (s *SQLiteStorage) ListOutbox(ctx context.Context) ([]*OutboxEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, operation, payload, created_at, retry_count, error_message
		FROM outbox_entries
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения outbox: %w", err)
	}
	defer rows.Close()

	var entries []*OutboxEntry
	for rows.Next() {
		var entry OutboxEntry
		var operation, createdAt string
		var errorMessage sql.NullString

		if err := rows.Scan(&entry.ID, &entry.TaskID, &operation, &entry.Payload,
			&createdAt, &entry.RetryCount, &errorMessage); err != nil {
			return nil, fmt.Errorf("ошибка сканирования outbox: %w", err)
		}

		entry.Operation = sync.Operation(operation)
		entry.CreatedAt = parseTime(createdAt)
		if errorMessage.Valid {
			entry.ErrorMessage = &errorMessage.String
		}

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// DeleteOutboxEntry удаляет элемент очереди после подтвержденной доставки
func (s *SQLiteStorage) DeleteOutboxEntry(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM outbox_entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("ошибка удаления из outbox: %w", err)
	}

	return nil
}

// UpdateOutboxFailure сохраняет счетчик попыток и текст ошибки элемента
func (s *SQLiteStorage) UpdateOutboxFailure(ctx context.Context, id string, retryCount int, errorMessage string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE outbox_entries
		SET retry_count = ?, error_message = ?
		WHERE id = ?
	`, retryCount, errorMessage, id)
	if err != nil {
		return fmt.Errorf("ошибка обновления outbox: %w", err)
	}

	return nil
}

// CountOutbox возвращает количество элементов, ожидающих доставки
func (s *SQLiteStorage) CountOutbox(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM outbox_entries").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчета outbox: %w", err)
	}

	return count, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Временные метки храним строками RFC3339Nano, чтобы разрешение конфликтов
// по updated_at не теряло точность при чтении из базы.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*Task, error) {
	var t Task
	var createdAt, updatedAt, syncStatus string
	var lastSyncedAt sql.NullString

	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Completed,
		&createdAt, &updatedAt, &t.IsDeleted, &syncStatus,
		&lastSyncedAt, &t.ServerID)
	if err != nil {
		return nil, err
	}

	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	t.SyncStatus = SyncStatus(syncStatus)
	if lastSyncedAt.Valid {
		ts := parseTime(lastSyncedAt.String)
		t.LastSyncedAt = &ts
	}

	return &t, nil
}
