package client

import (
	"time"

	"tasksync/internal/domain/sync"
)

// SyncStatus статус синхронизации локальной задачи
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusError   SyncStatus = "error"
)

// Task - локальная модель задачи
type Task struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Completed    bool       `json:"completed"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	IsDeleted    bool       `json:"is_deleted"`
	SyncStatus   SyncStatus `json:"sync_status"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	ServerID     string     `json:"server_id,omitempty"`
}

// OutboxEntry - отложенная мутация, ожидающая доставки на сервер.
// Создается сервисом мутаций, изменяется только движком синхронизации,
// удаляется только после подтвержденной доставки.
type OutboxEntry struct {
	ID           string         `json:"id"`
	TaskID       string         `json:"task_id"`
	Operation    sync.Operation `json:"operation"`
	Payload      []byte         `json:"data"`
	CreatedAt    time.Time      `json:"created_at"`
	RetryCount   int            `json:"retry_count"`
	ErrorMessage *string        `json:"error_message,omitempty"`
}

// CreateRequest поля новой задачи, задаваемые пользователем
type CreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Completed   bool   `json:"completed,omitempty"`
}

// TaskPatch - типизированная дельта изменений задачи.
// Nil-поле означает "не менять".
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// IsEmpty сообщает, есть ли в дельте хоть одно изменение
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}

// SyncError ошибка синхронизации одного элемента outbox
type SyncError struct {
	TaskID    string    `json:"task_id"`
	Operation string    `json:"operation"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// SyncResult результат одного прогона синхронизации. Не сохраняется.
type SyncResult struct {
	Success   bool          `json:"success"`
	Synced    int           `json:"synced"`
	Failed    int           `json:"failed"`
	Errors    []SyncError   `json:"errors"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
}

// SyncStatusReport сводка для отчетности: сколько записей ждет
// синхронизации и когда был последний успешный прогон.
type SyncStatusReport struct {
	PendingEntries   int       `json:"pending_entries"`
	TasksNeedingSync int       `json:"tasks_needing_sync"`
	LastSyncTime     time.Time `json:"last_sync_time"`
	IsSyncing        bool      `json:"is_syncing"`
}
