package sync

import (
	"encoding/json"
	"time"
)

// Operation тип операции в очереди исходящих изменений
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// ItemStatus результат обработки одного элемента пакета
type ItemStatus string

const (
	StatusSuccess  ItemStatus = "success"
	StatusConflict ItemStatus = "conflict"
	StatusError    ItemStatus = "error"
)

// Item один элемент пакета синхронизации (запись outbox на проводе)
type Item struct {
	ID         string          `json:"id"`
	TaskID     string          `json:"task_id"`
	Operation  Operation       `json:"operation"`
	Data       json.RawMessage `json:"data,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	RetryCount int             `json:"retry_count"`
}

// ItemPayload расшифрованное содержимое Item.Data.
// Для create это поля, заданные пользователем; для update - дельта
// изменений плюс новый updated_at клиента; для delete payload пуст.
type ItemPayload struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Completed   *bool     `json:"completed,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// TaskSnapshot снимок серверной версии задачи, возвращаемый клиенту
type TaskSnapshot struct {
	ServerID    string    `json:"server_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	UpdatedAt   time.Time `json:"updated_at"`
	IsDeleted   bool      `json:"is_deleted,omitempty"`
}

// BatchRequest пакет элементов outbox от клиента
type BatchRequest struct {
	Items           []Item    `json:"items"`
	ClientTimestamp time.Time `json:"client_timestamp"`
}

// ProcessedItem результат обработки одного элемента.
// ClientID всегда равен task_id, присланному клиентом.
type ProcessedItem struct {
	ClientID     string        `json:"client_id"`
	ServerID     string        `json:"server_id,omitempty"`
	Status       ItemStatus    `json:"status"`
	ResolvedData *TaskSnapshot `json:"resolved_data,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// BatchResponse ответ на пакет: ровно по одному результату на элемент
type BatchResponse struct {
	ProcessedItems []ProcessedItem `json:"processed_items"`
}

// Status сводка состояния синхронизации на сервере
type Status struct {
	TotalTasks    int       `json:"total_tasks"`
	LastBatchTime time.Time `json:"last_batch_time,omitempty"`
	ServerTime    time.Time `json:"server_time"`
}
