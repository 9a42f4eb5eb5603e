package task

import (
	"time"
)

// Task - серверная (авторитетная) версия задачи.
// ID назначается сервером при первом создании, ClientID - идентификатор,
// под которым задачу знает клиент.
type Task struct {
	ID          string     `json:"id"`
	ClientID    string     `json:"client_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// IsDeleted сообщает, была ли задача мягко удалена.
func (t *Task) IsDeleted() bool {
	return t.DeletedAt != nil
}

// ListCriteria критерии выборки задач
type ListCriteria struct {
	IncludeDeleted bool
	Limit          int
	Offset         int
}
