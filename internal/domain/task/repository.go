package task

import (
	"context"
	"time"
)

// Repository интерфейс серверного хранилища задач
type Repository interface {
	// Базовые CRUD операции
	Create(ctx context.Context, task *Task) error
	Get(ctx context.Context, id string) (*Task, error)
	GetByClientID(ctx context.Context, clientID string) (*Task, error)
	Update(ctx context.Context, task *Task) error
	SoftDeleteByClientID(ctx context.Context, clientID string, deletedAt time.Time) error

	// Выборки для отчетности
	List(ctx context.Context, criteria ListCriteria) ([]Task, error)
	Count(ctx context.Context, includeDeleted bool) (int, error)
}
