package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"tasksync/internal/domain/task"
)

type TaskRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewTaskRepository(storage *Storage, log *slog.Logger) *TaskRepository {
	return &TaskRepository{
		pool: storage.Pool(),
		log:  log.With("component", "task_repository"),
	}
}

func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	const query = `
		INSERT INTO tasks (id, client_id, title, description, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.ClientID, t.Title, t.Description, t.Completed, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		r.log.Error("failed to create task",
			"task_id", t.ID, "client_id", t.ClientID, "error", err)
		return fmt.Errorf("create task: %w", err)
	}

	return nil
}

func (r *TaskRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	const query = `
		SELECT id, client_id, title, description, completed, created_at, updated_at, deleted_at
		FROM tasks
		WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)

	t, err := r.scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, task.ErrNotFound
		}
		r.log.Error("failed to get task", "task_id", id, "error", err)
		return nil, fmt.Errorf("get task: %w", err)
	}

	return t, nil
}

// GetByClientID находит задачу по идентификатору, присвоенному клиентом.
// После повторной доставки create под одним client_id может оказаться
// несколько строк - берется последняя измененная.
func (r *TaskRepository) GetByClientID(ctx context.Context, clientID string) (*task.Task, error) {
	const query = `
		SELECT id, client_id, title, description, completed, created_at, updated_at, deleted_at
		FROM tasks
		WHERE client_id = $1 AND deleted_at IS NULL
		ORDER BY updated_at DESC
		LIMIT 1`

	row := r.pool.QueryRow(ctx, query, clientID)

	t, err := r.scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, task.ErrNotFound
		}
		r.log.Error("failed to get task by client id",
			"client_id", clientID, "error", err)
		return nil, fmt.Errorf("get task by client id: %w", err)
	}

	return t, nil
}

func (r *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	const query = `
		UPDATE tasks
		SET title = $1, description = $2, completed = $3, updated_at = $4
		WHERE id = $5 AND deleted_at IS NULL`

	result, err := r.pool.Exec(ctx, query,
		t.Title, t.Description, t.Completed, t.UpdatedAt, t.ID,
	)
	if err != nil {
		r.log.Error("failed to update task", "task_id", t.ID, "error", err)
		return fmt.Errorf("update task: %w", err)
	}

	if result.RowsAffected() == 0 {
		return task.ErrNotFound
	}

	return nil
}

func (r *TaskRepository) SoftDeleteByClientID(ctx context.Context, clientID string, deletedAt time.Time) error {
	const query = `
		UPDATE tasks
		SET deleted_at = $1, updated_at = $1
		WHERE client_id = $2 AND deleted_at IS NULL`

	result, err := r.pool.Exec(ctx, query, deletedAt, clientID)
	if err != nil {
		r.log.Error("failed to soft delete task",
			"client_id", clientID, "error", err)
		return fmt.Errorf("soft delete task: %w", err)
	}

	if result.RowsAffected() == 0 {
		return task.ErrNotFound
	}

	return nil
}

func (r *TaskRepository) List(ctx context.Context, criteria task.ListCriteria) ([]task.Task, error) {
	query := `
		SELECT id, client_id, title, description, completed, created_at, updated_at, deleted_at
		FROM tasks`

	args := []interface{}{}
	argIndex := 1

	if !criteria.IncludeDeleted {
		query += " WHERE deleted_at IS NULL"
	}

	query += " ORDER BY updated_at DESC"

	if criteria.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, criteria.Limit)
		argIndex++

		if criteria.Offset > 0 {
			query += fmt.Sprintf(" OFFSET $%d", argIndex)
			args = append(args, criteria.Offset)
		}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to list tasks", "error", err)
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	return r.scanTasks(rows)
}

func (r *TaskRepository) Count(ctx context.Context, includeDeleted bool) (int, error) {
	query := `SELECT COUNT(*) FROM tasks`
	if !includeDeleted {
		query += " WHERE deleted_at IS NULL"
	}

	var count int
	if err := r.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		r.log.Error("failed to count tasks", "error", err)
		return 0, fmt.Errorf("count tasks: %w", err)
	}

	return count, nil
}

// Вспомогательные методы
func (r *TaskRepository) scanTasks(rows pgx.Rows) ([]task.Task, error) {
	var tasks []task.Task

	for rows.Next() {
		t, err := r.scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}

	return tasks, rows.Err()
}

func (r *TaskRepository) scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*task.Task, error) {
	var t task.Task
	var deletedAt *time.Time

	err := row.Scan(
		&t.ID, &t.ClientID, &t.Title, &t.Description,
		&t.Completed, &t.CreatedAt, &t.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	t.DeletedAt = deletedAt
	return &t, nil
}
