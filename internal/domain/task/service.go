package task

import (
	"context"
	"fmt"

	"golang.org/x/exp/slog"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// Servicer интерфейс сервиса задач
type Servicer interface {
	// List возвращает задачи по критериям выборки
	List(ctx context.Context, criteria ListCriteria) ([]Task, error)

	// Count возвращает количество неудаленных задач
	Count(ctx context.Context) (int, error)
}

// Service сервис чтения серверного хранилища задач (отчетность)
type Service struct {
	repo Repository
	log  *slog.Logger
}

// NewService создает новый сервис задач
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("component", "task_service"),
	}
}

// List возвращает задачи по критериям выборки
func (s *Service) List(ctx context.Context, criteria ListCriteria) ([]Task, error) {
	if criteria.Limit <= 0 {
		criteria.Limit = defaultListLimit
	}
	if criteria.Limit > maxListLimit {
		criteria.Limit = maxListLimit
	}

	tasks, err := s.repo.List(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

// Count возвращает количество неудаленных задач
func (s *Service) Count(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx, false)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}

	return count, nil
}
