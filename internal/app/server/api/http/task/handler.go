package task

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"tasksync/internal/domain/task"
)

type Handler struct {
	service    task.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service task.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
}

func (h *Handler) list(ctx context.Context, input *listInput) (*listOutput, error) {
	tasks, err := h.service.List(ctx, task.ListCriteria{
		IncludeDeleted: input.IncludeDeleted,
		Limit:          input.Limit,
		Offset:         input.Offset,
	})
	if err != nil {
		h.log.Error("list tasks failed", "error", err)
		return nil, huma.Error500InternalServerError("list tasks failed", err)
	}

	total, err := h.service.Count(ctx)
	if err != nil {
		h.log.Error("count tasks failed", "error", err)
		return nil, huma.Error500InternalServerError("count tasks failed", err)
	}

	return &listOutput{
		Body: ListResponse{
			Tasks: tasks,
			Total: total,
		},
	}, nil
}
