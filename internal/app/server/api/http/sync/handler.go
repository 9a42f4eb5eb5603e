package sync

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"tasksync/internal/domain/sync"
)

type Handler struct {
	service    sync.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service sync.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.batchSyncOp(), h.batchSync)
	huma.Register(api, h.getStatusOp(), h.getStatus)
}

func (h *Handler) batchSync(ctx context.Context, input *batchSyncInput) (*batchSyncOutput, error) {
	response, err := h.service.ProcessBatch(ctx, input.Body)
	if err != nil {
		h.log.Error("batch sync failed", "error", err)
		return nil, huma.Error500InternalServerError("batch processing failed", err)
	}

	return &batchSyncOutput{
		Body: *response,
	}, nil
}

func (h *Handler) getStatus(ctx context.Context, _ *getStatusInput) (*getStatusOutput, error) {
	response, err := h.service.GetStatus(ctx)
	if err != nil {
		h.log.Error("get sync status failed", "error", err)
		return nil, huma.Error500InternalServerError("get status failed", err)
	}

	return &getStatusOutput{
		Body: *response,
	}, nil
}
