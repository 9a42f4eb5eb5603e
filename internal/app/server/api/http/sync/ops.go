package sync

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) batchSyncOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-batch",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/batch",
		Summary:     "Пакетная синхронизация записей",
		Description: "Принимает пакет элементов outbox и возвращает результат по каждому",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) getStatusOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-get-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/status",
		Summary:     "Получить статус синхронизации",
		Description: "Возвращает сводку состояния синхронизации на сервере",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}
