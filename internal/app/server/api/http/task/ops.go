package task

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "tasks-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/tasks",
		Summary:     "Список задач",
		Description: "Возвращает задачи серверного хранилища для отчетности",
		Tags:        []string{"tasks"},
		Middlewares: h.middleware,
	}
}
