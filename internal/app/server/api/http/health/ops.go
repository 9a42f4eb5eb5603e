package health

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) healthCheckOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-health-check",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/health",
		Summary:     "Health check endpoint",
		Description: "Returns the health status of the sync service",
		Tags:        []string{"health"},
		Middlewares: h.middleware,
	}
}
