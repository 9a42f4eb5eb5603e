package sync

import (
	"tasksync/internal/domain/sync"
)

// Request/Response структуры для BatchSync
type batchSyncInput struct {
	Body sync.BatchRequest
}

type batchSyncOutput struct {
	Body sync.BatchResponse
}

// Request/Response структуры для GetStatus
type getStatusInput struct {
}

type getStatusOutput struct {
	Body sync.Status
}
