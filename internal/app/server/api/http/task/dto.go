package task

import (
	"tasksync/internal/domain/task"
)

// Request/Response структуры для List
type listInput struct {
	IncludeDeleted bool `query:"include_deleted" doc:"Include soft-deleted tasks"`
	Limit          int  `query:"limit" minimum:"0" maximum:"1000"`
	Offset         int  `query:"offset" minimum:"0"`
}

type listOutput struct {
	Body ListResponse
}

type ListResponse struct {
	Tasks []task.Task `json:"tasks"`
	Total int         `json:"total"`
}
