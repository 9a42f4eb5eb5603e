package task

import (
	"errors"
)

var (
	ErrNotFound    = errors.New("task not found")
	ErrInvalidData = errors.New("invalid task data")
)
