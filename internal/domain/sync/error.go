package sync

import "errors"

var (
	ErrUnknownOperation = errors.New("unknown sync operation")
	ErrEmptyPayload     = errors.New("empty item payload")
)
