package client

import "errors"

var (
	ErrSyncInProgress = errors.New("sync already in progress")
	ErrEmptyPatch     = errors.New("empty patch")
)
