package domain

import "errors"

// Errors returned while serving a static file.
var (
	ErrFileNotFound   = errors.New("file not found")
	ErrFileUnreadable = errors.New("file unreadable")
)

// Errors returned by the hit store.
var (
	ErrStoreDisabled = errors.New("hit store not configured")
)
