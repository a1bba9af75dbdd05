package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("player not found")
	ErrEmptySnapshot = errors.New("snapshot has no ratings")
	ErrClosed        = errors.New("store closed")
)
