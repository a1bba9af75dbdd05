package service

import "errors"

// Sentinel errors returned by the service.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrUnknownStore = errors.New("unknown store kind")
	ErrNoRatings    = errors.New("rating list has no qualifying players")
)
