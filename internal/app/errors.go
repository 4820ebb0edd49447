package service

import "errors"

var (
	// ErrUnknownDataset is returned when an id is not in the registry.
	ErrUnknownDataset = errors.New("unknown dataset")

	// ErrNotStarted is returned when the service is used before Start.
	ErrNotStarted = errors.New("service not started")
)
