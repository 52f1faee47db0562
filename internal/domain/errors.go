package domain

import "errors"

var (
	// ErrContentNotFound is returned when a lookup by id matches nothing.
	ErrContentNotFound = errors.New("content not found")

	// ErrProviderNotFound is returned by the registry for unknown names.
	ErrProviderNotFound = errors.New("provider not registered")
)
